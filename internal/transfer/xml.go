package transfer

import (
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"strconv"

	"github.com/ananthvk/filecabinet/internal/record"
)

type xmlName struct {
	First string `xml:"first,attr"`
	Last  string `xml:"last,attr"`
}

type xmlRecord struct {
	XMLName     xml.Name `xml:"record"`
	ID          string   `xml:"id,attr"`
	Name        xmlName  `xml:"name"`
	DateOfBirth string   `xml:"dateOfBirth"`
	SchoolGrade string   `xml:"schoolGrade"`
	AverageMark string   `xml:"averageMark"`
	ClassLetter string   `xml:"classLetter"`
}

// XML writes a <records> document with one <record> element per record, indented with tabs
//
//	<record id="1">
//		<name first="John" last="Smith"></name>
//		<dateOfBirth>05/01/1990</dateOfBirth>
//		<schoolGrade>5</schoolGrade>
//		<averageMark>8.5</averageMark>
//		<classLetter>B</classLetter>
//	</record>
type XML struct{}

func (XML) Name() string { return "xml" }

func (XML) Export(w io.Writer, records []record.Record) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "\t")
	start := xml.StartElement{Name: xml.Name{Local: "records"}}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	for _, r := range records {
		element := xmlRecord{
			ID:          strconv.Itoa(int(r.ID)),
			Name:        xmlName{First: r.FirstName, Last: r.LastName},
			DateOfBirth: r.DateOfBirth.Format(record.InputDateLayout),
			SchoolGrade: strconv.Itoa(int(r.SchoolGrade)),
			AverageMark: r.AverageMark.String(),
			ClassLetter: string(r.ClassLetter),
		}
		if err := encoder.Encode(element); err != nil {
			return err
		}
	}
	if err := encoder.EncodeToken(start.End()); err != nil {
		return err
	}
	if err := encoder.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Import reads every <record> element of the document. Elements whose values do not parse are
// skipped, a document that is not well formed is an error
func (XML) Import(r io.Reader) ([]record.Record, int, error) {
	decoder := xml.NewDecoder(r)
	records := []record.Record{}
	skipped := 0
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, err
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "record" {
			continue
		}
		var element xmlRecord
		if err := decoder.DecodeElement(&element, &start); err != nil {
			return nil, skipped, err
		}
		rec, err := parseRecord(element.ID, element.Name.First, element.Name.Last,
			element.DateOfBirth, element.SchoolGrade, element.AverageMark, element.ClassLetter)
		if err != nil {
			slog.Debug("skipping xml record", "id", element.ID, "error", err)
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}
