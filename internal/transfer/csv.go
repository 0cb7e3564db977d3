package transfer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/shopspring/decimal"
)

var csvHeader = []string{"Id", "FirstName", "LastName", "DateOfBirth", "SchoolGrade", "AverageMark", "ClassLetter"}

// CSV writes one header row followed by one row per record. Dates use the MM/dd/yyyy layout and
// marks use '.' as the decimal separator
type CSV struct{}

func (CSV) Name() string { return "csv" }

func (CSV) Export(w io.Writer, records []record.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	row := make([]string, len(csvHeader))
	for _, r := range records {
		row[0] = strconv.Itoa(int(r.ID))
		row[1] = r.FirstName
		row[2] = r.LastName
		row[3] = r.DateOfBirth.Format(record.InputDateLayout)
		row[4] = strconv.Itoa(int(r.SchoolGrade))
		row[5] = r.AverageMark.String()
		row[6] = string(r.ClassLetter)
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Import maps columns by the header names, ignoring case and order. Rows with a different number of
// fields or values that do not parse are skipped
func (CSV) Import(r io.Reader) ([]record.Record, int, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []record.Record{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	position := make([]int, len(csvHeader))
	for i, name := range csvHeader {
		p, ok := columns[strings.ToLower(name)]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrHeader, name)
		}
		position[i] = p
	}

	records := []record.Record{}
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			slog.Debug("skipping malformed csv row", "line", parseErr.Line, "error", err)
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, err
		}
		if len(row) != len(header) {
			line, _ := reader.FieldPos(0)
			slog.Debug("skipping csv row with wrong number of fields", "line", line, "fields", len(row))
			skipped++
			continue
		}
		values := make([]string, len(csvHeader))
		for i, p := range position {
			values[i] = row[p]
		}
		rec, err := parseRecord(values[0], values[1], values[2], values[3], values[4], values[5], values[6])
		if err != nil {
			line, _ := reader.FieldPos(0)
			slog.Debug("skipping csv row", "line", line, "error", err)
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// parseRecord converts the textual fields shared by the CSV and XML formats
func parseRecord(id, first, last, dob, grade, mark, letter string) (record.Record, error) {
	parsedID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 32)
	if err != nil {
		return record.Record{}, fmt.Errorf("id: %w", err)
	}
	date, err := time.ParseInLocation(record.InputDateLayout, strings.TrimSpace(dob), time.UTC)
	if err != nil {
		return record.Record{}, fmt.Errorf("date of birth: %w", err)
	}
	parsedGrade, err := strconv.ParseInt(strings.TrimSpace(grade), 10, 16)
	if err != nil {
		return record.Record{}, fmt.Errorf("school grade: %w", err)
	}
	parsedMark, err := decimal.NewFromString(strings.TrimSpace(mark))
	if err != nil {
		return record.Record{}, fmt.Errorf("average mark: %w", err)
	}
	parsedLetter, err := record.ParseClassLetter(letter)
	if err != nil {
		return record.Record{}, err
	}
	return record.New(int32(parsedID), record.PersonalData{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: date,
		SchoolGrade: int16(parsedGrade),
		AverageMark: parsedMark,
		ClassLetter: parsedLetter,
	}), nil
}
