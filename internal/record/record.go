package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// InputDateLayout is the layout used by the console prompts and by CSV/XML files (MM/dd/yyyy)
	InputDateLayout = "01/02/2006"
	// OutputDateLayout is the layout used when printing records (yyyy-MMM-dd)
	OutputDateLayout = "2006-Jan-02"
	// CanonicalDateLayout is the layout of index keys, it does not depend on the locale
	CanonicalDateLayout = "2006-01-02"
)

// PersonalData is the user editable part of a record
type PersonalData struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	SchoolGrade int16
	AverageMark decimal.Decimal
	ClassLetter rune
}

// Record is a stored personal data entry. ID is assigned by the store when the record is
// created and never changes afterwards
type Record struct {
	ID int32
	PersonalData
}

// New returns a record with the given id and data
func New(id int32, data PersonalData) Record {
	return Record{ID: id, PersonalData: data}
}

// Equal reports whether both records hold the same id and values. Dates are compared by
// calendar day and marks by numeric value.
func (r Record) Equal(other Record) bool {
	return r.ID == other.ID && r.PersonalData.Equal(other.PersonalData)
}

// Equal reports whether both values are the same
func (p PersonalData) Equal(other PersonalData) bool {
	return p.FirstName == other.FirstName &&
		p.LastName == other.LastName &&
		FormatDate(p.DateOfBirth) == FormatDate(other.DateOfBirth) &&
		p.SchoolGrade == other.SchoolGrade &&
		p.AverageMark.Equal(other.AverageMark) &&
		p.ClassLetter == other.ClassLetter
}

func (r Record) String() string {
	return fmt.Sprintf("#%d, %s, %s, %s, %d, %s, %c",
		r.ID,
		r.FirstName,
		r.LastName,
		r.DateOfBirth.Format(OutputDateLayout),
		r.SchoolGrade,
		r.AverageMark.String(),
		r.ClassLetter,
	)
}

func (p PersonalData) String() string {
	return fmt.Sprintf("FirstName = %s, LastName = %s, DateOfBirth = %s, SchoolGrade = %d, AverageMark = %s, ClassLetter = %c",
		p.FirstName, p.LastName, FormatDate(p.DateOfBirth), p.SchoolGrade, p.AverageMark.String(), p.ClassLetter)
}

// Date returns the calendar date for the given components, in UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date using CanonicalDateLayout
func FormatDate(t time.Time) string {
	return t.Format(CanonicalDateLayout)
}

// ParseDate accepts the canonical, the input and the output layouts
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{CanonicalDateLayout, InputDateLayout, OutputDateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date, expected month/day/year", s)
}

// ParseClassLetter parses a single character, it is not upper-cased here
func ParseClassLetter(s string) (rune, error) {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("class letter must be a single character, got %q", s)
	}
	return r, nil
}

// Field describes one indexable field of a record. Key renders the stored value
// in canonical form, Canonicalize turns user input into the same form
type Field struct {
	Name         string
	Key          func(r *Record) string
	Canonicalize func(s string) (string, bool)
}

// Fields lists all indexable fields, the id is intentionally not part of it
var Fields = []Field{
	{
		Name:         "FirstName",
		Key:          func(r *Record) string { return r.FirstName },
		Canonicalize: func(s string) (string, bool) { return s, true },
	},
	{
		Name:         "LastName",
		Key:          func(r *Record) string { return r.LastName },
		Canonicalize: func(s string) (string, bool) { return s, true },
	},
	{
		Name: "DateOfBirth",
		Key:  func(r *Record) string { return FormatDate(r.DateOfBirth) },
		Canonicalize: func(s string) (string, bool) {
			t, err := ParseDate(s)
			if err != nil {
				return "", false
			}
			return FormatDate(t), true
		},
	},
	{
		Name: "SchoolGrade",
		Key:  func(r *Record) string { return strconv.Itoa(int(r.SchoolGrade)) },
		Canonicalize: func(s string) (string, bool) {
			v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 16)
			if err != nil {
				return "", false
			}
			return strconv.Itoa(int(v)), true
		},
	},
	{
		Name: "AverageMark",
		Key:  func(r *Record) string { return r.AverageMark.String() },
		Canonicalize: func(s string) (string, bool) {
			d, err := decimal.NewFromString(strings.TrimSpace(s))
			if err != nil {
				return "", false
			}
			return d.String(), true
		},
	},
	{
		Name: "ClassLetter",
		Key:  func(r *Record) string { return strings.ToUpper(string(r.ClassLetter)) },
		Canonicalize: func(s string) (string, bool) {
			c, err := ParseClassLetter(s)
			if err != nil {
				return "", false
			}
			return strings.ToUpper(string(c)), true
		},
	},
}

// LookupField finds a field by name, ignoring case
func LookupField(name string) (Field, bool) {
	for _, f := range Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}
