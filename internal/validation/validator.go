package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/shopspring/decimal"
)

// Validator checks personal data before it is stored. A validator may normalize the data in place,
// the class letter validator upper-cases the letter
type Validator interface {
	Validate(data *record.PersonalData) error
}

// FieldValidator validates a single field of the personal data
type FieldValidator interface {
	Validator
	Field() string
}

// Composite runs its validators in order and stops at the first failure
type Composite []Validator

func (c Composite) Validate(data *record.PersonalData) error {
	for _, v := range c {
		if err := v.Validate(data); err != nil {
			return err
		}
	}
	return nil
}

// ValidateField runs only the validators of v that check the named field. It's used by the console
// to validate input as soon as a field is entered. A validator that is not a Composite or a
// FieldValidator is run as a whole
func ValidateField(v Validator, field string, data *record.PersonalData) error {
	switch v := v.(type) {
	case Composite:
		for _, inner := range v {
			if err := ValidateField(inner, field, data); err != nil {
				return err
			}
		}
		return nil
	case FieldValidator:
		if !strings.EqualFold(v.Field(), field) {
			return nil
		}
		return v.Validate(data)
	case nil:
		return nil
	default:
		return v.Validate(data)
	}
}

type nameValidator struct {
	field    string
	min, max int
	get      func(data *record.PersonalData) string
}

func (v nameValidator) Field() string { return v.field }

func (v nameValidator) Validate(data *record.PersonalData) error {
	name := v.get(data)
	n := utf8.RuneCountInString(name)
	letters := strings.IndexFunc(name, func(r rune) bool { return !unicode.IsLetter(r) }) < 0
	if n < v.min || n > v.max || !letters {
		return &Error{
			Field:  v.field,
			Reason: fmt.Sprintf("must contain from %d to %d characters, and must not contain spaces, digits, special symbols", v.min, v.max),
		}
	}
	return nil
}

// FirstName checks the length of the first name and that it only holds letters
func FirstName(min, max int) FieldValidator {
	return nameValidator{field: "FirstName", min: min, max: max, get: func(d *record.PersonalData) string { return d.FirstName }}
}

// LastName checks the length of the last name and that it only holds letters
func LastName(min, max int) FieldValidator {
	return nameValidator{field: "LastName", min: min, max: max, get: func(d *record.PersonalData) string { return d.LastName }}
}

type dateOfBirthValidator struct {
	min, max time.Time
	now      func() time.Time
}

func (v dateOfBirthValidator) Field() string { return "DateOfBirth" }

func (v dateOfBirthValidator) Validate(data *record.PersonalData) error {
	max := v.max
	if max.IsZero() {
		now := v.now()
		max = record.Date(now.Year(), now.Month(), now.Day())
	}
	day := record.FormatDate(data.DateOfBirth)
	if day < record.FormatDate(v.min) || day > record.FormatDate(max) {
		return &Error{
			Field: "DateOfBirth",
			Reason: fmt.Sprintf("must be between %s and %s",
				v.min.Format(record.InputDateLayout), max.Format(record.InputDateLayout)),
		}
	}
	return nil
}

// DateOfBirth checks that the date lies within [min, max]. A zero max stands for the current day
func DateOfBirth(min, max time.Time) FieldValidator {
	return dateOfBirthValidator{min: min, max: max, now: time.Now}
}

type schoolGradeValidator struct {
	min, max int16
}

func (v schoolGradeValidator) Field() string { return "SchoolGrade" }

func (v schoolGradeValidator) Validate(data *record.PersonalData) error {
	if data.SchoolGrade < v.min || data.SchoolGrade > v.max {
		return &Error{Field: "SchoolGrade", Reason: fmt.Sprintf("must be between %d and %d", v.min, v.max)}
	}
	return nil
}

// SchoolGrade checks that the grade lies within [min, max]
func SchoolGrade(min, max int16) FieldValidator {
	return schoolGradeValidator{min: min, max: max}
}

type averageMarkValidator struct {
	min, max decimal.Decimal
}

func (v averageMarkValidator) Field() string { return "AverageMark" }

func (v averageMarkValidator) Validate(data *record.PersonalData) error {
	if data.AverageMark.LessThan(v.min) || data.AverageMark.GreaterThan(v.max) {
		return &Error{Field: "AverageMark", Reason: fmt.Sprintf("must be between %s and %s", v.min, v.max)}
	}
	return nil
}

// AverageMark checks that the mark lies within [min, max]
func AverageMark(min, max decimal.Decimal) FieldValidator {
	return averageMarkValidator{min: min, max: max}
}

type classLetterValidator struct {
	min, max rune
}

func (v classLetterValidator) Field() string { return "ClassLetter" }

func (v classLetterValidator) Validate(data *record.PersonalData) error {
	data.ClassLetter = unicode.ToUpper(data.ClassLetter)
	if data.ClassLetter < v.min || data.ClassLetter > v.max {
		return &Error{Field: "ClassLetter", Reason: fmt.Sprintf("must be between %c and %c", v.min, v.max)}
	}
	return nil
}

// ClassLetter upper-cases the letter and checks that it lies within [min, max]
func ClassLetter(min, max rune) FieldValidator {
	return classLetterValidator{min: unicode.ToUpper(min), max: unicode.ToUpper(max)}
}
