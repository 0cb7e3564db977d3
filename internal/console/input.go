package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ananthvk/filecabinet"
	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/ananthvk/filecabinet/internal/validation"
	"github.com/shopspring/decimal"
)

// prompt describes how one field is asked for. set converts the input and stores it in data
type prompt struct {
	field string
	label string
	set   func(data *filecabinet.PersonalData, input string) error
}

var prompts = []prompt{
	{"FirstName", "First name", func(d *filecabinet.PersonalData, s string) error {
		d.FirstName = s
		return nil
	}},
	{"LastName", "Last name", func(d *filecabinet.PersonalData, s string) error {
		d.LastName = s
		return nil
	}},
	{"DateOfBirth", "Date of birth", func(d *filecabinet.PersonalData, s string) error {
		t, err := record.ParseDate(s)
		if err != nil {
			return fmt.Errorf("invalid value, correct format is '%s'", "MM/dd/yyyy")
		}
		d.DateOfBirth = t
		return nil
	}},
	{"SchoolGrade", "School grade", func(d *filecabinet.PersonalData, s string) error {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 16)
		if err != nil {
			return errors.New("invalid value, expected a whole number")
		}
		d.SchoolGrade = int16(v)
		return nil
	}},
	{"AverageMark", "Average mark", func(d *filecabinet.PersonalData, s string) error {
		v, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return errors.New("invalid value, expected a number like 8.5")
		}
		d.AverageMark = v
		return nil
	}},
	{"ClassLetter", "Class letter", func(d *filecabinet.PersonalData, s string) error {
		c, err := record.ParseClassLetter(s)
		if err != nil {
			return errors.New("invalid value, expected a single letter")
		}
		d.ClassLetter = c
		return nil
	}},
}

// readPersonalData asks for every field in turn. A field is asked again until its value converts and
// passes the validator
func (a *App) readPersonalData() (filecabinet.PersonalData, error) {
	var data filecabinet.PersonalData
	for _, p := range prompts {
		fmt.Fprintf(a.out, "%s: ", p.label)
		for {
			input, err := a.readLine()
			if err != nil {
				return data, err
			}
			if err := p.set(&data, input); err != nil {
				fmt.Fprintf(a.out, "Conversion failed: %s. Correct your input: ", err)
				continue
			}
			if err := validation.ValidateField(a.validator, p.field, &data); err != nil {
				fmt.Fprintf(a.out, "Validation failed: %s. Correct your input: ", err)
				continue
			}
			break
		}
	}
	return data, nil
}
