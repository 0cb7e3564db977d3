package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validData() record.PersonalData {
	return record.PersonalData{
		FirstName:   "John",
		LastName:    "Smith",
		DateOfBirth: record.Date(1990, 5, 1),
		SchoolGrade: 5,
		AverageMark: decimal.RequireFromString("8.5"),
		ClassLetter: 'b',
	}
}

func TestDefaultValidatorAcceptsAndNormalizes(t *testing.T) {
	data := validData()
	require.NoError(t, Default().Validate(&data))
	assert.Equal(t, 'B', data.ClassLetter)
}

func TestDefaultValidatorRejects(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(d *record.PersonalData)
	}{
		{"FirstName", func(d *record.PersonalData) { d.FirstName = "J" }},
		{"FirstName", func(d *record.PersonalData) { d.FirstName = "John2" }},
		{"FirstName", func(d *record.PersonalData) { d.FirstName = "Jo hn" }},
		{"LastName", func(d *record.PersonalData) { d.LastName = "" }},
		{"DateOfBirth", func(d *record.PersonalData) { d.DateOfBirth = record.Date(1949, 12, 31) }},
		{"DateOfBirth", func(d *record.PersonalData) { d.DateOfBirth = time.Now().AddDate(0, 0, 2) }},
		{"SchoolGrade", func(d *record.PersonalData) { d.SchoolGrade = 0 }},
		{"SchoolGrade", func(d *record.PersonalData) { d.SchoolGrade = 12 }},
		{"AverageMark", func(d *record.PersonalData) { d.AverageMark = decimal.RequireFromString("10.01") }},
		{"AverageMark", func(d *record.PersonalData) { d.AverageMark = decimal.RequireFromString("-0.5") }},
		{"ClassLetter", func(d *record.PersonalData) { d.ClassLetter = 'f' }},
	}
	for _, c := range cases {
		data := validData()
		c.mutate(&data)
		err := Default().Validate(&data)
		require.Error(t, err, c.field)
		assert.ErrorIs(t, err, ErrValidation)
		var verr *Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, c.field, verr.Field)
	}
}

func TestDefaultValidatorBoundaries(t *testing.T) {
	data := validData()
	data.FirstName = "Jo"
	data.DateOfBirth = record.Date(1950, 1, 1)
	data.SchoolGrade = 11
	data.AverageMark = decimal.NewFromInt(10)
	data.ClassLetter = 'e'
	assert.NoError(t, Default().Validate(&data))

	data.AverageMark = decimal.Zero
	data.SchoolGrade = 1
	data.DateOfBirth = time.Now()
	assert.NoError(t, Default().Validate(&data))
}

func TestCustomRuleSet(t *testing.T) {
	v, err := New(CustomRuleSet, nil)
	require.NoError(t, err)

	data := validData()
	data.SchoolGrade = 0
	data.AverageMark = decimal.RequireFromString("4.5")
	data.ClassLetter = 'g'
	require.NoError(t, v.Validate(&data))
	assert.Equal(t, 'G', data.ClassLetter)

	data.DateOfBirth = record.Date(2016, 1, 2)
	assert.ErrorIs(t, v.Validate(&data), ErrValidation)

	_, err = New("strict", nil)
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestValidateField(t *testing.T) {
	v := Default()
	data := validData()
	data.FirstName = "1"
	data.SchoolGrade = 99

	err := ValidateField(v, "schoolgrade", &data)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "SchoolGrade", verr.Field)

	assert.NoError(t, ValidateField(v, "LastName", &data))
	assert.Error(t, ValidateField(v, "FirstName", &data))
	assert.NoError(t, ValidateField(nil, "FirstName", &data))
}

func TestBuilderAdd(t *testing.T) {
	calls := 0
	custom := validatorFunc(func(d *record.PersonalData) error {
		calls++
		return nil
	})
	b := NewBuilder().SchoolGrade(1, 2).Add(custom)
	first := b.Build()
	b.ClassLetter('A', 'A')
	assert.Len(t, first, 2)
	assert.Len(t, b.Build(), 3)

	data := validData()
	data.SchoolGrade = 1
	require.NoError(t, first.Validate(&data))
	assert.Equal(t, 1, calls)
}

type validatorFunc func(d *record.PersonalData) error

func (f validatorFunc) Validate(d *record.PersonalData) error { return f(d) }
