package validation

import (
	"testing"

	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRulesMissingFile(t *testing.T) {
	rules, err := LoadRules(afero.NewMemMapFs(), "validation-rules.json")
	require.NoError(t, err)
	assert.Equal(t, BuiltinRules(), rules)

	rules, err = LoadRules(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestLoadRulesOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `{
	"custom": {
		"firstName": {"min": 3, "max": 12},
		"dateOfBirth": {"min": "01/01/1960"},
		"averageMark": {"max": 4.5},
		"classLetter": {"max": "c"}
	},
	"strict": {
		"schoolGrade": {"min": 6, "max": 7}
	}
}`
	require.NoError(t, afero.WriteFile(fs, "validation-rules.json", []byte(content), 0644))

	rules, err := LoadRules(fs, "validation-rules.json")
	require.NoError(t, err)

	custom := rules[CustomRuleSet]
	assert.Equal(t, Bounds[int]{3, 12}, custom.FirstName)
	assert.Equal(t, CustomRules().LastName, custom.LastName)
	assert.Equal(t, record.Date(1960, 1, 1), custom.DateOfBirth.Min)
	assert.Equal(t, record.Date(2016, 1, 1), custom.DateOfBirth.Max)
	assert.True(t, custom.AverageMark.Max.Equal(decimal.RequireFromString("4.5")))
	assert.Equal(t, 'c', custom.ClassLetter.Max)

	assert.Equal(t, DefaultRules().FirstName, rules[DefaultRuleSet].FirstName)

	strict, err := New("strict", rules)
	require.NoError(t, err)
	data := validData()
	assert.ErrorIs(t, strict.Validate(&data), ErrValidation)
	data.SchoolGrade = 6
	assert.NoError(t, strict.Validate(&data))
}

func TestLoadRulesInvalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "rules.json", []byte(`{"default": {"schoolGrade": {"min": "first"}}}`), 0644))
	_, err := LoadRules(fs, "rules.json")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "broken.json", []byte(`{"default": `), 0644))
	_, err = LoadRules(fs, "broken.json")
	assert.Error(t, err)
}
