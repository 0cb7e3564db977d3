package validation

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	DefaultRuleSet = "default"
	CustomRuleSet  = "custom"
)

// Bounds is an inclusive [Min, Max] range
type Bounds[T any] struct {
	Min T
	Max T
}

// Rules holds the limits of one rule set. A zero DateOfBirth.Max means "today"
type Rules struct {
	FirstName   Bounds[int]
	LastName    Bounds[int]
	DateOfBirth Bounds[time.Time]
	SchoolGrade Bounds[int16]
	AverageMark Bounds[decimal.Decimal]
	ClassLetter Bounds[rune]
}

// Validator builds a Composite checking every field against the rules
func (r Rules) Validator() Composite {
	return NewBuilder().
		FirstName(r.FirstName.Min, r.FirstName.Max).
		LastName(r.LastName.Min, r.LastName.Max).
		DateOfBirth(r.DateOfBirth.Min, r.DateOfBirth.Max).
		SchoolGrade(r.SchoolGrade.Min, r.SchoolGrade.Max).
		AverageMark(r.AverageMark.Min, r.AverageMark.Max).
		ClassLetter(r.ClassLetter.Min, r.ClassLetter.Max).
		Build()
}

// DefaultRules is the rule set used when nothing else is selected
func DefaultRules() Rules {
	return Rules{
		FirstName:   Bounds[int]{2, 60},
		LastName:    Bounds[int]{2, 60},
		DateOfBirth: Bounds[time.Time]{Min: record.Date(1950, 1, 1)},
		SchoolGrade: Bounds[int16]{1, 11},
		AverageMark: Bounds[decimal.Decimal]{decimal.Zero, decimal.NewFromInt(10)},
		ClassLetter: Bounds[rune]{'A', 'E'},
	}
}

// CustomRules is the stricter alternative rule set
func CustomRules() Rules {
	return Rules{
		FirstName:   Bounds[int]{2, 10},
		LastName:    Bounds[int]{2, 10},
		DateOfBirth: Bounds[time.Time]{Min: record.Date(1950, 1, 1), Max: record.Date(2016, 1, 1)},
		SchoolGrade: Bounds[int16]{0, 4},
		AverageMark: Bounds[decimal.Decimal]{decimal.Zero, decimal.NewFromInt(5)},
		ClassLetter: Bounds[rune]{'A', 'G'},
	}
}

// BuiltinRules returns a fresh map of the built-in rule sets
func BuiltinRules() map[string]Rules {
	return map[string]Rules{
		DefaultRuleSet: DefaultRules(),
		CustomRuleSet:  CustomRules(),
	}
}

// New returns the validator for the named rule set. A nil rules map means the built-in rule sets
func New(ruleSet string, rules map[string]Rules) (Composite, error) {
	if rules == nil {
		rules = BuiltinRules()
	}
	r, ok := rules[strings.ToLower(strings.TrimSpace(ruleSet))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, ruleSet)
	}
	return r.Validator(), nil
}

// Default returns the validator of the built-in default rule set
func Default() Composite {
	return DefaultRules().Validator()
}

type rawBounds struct {
	Min *string `mapstructure:"min"`
	Max *string `mapstructure:"max"`
}

type rawRules struct {
	FirstName   rawBounds `mapstructure:"firstName"`
	LastName    rawBounds `mapstructure:"lastName"`
	DateOfBirth rawBounds `mapstructure:"dateOfBirth"`
	SchoolGrade rawBounds `mapstructure:"schoolGrade"`
	AverageMark rawBounds `mapstructure:"averageMark"`
	ClassLetter rawBounds `mapstructure:"classLetter"`
}

// LoadRules reads a JSON rule file and applies it on top of the built-in rule sets. Every top level
// key names a rule set, new names add rule sets. Only the bounds present in the file are replaced
//
//	{"custom": {"firstName": {"min": 3, "max": 12}, "dateOfBirth": {"min": "01/01/1960"}}}
//
// A missing file is not an error, the built-in rule sets are returned
func LoadRules(fs afero.Fs, path string) (map[string]Rules, error) {
	rules := BuiltinRules()
	if path == "" {
		return rules, nil
	}
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		slog.Debug("validation rule file not found, using built-in rules", "path", path)
		return rules, nil
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	sets := make(map[string]struct{})
	for _, key := range v.AllKeys() {
		// AllKeys returns leaf keys such as default.firstname.min
		setName, _, _ := strings.Cut(key, ".")
		sets[setName] = struct{}{}
	}
	for setName := range sets {
		var raw rawRules
		if err := v.UnmarshalKey(setName, &raw); err != nil {
			return nil, fmt.Errorf("invalid rule set %q: %w", setName, err)
		}
		base, ok := rules[setName]
		if !ok {
			base = DefaultRules()
		}
		merged, err := raw.apply(base)
		if err != nil {
			return nil, fmt.Errorf("invalid rule set %q: %w", setName, err)
		}
		rules[setName] = merged
	}
	return rules, nil
}

func (raw rawRules) apply(r Rules) (Rules, error) {
	var err error
	if r.FirstName, err = applyBounds(raw.FirstName, r.FirstName, strconv.Atoi); err != nil {
		return r, fmt.Errorf("firstName: %w", err)
	}
	if r.LastName, err = applyBounds(raw.LastName, r.LastName, strconv.Atoi); err != nil {
		return r, fmt.Errorf("lastName: %w", err)
	}
	if r.DateOfBirth, err = applyBounds(raw.DateOfBirth, r.DateOfBirth, record.ParseDate); err != nil {
		return r, fmt.Errorf("dateOfBirth: %w", err)
	}
	if r.SchoolGrade, err = applyBounds(raw.SchoolGrade, r.SchoolGrade, parseInt16); err != nil {
		return r, fmt.Errorf("schoolGrade: %w", err)
	}
	if r.AverageMark, err = applyBounds(raw.AverageMark, r.AverageMark, decimal.NewFromString); err != nil {
		return r, fmt.Errorf("averageMark: %w", err)
	}
	if r.ClassLetter, err = applyBounds(raw.ClassLetter, r.ClassLetter, record.ParseClassLetter); err != nil {
		return r, fmt.Errorf("classLetter: %w", err)
	}
	return r, nil
}

func applyBounds[T any](raw rawBounds, b Bounds[T], parse func(string) (T, error)) (Bounds[T], error) {
	if raw.Min != nil {
		v, err := parse(strings.TrimSpace(*raw.Min))
		if err != nil {
			return b, err
		}
		b.Min = v
	}
	if raw.Max != nil {
		v, err := parse(strings.TrimSpace(*raw.Max))
		if err != nil {
			return b, err
		}
		b.Max = v
	}
	return b, nil
}

func parseInt16(s string) (int16, error) {
	v, err := strconv.ParseInt(s, 10, 16)
	return int16(v), err
}
