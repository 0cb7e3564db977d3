package validation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Builder collects field validators into a Composite
//
//	v := validation.NewBuilder().
//		FirstName(2, 60).
//		SchoolGrade(1, 11).
//		Build()
type Builder struct {
	validators Composite
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) FirstName(min, max int) *Builder {
	return b.Add(FirstName(min, max))
}

func (b *Builder) LastName(min, max int) *Builder {
	return b.Add(LastName(min, max))
}

func (b *Builder) DateOfBirth(min, max time.Time) *Builder {
	return b.Add(DateOfBirth(min, max))
}

func (b *Builder) SchoolGrade(min, max int16) *Builder {
	return b.Add(SchoolGrade(min, max))
}

func (b *Builder) AverageMark(min, max decimal.Decimal) *Builder {
	return b.Add(AverageMark(min, max))
}

func (b *Builder) ClassLetter(min, max rune) *Builder {
	return b.Add(ClassLetter(min, max))
}

// Add appends any validator, it's how custom checks get mixed into a rule set
func (b *Builder) Add(v Validator) *Builder {
	b.validators = append(b.validators, v)
	return b
}

// Build returns the validators added so far. The builder can be reused afterwards
func (b *Builder) Build() Composite {
	out := make(Composite, len(b.validators))
	copy(out, b.validators)
	return out
}
