package validation

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrUnknownRule = errors.New("unknown validation rule set")
)

// Error reports which field failed validation and why
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes every *Error match ErrValidation
func (e *Error) Is(target error) bool {
	return target == ErrValidation
}
