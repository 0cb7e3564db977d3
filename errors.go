package filecabinet

import (
	"errors"
	"fmt"

	"github.com/ananthvk/filecabinet/internal/validation"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrNotExist         = errors.New("record store does not exist")
	ErrClosed           = errors.New("record store is closed")
	ErrIDExhausted      = errors.New("no more record ids available")
	ErrEncodingMismatch = errors.New("text encoding does not match the record store")
	ErrValidation       = validation.ErrValidation
)

// ValidationError names the field that was rejected by the validator
type ValidationError = validation.Error

// NotFoundError is returned when no live record has the requested id
type NotFoundError struct {
	ID int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record #%d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
