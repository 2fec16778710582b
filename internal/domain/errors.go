package domain

import (
	"errors"
	"fmt"
)

// ErrUnmappedCode matches any UnmappedCodeError via errors.Is.
var ErrUnmappedCode = errors.New("unmapped code")

// ErrInvalidField matches any InvalidFieldError via errors.Is.
var ErrInvalidField = errors.New("invalid field")

// UnmappedCodeError reports a coded column whose value has no label.
type UnmappedCodeError struct {
	Field string
	Code  int
}

func (e *UnmappedCodeError) Error() string {
	return fmt.Sprintf("unmapped %s code %d", e.Field, e.Code)
}

func (e *UnmappedCodeError) Is(target error) bool {
	return target == ErrUnmappedCode
}

// InvalidFieldError reports a numeric column outside its valid range.
type InvalidFieldError struct {
	Field string
	Value int
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s value %d", e.Field, e.Value)
}

func (e *InvalidFieldError) Is(target error) bool {
	return target == ErrInvalidField
}
