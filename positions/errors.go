package positions

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when a contract field is outside the
	// domain of the model.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumericDegeneracy is returned when valid inputs still produce a
	// non-finite price or greek, e.g. exp() overflow for extreme carry.
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)

// ParameterError describes the contract field that failed validation.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
