// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrMissingField       = errors.New("missing mandatory field")
	ErrAmbiguousStructure = errors.New("ambiguous structure")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDataUnavailable    = errors.New("market data unavailable")
)

// MissingFieldError reports a mandatory token absent from the order text.
type MissingFieldError struct {
	Field string
	Text  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing mandatory field %q in %q", e.Field, e.Text)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// NewMissingFieldError creates a new MissingFieldError.
func NewMissingFieldError(field, text string) *MissingFieldError {
	return &MissingFieldError{Field: field, Text: text}
}

// AmbiguousStructureError reports a conflict between the structure
// keyword and the strike/type shape of the order.
type AmbiguousStructureError struct {
	Keyword string
	Shape   string
}

func (e *AmbiguousStructureError) Error() string {
	return fmt.Sprintf("ambiguous structure: keyword %q conflicts with %s", e.Keyword, e.Shape)
}

func (e *AmbiguousStructureError) Unwrap() error {
	return ErrAmbiguousStructure
}

// NewAmbiguousStructureError creates a new AmbiguousStructureError.
func NewAmbiguousStructureError(keyword, shape string) *AmbiguousStructureError {
	return &AmbiguousStructureError{Keyword: keyword, Shape: shape}
}

// InvalidInputError reports an out-of-domain numeric input.
type InvalidInputError struct {
	Field   string
	Value   float64
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s (%g): %s", e.Field, e.Value, e.Message)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// NewInvalidInputError creates a new InvalidInputError.
func NewInvalidInputError(field string, value float64, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Message: message}
}

// DataUnavailableError reports that the market-data collaborator
// cannot supply a quote for a leg.
type DataUnavailableError struct {
	Ticker string
	Strike float64
	Type   string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("market data unavailable for %s %g %s: %v", e.Ticker, e.Strike, e.Type, e.Err)
	}
	return fmt.Sprintf("market data unavailable for %s %g %s", e.Ticker, e.Strike, e.Type)
}

func (e *DataUnavailableError) Unwrap() error {
	return ErrDataUnavailable
}

// NewDataUnavailableError creates a new DataUnavailableError.
func NewDataUnavailableError(ticker string, strike float64, typ string, err error) *DataUnavailableError {
	return &DataUnavailableError{Ticker: ticker, Strike: strike, Type: typ, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
