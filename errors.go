package pgcast

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedHstore = errors.New("malformed hstore")
	ErrMalformedArray  = errors.New("malformed array")
	ErrMalformedRange  = errors.New("malformed range")
	ErrInvalidHex      = errors.New("invalid hexadecimal digits")
)

// ParseError is returned when text cannot be decoded as the named type.
type ParseError struct {
	Type string // PostgreSQL type name, e.g. "point"
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot parse %q as %s", e.Text, e.Type)
	}
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Text, e.Type, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EncodeError is returned when a value cannot be rendered as the named type.
type EncodeError struct {
	Type  string
	Value any
	Err   error
}

func (e *EncodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot encode %v as %s", e.Value, e.Type)
	}
	return fmt.Sprintf("cannot encode %v as %s: %v", e.Value, e.Type, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

func newParseError(typ, text string, err error) *ParseError {
	return &ParseError{Type: typ, Text: text, Err: err}
}
