package fwimage

import (
	"errors"
	"fmt"
)

var ErrInvalidHeader = errors.New("Invalid firmware header")

// FormatError names the header field that could not be decoded or encoded.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidHeader, e.Field, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidHeader
}

func formatError(field string, format string, param ...interface{}) error {
	return &FormatError{Field: field, Reason: fmt.Sprintf(format, param...)}
}
