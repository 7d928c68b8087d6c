// Package errdefs defines the error kinds shared by the cipher primitives and
// the transport layers. Analytical functions never return these; they are
// total over any UTF-8 input.
package errdefs

import (
	"errors"
	"fmt"
)

// ValidationError reports a caller-supplied value outside the accepted domain,
// such as an empty Vigenère key or an inverted pattern length range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DecodeError reports input that could not be decoded, e.g. malformed Base64
// or decoded bytes that are not valid UTF-8.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Err)
	}
	return "decode failed: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Invalid is shorthand for constructing a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsDecode reports whether err is or wraps a DecodeError.
func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// IsClientError reports whether err was caused by caller input.
func IsClientError(err error) bool {
	return IsValidation(err) || IsDecode(err)
}

// Kind names the error class for metrics labels: "validation", "decode" or
// "internal".
func Kind(err error) string {
	switch {
	case IsValidation(err):
		return "validation"
	case IsDecode(err):
		return "decode"
	default:
		return "internal"
	}
}
