package anydiff

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFormat = errors.New("unknown format")
	ErrUnknownOption = errors.New("unknown option")
	ErrInvalidOption = errors.New("invalid option value")
	ErrNoInput       = errors.New("both sides are missing")
)

// MalformedInputError reports content that could not be canonicalized in its
// declared format. It aborts only the comparison it belongs to.
type MalformedInputError struct {
	Side   Side   // Empty until the comparison attributes the error
	Format Format
	Line   int // 1-based; 0 if unknown
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := "malformed"
	if e.Side != "" {
		msg += " " + string(e.Side)
	}
	msg += " " + e.Format.String() + " input"
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// FilterConfigurationError reports a filter that cannot be constructed, such
// as one with an invalid pattern.
type FilterConfigurationError struct {
	Filter  string // Filter or matcher kind, e.g. "path"
	Pattern string
	Err     error
}

func (e *FilterConfigurationError) Error() string {
	if e.Pattern == "" {
		return fmt.Sprintf("invalid %s filter: %v", e.Filter, e.Err)
	}
	return fmt.Sprintf("invalid %s filter %q: %v", e.Filter, e.Pattern, e.Err)
}

func (e *FilterConfigurationError) Unwrap() error {
	return e.Err
}
