package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidationFailed matches any *ValidationError.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError describes a setting with an unusable value.
type ValidationError struct {
	// Path is the dotted setting path, e.g. "playback.pollInterval".
	Path string
	// Message describes the problem.
	Message string
	// Value is the offending value.
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is reports whether target is ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ValidationErrors collects every failure found in one pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid settings: %s", len(e), strings.Join(msgs, "; "))
}

// Unwrap returns the individual errors.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}
