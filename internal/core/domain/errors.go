package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable marks a failed or timed-out external call. It is
	// recoverable everywhere except the initial classification step.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrMalformedOracle marks non-conforming oracle output.
	ErrMalformedOracle = errors.New("malformed oracle output")
	// ErrScheduleMalformed marks an appointment template with invalid time
	// bounds or an unmapped day name.
	ErrScheduleMalformed = errors.New("malformed schedule")

	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
