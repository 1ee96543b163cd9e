package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserInput     = errors.New("user input error")
	ErrState         = errors.New("state error")
	ErrFileIO        = errors.New("file i/o error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Kind values reported on structured results.
const (
	KindUserInput = "user_input"
	KindState     = "state"
	KindFileIO    = "file_io"
	KindInternal  = "internal"
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFileIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserInput is shorthand for Wrap(ErrUserInput, ...) without a cause.
func UserInput(component, operation, message string) error {
	return Wrap(ErrUserInput, component, operation, message, nil)
}

// State is shorthand for Wrap(ErrState, ...) without a cause.
func State(component, operation, message string) error {
	return Wrap(ErrState, component, operation, message, nil)
}

// Kind maps an error to the result kind surfaced to callers.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUserInput):
		return KindUserInput
	case errors.Is(err, ErrState), errors.Is(err, ErrNotFound), errors.Is(err, ErrConfiguration):
		return KindState
	case errors.Is(err, ErrFileIO):
		return KindFileIO
	default:
		return KindInternal
	}
}

// Message strips the marker prefix so the remaining text reads well in a report.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{ErrUserInput, ErrState, ErrFileIO, ErrConfiguration, ErrNotFound} {
		if errors.Is(err, marker) {
			msg = strings.TrimPrefix(msg, marker.Error()+": ")
			break
		}
	}
	return msg
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
