package trend

import "fmt"

// ValidationError is a recoverable bad-input error tied to a specific field.
// Tracker operations validate before mutating, so a returned ValidationError
// always means state was left untouched.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
