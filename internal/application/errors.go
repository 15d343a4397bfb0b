package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrCalendarUnconfigured is returned when an operation needs the external
	// calendar service but none was wired.
	ErrCalendarUnconfigured = errors.New("application: calendar service not configured")
	// ErrGeneratorUnconfigured is returned when schedule generation is
	// requested but no generator was wired.
	ErrGeneratorUnconfigured = errors.New("application: schedule generator not configured")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
