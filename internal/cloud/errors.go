package cloud

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocationFailure means an allocation call did not yield a usable
	// address (missing AllocationID or IP literal).
	ErrAllocationFailure = errors.New("address allocation failed")

	// ErrInstanceNotFound means a lookup by instance ID returned nothing.
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a required identifier that was missing before a
// remote call could be issued.
type ValidationError struct {
	Field     string
	Operation string
}

func (e *ValidationError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s is required", e.Operation, e.Field)
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Require returns a *ValidationError for the first empty value in fields,
// given as alternating name/value pairs.
func Require(operation string, fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			return &ValidationError{Field: fields[i], Operation: operation}
		}
	}
	return nil
}
