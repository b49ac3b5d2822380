package handlers

import (
	"errors"
	"fmt"

	"github.com/imamik/floatctl/internal/cloud"
)

// TargetNotFoundError reports that the configured target instance does not
// exist on the control plane.
type TargetNotFoundError struct {
	ID string
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("cannot find the target instance %q", e.ID)
}

// Is makes errors.Is(err, cloud.ErrInstanceNotFound) succeed.
func (e *TargetNotFoundError) Is(target error) bool {
	return target == cloud.ErrInstanceNotFound
}

// Exit codes.
const (
	ExitFailure        = 1
	ExitTargetNotFound = 2
)

// ExitCode maps a handler error to the process exit code.
func ExitCode(err error) int {
	var notFound *TargetNotFoundError
	if errors.As(err, &notFound) {
		return ExitTargetNotFound
	}
	return ExitFailure
}
