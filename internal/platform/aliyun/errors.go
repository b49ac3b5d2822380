package aliyun

import (
	"errors"
	"strings"

	"github.com/alibabacloud-go/tea/tea"
)

// retryableCodes are ECS and VPC error codes for conditions that clear on their own.
// TaskConflict shows up when an EIP is associated right after an unassociate
// settled on the EIP side but not yet on the instance side.
var retryableCodes = []string{
	"Throttling",
	"ServiceUnavailable",
	"TaskConflict",
	"OperationConflict",
	"LastTokenProcessing",
}

// errorCode returns the ECS error code carried by err, if any.
func errorCode(err error) string {
	var sdkErr *tea.SDKError
	if errors.As(err, &sdkErr) {
		return tea.StringValue(sdkErr.Code)
	}
	return ""
}

func isRetryable(err error) bool {
	code := errorCode(err)
	if code == "" {
		return false
	}
	for _, prefix := range retryableCodes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// isThrottled reports whether err is a rejected-before-execution throttling
// error, which is safe to retry even for non-idempotent calls.
func isThrottled(err error) bool {
	return strings.HasPrefix(errorCode(err), "Throttling")
}

// IsNotFound reports whether err says the instance or EIP does not exist.
func IsNotFound(err error) bool {
	code := errorCode(err)
	return strings.HasPrefix(code, "InvalidInstanceId.NotFound") ||
		strings.HasPrefix(code, "InvalidAllocationId.NotFound")
}
