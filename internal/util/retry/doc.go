// Package retry re-issues control plane calls that failed transiently.
//
// [Do] retries with exponential backoff. Which errors are transient is up to
// the caller: providers pass their own classifier through [WithRetryIf], and
// any error wrapped with [Fatal] is returned immediately.
//
// This is unrelated to status polling. A call that succeeded is never
// retried here; waiting for a resource to settle lives in package poll.
package retry
