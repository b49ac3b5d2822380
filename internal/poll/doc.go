// Package poll blocks until an asynchronous control plane transition has been
// observed.
//
// [UntilSettled] repeatedly runs a query and returns the first element of the
// first non-empty result. It is bounded by an attempt count; an optional
// wall-clock deadline can be layered on top with [WithDeadline].
package poll
