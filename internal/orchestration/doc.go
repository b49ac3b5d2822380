// Package orchestration moves a floating address between instances and
// toggles instance power state on top of a cloud.ControlPlane.
//
// The package is layered:
//
//   - Catalog: read-only queries translating list calls into snapshots, plus
//     the address and instance status waits built on poll.UntilSettled.
//   - Operations: single mutating calls (bind, unbind, allocate, release,
//     stop, start). None of them wait for convergence.
//   - Orchestrator: the rebind, release and power workflows composed from the
//     two layers above.
//
// # Rebind
//
// Rebind runs Acquiring -> Unbinding -> Binding -> Confirming -> Done. The
// replacement address is chosen first so that declining to allocate aborts
// the workflow before anything is mutated. The current address is always
// unbound and observed Available before the replacement is bound, which keeps
// an instance at one bound address at any settled moment.
//
// Rebind is not address-sticky: running it on an instance whose address is
// already fine still unbinds it and binds an equivalent one.
//
// # Concurrency
//
// Workflows on the same instance ID are serialized by the Orchestrator.
// Workflows on different instances run independently.
package orchestration
