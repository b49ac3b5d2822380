// Package observability carries workflow notifications from the orchestrator
// to whoever is watching: console logs, logr sinks, a channel, a spinner, or
// Prometheus counters.
//
// The orchestrator only ever sees the [Observer] interface. Sinks are
// combined with [Multi].
package observability
