// Package memory is a simulated control plane kept in a go-memdb database.
//
// Mutations behave like a real cloud: they are validated against the current
// state, acknowledged immediately, and leave the resource in a transient
// status (Associating, Unassociating, Starting, Stopping) that only settles
// after a configurable number of list calls. Every mutating call is appended
// to a call log so tests can assert on exactly what was issued.
package memory
