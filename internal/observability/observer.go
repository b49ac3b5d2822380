package observability

import (
	"maps"
	"time"
)

// Observer receives structured workflow events.
type Observer interface {
	// Event emits a structured event.
	Event(event Event)

	// WithFields returns a new Observer whose events carry the given fields
	// unless the event sets them itself.
	WithFields(fields map[string]string) Observer
}

// Event is a structured workflow notification.
type Event struct {
	Type      EventType
	Workflow  string            // "rebind", "stop", "start", "release"
	State     string            // workflow state, when Type is EventWorkflowState
	Message   string            // human-readable message
	Resource  string            // resource identifier if applicable
	Timestamp time.Time         // when the event occurred
	Fields    map[string]string // additional context
	// Verbose events are only shown when verbose output was requested.
	Verbose bool
}

// EventType classifies an Event.
type EventType string

const (
	// EventWorkflowState indicates the workflow entered a new state.
	EventWorkflowState EventType = "workflow.state"
	// EventWorkflowCompleted indicates the workflow finished successfully.
	EventWorkflowCompleted EventType = "workflow.completed"
	// EventWorkflowAborted indicates the workflow declined to proceed.
	EventWorkflowAborted EventType = "workflow.aborted"
	// EventWorkflowFailed indicates the workflow stopped on an error.
	EventWorkflowFailed EventType = "workflow.failed"

	// EventResourceMutating indicates a mutating call is about to be issued.
	EventResourceMutating EventType = "resource.mutating"
	// EventResourceMutated indicates a mutating call returned successfully.
	EventResourceMutated EventType = "resource.mutated"
	// EventResourceSnapshot carries a resource snapshot for verbose output.
	EventResourceSnapshot EventType = "resource.snapshot"

	// EventPollWaiting indicates the poller is about to sleep.
	EventPollWaiting EventType = "poll.waiting"
	// EventPollSettled indicates a polled transition was observed.
	EventPollSettled EventType = "poll.settled"

	// EventProgress is a plain progress message.
	EventProgress EventType = "progress"
)

// mergeFields overlays context fields onto an event without overriding the
// event's own keys.
func mergeFields(event Event, context map[string]string) Event {
	if len(context) == 0 {
		return event
	}
	merged := make(map[string]string, len(event.Fields)+len(context))
	maps.Copy(merged, context)
	maps.Copy(merged, event.Fields)
	event.Fields = merged
	return event
}

func copyFields(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}

// Nop discards every event.
type Nop struct{}

// Event implements Observer.
func (Nop) Event(Event) {}

// WithFields implements Observer.
func (n Nop) WithFields(map[string]string) Observer { return n }

// multi fans events out to several observers.
type multi []Observer

// Multi returns an Observer that forwards every event to each of observers.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multi) Event(event Event) {
	for _, o := range m {
		o.Event(event)
	}
}

func (m multi) WithFields(fields map[string]string) Observer {
	out := make(multi, len(m))
	for i, o := range m {
		out[i] = o.WithFields(fields)
	}
	return out
}
