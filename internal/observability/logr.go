package observability

import "github.com/go-logr/logr"

// LogrObserver forwards events to a logr.Logger, for embedding floatctl in
// programs that already log through logr.
type LogrObserver struct {
	log logr.Logger
}

// NewLogrObserver wraps log.
func NewLogrObserver(log logr.Logger) *LogrObserver {
	return &LogrObserver{log: log}
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	kv := make([]any, 0, 8+2*len(event.Fields))
	kv = append(kv, "type", string(event.Type))
	if event.Workflow != "" {
		kv = append(kv, "workflow", event.Workflow)
	}
	if event.State != "" {
		kv = append(kv, "state", event.State)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	for k, v := range event.Fields {
		kv = append(kv, k, v)
	}

	if event.Type == EventWorkflowFailed {
		o.log.Error(nil, event.Message, kv...)
		return
	}
	log := o.log
	if event.Verbose || event.Type == EventWorkflowState {
		log = log.V(1)
	}
	log.Info(event.Message, kv...)
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	kv := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &LogrObserver{log: o.log.WithValues(kv...)}
}
