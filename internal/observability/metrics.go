package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts workflow outcomes, poll waits and mutating calls.
type Metrics struct {
	registry  *prometheus.Registry
	workflows *prometheus.CounterVec
	waits     *prometheus.CounterVec
	mutations *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "floatctl_workflow_total",
			Help: "Workflow runs by outcome.",
		}, []string{"workflow", "outcome"}),
		waits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "floatctl_poll_waits_total",
			Help: "Pauses spent waiting for a control plane transition.",
		}, []string{"resource"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "floatctl_mutations_total",
			Help: "Mutating control plane calls issued.",
		}, []string{"operation"}),
	}
	m.registry.MustRegister(m.workflows, m.waits, m.mutations)
	return m
}

// Registry exposes the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the node-exporter textfile
// collector format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Observer returns an Observer that feeds these metrics.
func (m *Metrics) Observer() Observer {
	return metricsObserver{m: m}
}

type metricsObserver struct {
	m *Metrics
}

func (o metricsObserver) Event(event Event) {
	switch event.Type {
	case EventWorkflowCompleted:
		o.m.workflows.WithLabelValues(event.Workflow, "completed").Inc()
	case EventWorkflowAborted:
		o.m.workflows.WithLabelValues(event.Workflow, "aborted").Inc()
	case EventWorkflowFailed:
		o.m.workflows.WithLabelValues(event.Workflow, "failed").Inc()
	case EventPollWaiting:
		o.m.waits.WithLabelValues(event.Fields["kind"]).Inc()
	case EventResourceMutated:
		o.m.mutations.WithLabelValues(event.Fields["operation"]).Inc()
	}
}

func (o metricsObserver) WithFields(map[string]string) Observer {
	return o
}
