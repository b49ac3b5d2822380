package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/observability"
	"github.com/imamik/floatctl/internal/poll"
)

// Settings holds the poll budgets of each wait the workflows perform.
type Settings struct {
	// Address is used while waiting for an address to become Available or
	// InUse.
	Address poll.Config
	// Stop is used while waiting for an instance to reach Stopped.
	Stop poll.Config
	// Start is used while waiting for an instance to reach Running.
	Start poll.Config
}

// DefaultSettings returns 2s/5 attempts for address and start waits and
// 5s/5 attempts for stop waits.
func DefaultSettings() Settings {
	stop := poll.DefaultConfig()
	stop.Interval = 5 * time.Second
	return Settings{
		Address: poll.DefaultConfig(),
		Stop:    stop,
		Start:   poll.DefaultConfig(),
	}
}

// Orchestrator runs rebind, release and power workflows against one control
// plane.
type Orchestrator struct {
	cp       cloud.ControlPlane
	catalog  *Catalog
	settings Settings
	observer observability.Observer
	locks    *keyedMutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSettings sets the poll budgets.
func WithSettings(s Settings) Option {
	return func(o *Orchestrator) {
		o.settings = s
	}
}

// WithObserver sets the sink for workflow events.
func WithObserver(obs observability.Observer) Option {
	return func(o *Orchestrator) {
		o.observer = obs
	}
}

// New creates an Orchestrator over cp.
func New(cp cloud.ControlPlane, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cp:       cp,
		catalog:  NewCatalog(cp),
		settings: DefaultSettings(),
		observer: observability.Nop{},
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Catalog returns the catalog the orchestrator reads through.
func (o *Orchestrator) Catalog() *Catalog {
	return o.catalog
}

// Instance returns a fresh snapshot of the instance with the given ID.
func (o *Orchestrator) Instance(ctx context.Context, id string) (cloud.Instance, error) {
	return o.catalog.Instance(ctx, id)
}

// scope returns the notifier and operations for one workflow run on inst.
func (o *Orchestrator) scope(workflow string, instanceID string) (notifier, *Operations) {
	n := notifier{
		observer: o.observer.WithFields(map[string]string{"instance": instanceID}),
		workflow: workflow,
	}
	return n, &Operations{cp: o.cp, n: n}
}

// State is a workflow state.
type State string

const (
	StateIdle       State = "Idle"
	StateAcquiring  State = "Acquiring"
	StateUnbinding  State = "Unbinding"
	StateBinding    State = "Binding"
	StateConfirming State = "Confirming"
	StatePowering   State = "Powering"
	StateDone       State = "Done"
	StateAborted    State = "Aborted"
	StateFailed     State = "Failed"
)

// WorkflowError records the state a workflow had reached when it failed.
// The control plane is left as it was at that point; nothing is rolled back.
type WorkflowError struct {
	Workflow string
	State    State
	Err      error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s failed while %s: %v", e.Workflow, e.State, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (n notifier) fail(state State, err error) error {
	n.emit(observability.Event{
		Type:    observability.EventWorkflowFailed,
		State:   string(state),
		Message: err.Error(),
	})
	return &WorkflowError{Workflow: n.workflow, State: state, Err: err}
}

// keyedMutex serializes work per key. Entries are dropped once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// lock blocks until key is free and returns the matching unlock function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
