package orchestration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/observability"
	"github.com/imamik/floatctl/internal/platform/memory"
	"github.com/imamik/floatctl/internal/poll"
)

// recorder keeps every event in emission order.
type recorder struct {
	mu     *sync.Mutex
	events *[]observability.Event
	fields map[string]string
}

func newRecorder() *recorder {
	return &recorder{mu: &sync.Mutex{}, events: &[]observability.Event{}}
}

func (r *recorder) Event(e observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fields) > 0 {
		merged := make(map[string]string, len(r.fields)+len(e.Fields))
		for k, v := range r.fields {
			merged[k] = v
		}
		for k, v := range e.Fields {
			merged[k] = v
		}
		e.Fields = merged
	}
	*r.events = append(*r.events, e)
}

func (r *recorder) WithFields(fields map[string]string) observability.Observer {
	return &recorder{mu: r.mu, events: r.events, fields: fields}
}

func (r *recorder) all() []observability.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observability.Event(nil), *r.events...)
}

// index returns the position of the first event matching match, or -1.
func (r *recorder) index(match func(observability.Event) bool) int {
	for i, e := range r.all() {
		if match(e) {
			return i
		}
	}
	return -1
}

func (r *recorder) count(t observability.EventType) int {
	n := 0
	for _, e := range r.all() {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) states() []string {
	var out []string
	for _, e := range r.all() {
		if e.Type == observability.EventWorkflowState {
			out = append(out, e.State)
		}
	}
	return out
}

// countingPlane counts list calls made through it.
type countingPlane struct {
	*memory.ControlPlane
	instanceLists atomic.Int32
	addressLists  atomic.Int32
}

func (c *countingPlane) ListInstances(ctx context.Context, f cloud.InstanceFilter) ([]cloud.Instance, error) {
	c.instanceLists.Add(1)
	return c.ControlPlane.ListInstances(ctx, f)
}

func (c *countingPlane) ListAddresses(ctx context.Context, f cloud.AddressFilter) ([]cloud.Address, error) {
	c.addressLists.Add(1)
	return c.ControlPlane.ListAddresses(ctx, f)
}

const region = "cn-hangzhou"

func fastSettings(attempts int) Settings {
	cfg := poll.Config{Interval: time.Millisecond, MaxAttempts: attempts}
	return Settings{Address: cfg, Stop: cfg, Start: cfg}
}

func newPlane(t *testing.T, opts ...memory.Option) *memory.ControlPlane {
	t.Helper()
	cp, err := memory.New(opts...)
	require.NoError(t, err)
	return cp
}

func addInstance(t *testing.T, cp *memory.ControlPlane, id string, status cloud.InstanceStatus, bound string) cloud.Instance {
	t.Helper()
	inst := cloud.Instance{ID: id, Name: "host-" + id, Status: status, Region: region}
	if bound != "" {
		inst = inst.WithBoundAddress(cloud.Address{AllocationID: bound, IP: "198.51.100." + bound[len(bound)-1:], Region: region})
	}
	require.NoError(t, cp.AddInstance(inst))
	return inst
}

func addAddress(t *testing.T, cp *memory.ControlPlane, id string) {
	t.Helper()
	require.NoError(t, cp.AddAddress(cloud.Address{
		AllocationID: id,
		IP:           "198.51.100." + id[len(id)-1:],
		Status:       cloud.AddressAvailable,
		Region:       region,
	}))
}

func boundIDs(t *testing.T, cp cloud.ControlPlane) []string {
	t.Helper()
	addrs, err := cp.ListAddresses(context.Background(), cloud.AddressFilter{Status: cloud.StatusPtr(cloud.AddressInUse)})
	require.NoError(t, err)
	ids := make([]string, 0, len(addrs))
	for _, a := range addrs {
		ids = append(ids, a.AllocationID)
	}
	return ids
}
