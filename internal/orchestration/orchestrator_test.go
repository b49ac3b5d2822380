package orchestration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/floatctl/internal/cloud"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()
	s := DefaultSettings()
	assert.Equal(t, 2*time.Second, s.Address.Interval)
	assert.Equal(t, 5*time.Second, s.Stop.Interval)
	assert.Equal(t, 2*time.Second, s.Start.Interval)
	assert.Equal(t, 5, s.Address.MaxAttempts)
}

func TestWorkflowError(t *testing.T) {
	t.Parallel()
	inner := errors.New("boom")
	err := &WorkflowError{Workflow: "rebind", State: StateBinding, Err: inner}

	assert.Equal(t, "rebind failed while Binding: boom", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()
	k := newKeyedMutex()

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.lock("i-1")
			defer unlock()
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, peak.Load())
	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}

func TestKeyedMutex_DifferentKeysIndependent(t *testing.T) {
	t.Parallel()
	k := newKeyedMutex()

	unlockA := k.lock("i-1")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := k.lock("i-2")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestCatalog_Instance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cp := newPlane(t)
	addInstance(t, cp, "i-1", cloud.InstanceRunning, "a-1")
	c := NewCatalog(cp)

	inst, err := c.Instance(ctx, "i-1")
	require.NoError(t, err)
	assert.Equal(t, "host-i-1", inst.Name)

	_, err = c.Instance(ctx, "")
	require.ErrorIs(t, err, cloud.ErrValidation)

	_, err = c.Instance(ctx, "i-404")
	require.ErrorIs(t, err, cloud.ErrInstanceNotFound)
}

func TestOperations_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cp := newPlane(t)
	ops := NewOperations(cp, nil)

	tests := []struct {
		name string
		call func() error
	}{
		{"bind without instance", func() error { return ops.Bind(ctx, cloud.Instance{}, cloud.Address{AllocationID: "a-1"}) }},
		{"bind without address", func() error { return ops.Bind(ctx, cloud.Instance{ID: "i-1"}, cloud.Address{}) }},
		{"unbind without address", func() error { return ops.Unbind(ctx, cloud.Instance{ID: "i-1"}, cloud.Address{}) }},
		{"release without address", func() error { return ops.Release(ctx, cloud.Address{}) }},
		{"stop without instance", func() error { return ops.Stop(ctx, "", cloud.StopCharging, false) }},
		{"start without instance", func() error { return ops.Start(ctx, "") }},
		{"allocate without region", func() error { _, err := ops.Allocate(ctx, cloud.AllocationConfig{}); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), cloud.ErrValidation)
		})
	}
	assert.Empty(t, cp.Calls())
}
