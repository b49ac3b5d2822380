package orchestration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/floatctl/internal/cloud"
)

func TestAcquireAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		available     []string
		allowAllocate bool
		wantAborted   bool
		wantAllocated bool
		wantID        string
		wantOps       []string
	}{
		{name: "reuse first available", available: []string{"a-2", "a-3"}, allowAllocate: true, wantID: "a-2"},
		{name: "reuse without allocation permission", available: []string{"a-2"}, wantID: "a-2"},
		{name: "allocate when none available", allowAllocate: true, wantAllocated: true, wantOps: []string{"allocate"}},
		{name: "abort when allocation disallowed", wantAborted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cp := newPlane(t)
			for _, id := range tt.available {
				addAddress(t, cp, id)
			}
			o := New(cp)

			acq, err := o.AcquireAddress(context.Background(), region, cloud.AllocationConfig{Bandwidth: 1}, tt.allowAllocate)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAborted, acq.Aborted)
			assert.Equal(t, tt.wantAllocated, acq.Allocated)
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, acq.Address.AllocationID)
			}
			if tt.wantAllocated {
				assert.NotEmpty(t, acq.Address.IP)
				assert.Equal(t, region, acq.Address.Region)
			}
			if tt.wantOps == nil {
				assert.Empty(t, cp.Calls())
			} else {
				assert.Equal(t, tt.wantOps, cp.Operations())
			}
		})
	}
}

func TestAcquireAddress_IgnoresOtherRegions(t *testing.T) {
	t.Parallel()
	cp := newPlane(t)
	require.NoError(t, cp.AddAddress(cloud.Address{AllocationID: "a-9", IP: "192.0.2.9", Region: "us-west-1"}))
	o := New(cp)

	acq, err := o.AcquireAddress(context.Background(), region, cloud.AllocationConfig{}, false)
	require.NoError(t, err)
	assert.True(t, acq.Aborted)
}
