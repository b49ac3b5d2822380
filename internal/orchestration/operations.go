package orchestration

import (
	"context"
	"fmt"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/observability"
)

// Operations issues single mutating calls. Each returns as soon as the
// control plane acknowledges the request, before the change has settled.
type Operations struct {
	cp cloud.ControlPlane
	n  notifier
}

// NewOperations creates Operations over cp reporting to observer, which may
// be nil.
func NewOperations(cp cloud.ControlPlane, observer observability.Observer) *Operations {
	return &Operations{cp: cp, n: notifier{observer: observer}}
}

// Bind associates addr with inst in the instance's region.
func (o *Operations) Bind(ctx context.Context, inst cloud.Instance, addr cloud.Address) error {
	if err := cloud.Require("bind", "instance id", inst.ID, "allocation id", addr.AllocationID); err != nil {
		return err
	}
	return o.mutate("associate", addr.AllocationID, func() error {
		return o.cp.AssociateAddress(ctx, inst.ID, addr.AllocationID, inst.Region)
	})
}

// Unbind detaches addr from inst.
func (o *Operations) Unbind(ctx context.Context, inst cloud.Instance, addr cloud.Address) error {
	if err := cloud.Require("unbind", "instance id", inst.ID, "allocation id", addr.AllocationID); err != nil {
		return err
	}
	return o.mutate("unassociate", addr.AllocationID, func() error {
		return o.cp.UnassociateAddress(ctx, inst.ID, addr.AllocationID, inst.Region)
	})
}

// Allocate creates a new address. The result is guaranteed to carry both an
// AllocationID and an IP literal; anything less is ErrAllocationFailure.
func (o *Operations) Allocate(ctx context.Context, cfg cloud.AllocationConfig) (cloud.Address, error) {
	if err := cloud.Require("allocate", "region", cfg.Region); err != nil {
		return cloud.Address{}, err
	}

	var addr cloud.Address
	err := o.mutate("allocate", cfg.Region, func() error {
		var err error
		addr, err = o.cp.AllocateAddress(ctx, cfg)
		if err != nil {
			return fmt.Errorf("%w: %w", cloud.ErrAllocationFailure, err)
		}
		if addr.AllocationID == "" || addr.IP == "" {
			return fmt.Errorf("%w: response carried allocation id %q and ip %q", cloud.ErrAllocationFailure, addr.AllocationID, addr.IP)
		}
		return nil
	})
	if err != nil {
		return cloud.Address{}, err
	}
	if addr.Region == "" {
		addr.Region = cfg.Region
	}
	return addr, nil
}

// Release deallocates addr.
func (o *Operations) Release(ctx context.Context, addr cloud.Address) error {
	if err := cloud.Require("release", "allocation id", addr.AllocationID); err != nil {
		return err
	}
	return o.mutate("release", addr.AllocationID, func() error {
		return o.cp.ReleaseAddress(ctx, addr.AllocationID)
	})
}

// Stop requests the instance to power off. mode and force are passed through
// unchanged.
func (o *Operations) Stop(ctx context.Context, instanceID string, mode cloud.ChargeMode, force bool) error {
	if err := cloud.Require("stop", "instance id", instanceID); err != nil {
		return err
	}
	return o.mutate("stop", instanceID, func() error {
		return o.cp.StopInstance(ctx, instanceID, mode, force)
	})
}

// Start requests the instance to power on.
func (o *Operations) Start(ctx context.Context, instanceID string) error {
	if err := cloud.Require("start", "instance id", instanceID); err != nil {
		return err
	}
	return o.mutate("start", instanceID, func() error {
		return o.cp.StartInstance(ctx, instanceID)
	})
}

func (o *Operations) mutate(operation, resource string, call func() error) error {
	fields := map[string]string{"operation": operation}
	o.n.emit(observability.Event{
		Type:     observability.EventResourceMutating,
		Message:  operation + " requested",
		Resource: resource,
		Fields:   fields,
		Verbose:  true,
	})
	if err := call(); err != nil {
		return fmt.Errorf("%s %s: %w", operation, resource, err)
	}
	o.n.emit(observability.Event{
		Type:     observability.EventResourceMutated,
		Message:  operation + " acknowledged",
		Resource: resource,
		Fields:   fields,
		Verbose:  true,
	})
	return nil
}
