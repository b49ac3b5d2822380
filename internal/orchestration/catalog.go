package orchestration

import (
	"context"
	"fmt"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/poll"
)

// Catalog answers read-only questions about addresses and instances. Every
// call goes to the control plane; nothing is cached.
type Catalog struct {
	cp cloud.ControlPlane
}

// NewCatalog creates a Catalog over cp.
func NewCatalog(cp cloud.ControlPlane) *Catalog {
	return &Catalog{cp: cp}
}

// Instance returns the snapshot of the instance with the given ID.
func (c *Catalog) Instance(ctx context.Context, id string) (cloud.Instance, error) {
	if err := cloud.Require("get instance", "instance id", id); err != nil {
		return cloud.Instance{}, err
	}
	instances, err := c.cp.ListInstances(ctx, cloud.InstanceFilter{IDs: []string{id}})
	if err != nil {
		return cloud.Instance{}, fmt.Errorf("failed to list instances: %w", err)
	}
	if len(instances) == 0 {
		return cloud.Instance{}, fmt.Errorf("%w: %s", cloud.ErrInstanceNotFound, id)
	}
	return instances[0], nil
}

// InstancesInStatus returns the instance with the given ID if, and only if,
// it is currently in status.
func (c *Catalog) InstancesInStatus(ctx context.Context, id string, status cloud.InstanceStatus) ([]cloud.Instance, error) {
	instances, err := c.cp.ListInstances(ctx, cloud.InstanceFilter{
		IDs:    []string{id},
		Status: &status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	return instances, nil
}

// AvailableAddresses returns every address in region that is bound to
// nothing.
func (c *Catalog) AvailableAddresses(ctx context.Context, region string) ([]cloud.Address, error) {
	return c.AddressesInStatus(ctx, "", region, cloud.AddressAvailable)
}

// AddressesInStatus lists addresses in region with the given status. An empty
// allocationID matches every address.
func (c *Catalog) AddressesInStatus(ctx context.Context, allocationID, region string, status cloud.AddressStatus) ([]cloud.Address, error) {
	addrs, err := c.cp.ListAddresses(ctx, cloud.AddressFilter{
		Status:       &status,
		Region:       region,
		AllocationID: allocationID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addrs, nil
}

// WaitAddressStatus blocks until the address identified by allocationID is
// reported in status, or the poll budget runs out.
func (c *Catalog) WaitAddressStatus(ctx context.Context, allocationID, region string, status cloud.AddressStatus, cfg poll.Config, onWait func()) (cloud.Address, error) {
	if err := cloud.Require("wait for address", "allocation id", allocationID); err != nil {
		return cloud.Address{}, err
	}
	addr, err := poll.UntilSettled(ctx, func(ctx context.Context) ([]cloud.Address, error) {
		return c.AddressesInStatus(ctx, allocationID, region, status)
	}, pollOptions(cfg, onWait)...)
	if err != nil {
		return cloud.Address{}, fmt.Errorf("address %s did not reach %s: %w", allocationID, status, err)
	}
	return addr, nil
}

// WaitInstanceStatus blocks until the instance is reported in status, or the
// poll budget runs out.
func (c *Catalog) WaitInstanceStatus(ctx context.Context, id string, status cloud.InstanceStatus, cfg poll.Config, onWait func()) (cloud.Instance, error) {
	if err := cloud.Require("wait for instance", "instance id", id); err != nil {
		return cloud.Instance{}, err
	}
	inst, err := poll.UntilSettled(ctx, func(ctx context.Context) ([]cloud.Instance, error) {
		return c.InstancesInStatus(ctx, id, status)
	}, pollOptions(cfg, onWait)...)
	if err != nil {
		return cloud.Instance{}, fmt.Errorf("instance %s did not reach %s: %w", id, status, err)
	}
	return inst, nil
}

func pollOptions(cfg poll.Config, onWait func()) []poll.Option {
	opts := []poll.Option{poll.WithConfig(cfg)}
	if onWait != nil {
		opts = append(opts, poll.WithOnWait(func(poll.Wait) { onWait() }))
	}
	return opts
}
