package orchestration

import (
	"context"

	"github.com/imamik/floatctl/internal/cloud"
)

// UnbindOutcome describes what UnbindCurrent did. Unbound is false when the
// instance had no address bound, in which case nothing was mutated.
type UnbindOutcome struct {
	Address  cloud.Address
	Unbound  bool
	Released bool
}

// UnbindCurrent detaches whatever address the instance currently holds,
// waits for it to become Available and, if releaseOld is set, releases it.
// An instance with nothing bound is a no-op, not an error.
func (o *Orchestrator) UnbindCurrent(ctx context.Context, inst cloud.Instance, releaseOld bool) (UnbindOutcome, error) {
	return o.unbindWorkflow(ctx, "unbind", inst, releaseOld)
}

// Release unbinds the instance's current address and releases it.
func (o *Orchestrator) Release(ctx context.Context, inst cloud.Instance) (UnbindOutcome, error) {
	return o.unbindWorkflow(ctx, "release", inst, true)
}

func (o *Orchestrator) unbindWorkflow(ctx context.Context, workflow string, inst cloud.Instance, releaseOld bool) (UnbindOutcome, error) {
	if err := cloud.Require(workflow, "instance id", inst.ID); err != nil {
		return UnbindOutcome{}, err
	}
	unlock := o.locks.lock(inst.ID)
	defer unlock()

	n, ops := o.scope(workflow, inst.ID)
	current, err := o.catalog.Instance(ctx, inst.ID)
	if err != nil {
		return UnbindOutcome{}, n.fail(StateUnbinding, err)
	}

	out, err := o.unbindCurrent(ctx, n, ops, current, releaseOld)
	if err != nil {
		return out, n.fail(StateUnbinding, err)
	}
	n.complete("%s finished", workflow)
	return out, nil
}

// unbindCurrent is the lock-free body shared by the unbind, release and
// rebind workflows.
func (o *Orchestrator) unbindCurrent(ctx context.Context, n notifier, ops *Operations, inst cloud.Instance, releaseOld bool) (UnbindOutcome, error) {
	n.info("Trying to unbind the currently bound address")
	addr, ok := inst.BoundAddress()
	if !ok || addr.AllocationID == "" {
		n.info("No address to unbind, continuing")
		return UnbindOutcome{}, nil
	}

	if err := ops.Unbind(ctx, inst, addr); err != nil {
		return UnbindOutcome{Address: addr}, err
	}

	// The allocation ID pins the address; a floating IP may live in another
	// location than the instance it serves.
	settled, err := o.catalog.WaitAddressStatus(ctx, addr.AllocationID, "", cloud.AddressAvailable,
		o.settings.Address, n.waiting("address", addr.AllocationID, "Waiting for the address to be unbound..."))
	if err != nil {
		return UnbindOutcome{Address: addr}, err
	}
	n.settled("address", settled.AllocationID, string(settled.Status))
	n.info("Successfully unbound address %s (%s)", settled.AllocationID, settled.IP)
	n.addressSnapshot("unbound address", settled)

	out := UnbindOutcome{Address: settled, Unbound: true}
	if !releaseOld {
		n.info("Not releasing the old address by configuration")
		return out, nil
	}

	n.info("Trying to release the unbound address")
	if err := ops.Release(ctx, settled); err != nil {
		return out, err
	}
	out.Released = true
	n.info("Successfully released address %s", settled.AllocationID)
	return out, nil
}
