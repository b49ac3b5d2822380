package orchestration

import (
	"context"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/observability"
)

// RebindOptions controls a Rebind run.
type RebindOptions struct {
	// ReleaseOld releases the previously bound address once it is unbound.
	ReleaseOld bool
	// AllowAllocate permits allocating a new address when none is available.
	AllowAllocate bool
	// Allocation is used when a new address is allocated. An empty Region
	// defaults to the instance's region.
	Allocation cloud.AllocationConfig
}

// RebindResult is the outcome of a Rebind run. State is StateDone or
// StateAborted when the error is nil.
type RebindResult struct {
	State     State
	Instance  cloud.Instance
	Address   cloud.Address
	Previous  UnbindOutcome
	Allocated bool
}

// Rebind moves the instance onto a replacement address: acquire, unbind
// (and optionally release) the current one, bind, confirm.
//
// The instance snapshot is re-read once the per-instance lock is held, so a
// stale inst only needs a valid ID.
func (o *Orchestrator) Rebind(ctx context.Context, inst cloud.Instance, opts RebindOptions) (RebindResult, error) {
	if err := cloud.Require("rebind", "instance id", inst.ID); err != nil {
		return RebindResult{State: StateFailed}, err
	}
	unlock := o.locks.lock(inst.ID)
	defer unlock()

	n, ops := o.scope("rebind", inst.ID)
	n.state(StateIdle)

	current, err := o.catalog.Instance(ctx, inst.ID)
	if err != nil {
		return RebindResult{State: StateFailed}, n.fail(StateIdle, err)
	}
	n.instanceSnapshot("target instance", current)

	n.state(StateAcquiring)
	cfg := opts.Allocation
	if cfg.Region == "" {
		cfg.Region = current.Region
	}
	acq, err := o.acquireAddress(ctx, n, ops, current.Region, cfg, opts.AllowAllocate)
	if err != nil {
		return RebindResult{State: StateFailed, Instance: current}, n.fail(StateAcquiring, err)
	}
	if acq.Aborted {
		n.state(StateAborted)
		n.emit(observability.Event{
			Type:     observability.EventWorkflowAborted,
			Message:  "No address to bind and allocation disallowed, exiting now",
			Resource: current.ID,
		})
		return RebindResult{State: StateAborted, Instance: current}, nil
	}

	result := RebindResult{Instance: current, Address: acq.Address, Allocated: acq.Allocated}

	n.state(StateUnbinding)
	prev, err := o.unbindCurrent(ctx, n, ops, current, opts.ReleaseOld)
	result.Previous = prev
	if err != nil {
		result.State = StateFailed
		return result, n.fail(StateUnbinding, err)
	}

	n.state(StateBinding)
	n.info("Trying to bind the new address")
	if err := ops.Bind(ctx, current, acq.Address); err != nil {
		result.State = StateFailed
		return result, n.fail(StateBinding, err)
	}

	n.state(StateConfirming)
	bound, err := o.catalog.WaitAddressStatus(ctx, acq.Address.AllocationID, "", cloud.AddressInUse,
		o.settings.Address, n.waiting("address", acq.Address.AllocationID, "Waiting for the address to be bound..."))
	if err != nil {
		result.State = StateFailed
		return result, n.fail(StateConfirming, err)
	}
	n.settled("address", bound.AllocationID, string(bound.Status))

	result.State = StateDone
	result.Address = bound
	result.Instance = current.WithBoundAddress(bound)
	n.state(StateDone)
	n.complete("Bound address %s (%s) to instance %s (%s)", bound.AllocationID, bound.IP, current.ID, current.Name)
	return result, nil
}
