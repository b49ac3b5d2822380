package orchestration

import (
	"context"

	"github.com/imamik/floatctl/internal/cloud"
)

// Stop powers the instance off and waits until it is reported Stopped.
// mode and force are passed to the control plane unchanged. Running out of
// poll budget yields an error wrapping poll.ErrTimeout; whether that is fatal
// is up to the caller.
func (o *Orchestrator) Stop(ctx context.Context, inst cloud.Instance, mode cloud.ChargeMode, force bool) (cloud.Instance, error) {
	if err := cloud.Require("stop", "instance id", inst.ID); err != nil {
		return cloud.Instance{}, err
	}
	unlock := o.locks.lock(inst.ID)
	defer unlock()

	n, ops := o.scope("stop", inst.ID)
	n.state(StatePowering)
	n.info("Shutting down the instance")
	if err := ops.Stop(ctx, inst.ID, mode, force); err != nil {
		return cloud.Instance{}, n.fail(StatePowering, err)
	}

	n.state(StateConfirming)
	stopped, err := o.catalog.WaitInstanceStatus(ctx, inst.ID, cloud.InstanceStopped, o.settings.Stop,
		n.waiting("instance", inst.ID, "Waiting for the instance to stop..."))
	if err != nil {
		return cloud.Instance{}, n.fail(StateConfirming, err)
	}
	n.settled("instance", stopped.ID, string(stopped.Status))
	n.state(StateDone)
	n.complete("Successfully stopped the instance")
	return stopped, nil
}

// Start powers the instance on and waits until it is reported Running.
func (o *Orchestrator) Start(ctx context.Context, inst cloud.Instance) (cloud.Instance, error) {
	if err := cloud.Require("start", "instance id", inst.ID); err != nil {
		return cloud.Instance{}, err
	}
	unlock := o.locks.lock(inst.ID)
	defer unlock()

	n, ops := o.scope("start", inst.ID)
	n.state(StatePowering)
	n.info("Starting the instance")
	if err := ops.Start(ctx, inst.ID); err != nil {
		return cloud.Instance{}, n.fail(StatePowering, err)
	}

	n.state(StateConfirming)
	running, err := o.catalog.WaitInstanceStatus(ctx, inst.ID, cloud.InstanceRunning, o.settings.Start,
		n.waiting("instance", inst.ID, "Waiting for the instance to start running..."))
	if err != nil {
		return cloud.Instance{}, n.fail(StateConfirming, err)
	}
	n.settled("instance", running.ID, string(running.Status))
	n.state(StateDone)
	n.complete("Successfully started the instance")
	return running, nil
}
