package handlers

import (
	"context"

	"github.com/imamik/floatctl/internal/cloud"
)

// Stop stops the target instance and waits until it is Stopped.
func Stop(ctx context.Context, opts Options, keepCharging, force bool) error {
	mode := cloud.StopCharging
	if keepCharging {
		mode = cloud.KeepCharging
	}
	return run(ctx, opts, func(s *session) error {
		inst, err := s.orch.Stop(ctx, s.target, mode, force)
		if err != nil {
			return err
		}
		s.report.Power(inst)
		return nil
	})
}

// Start starts the target instance and waits until it is Running.
func Start(ctx context.Context, opts Options) error {
	return run(ctx, opts, func(s *session) error {
		inst, err := s.orch.Start(ctx, s.target)
		if err != nil {
			return err
		}
		s.report.Power(inst)
		return nil
	})
}
