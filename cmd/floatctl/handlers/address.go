package handlers

import (
	"context"

	"github.com/imamik/floatctl/internal/orchestration"
)

// Rebind moves the target onto a replacement address. The old address is
// released unless keepOld is set; a new one is allocated when none is
// available unless noAllocate is set.
func Rebind(ctx context.Context, opts Options, keepOld, noAllocate bool) error {
	return run(ctx, opts, func(s *session) error {
		res, err := s.orch.Rebind(ctx, s.target, orchestration.RebindOptions{
			ReleaseOld:    !keepOld,
			AllowAllocate: !noAllocate,
			Allocation:    s.cfg.AllocationConfig(s.target.Region),
		})
		if err != nil {
			return err
		}
		s.report.Rebind(res)
		return nil
	})
}

// Release unbinds and releases the target's current address.
func Release(ctx context.Context, opts Options) error {
	return run(ctx, opts, func(s *session) error {
		out, err := s.orch.Release(ctx, s.target)
		if err != nil {
			return err
		}
		s.report.Release(out)
		return nil
	})
}

// IP reports the target's bound address.
func IP(ctx context.Context, opts Options) error {
	return run(ctx, opts, func(s *session) error {
		s.report.IP(s.target)
		return nil
	})
}

// Status reports the target's lifecycle status.
func Status(ctx context.Context, opts Options) error {
	return run(ctx, opts, func(s *session) error {
		s.report.Status(s.target)
		return nil
	})
}
