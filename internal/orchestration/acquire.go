package orchestration

import (
	"context"

	"github.com/imamik/floatctl/internal/cloud"
)

// Acquisition is the replacement address chosen by AcquireAddress. When
// Aborted is set no address was chosen and nothing was mutated.
type Acquisition struct {
	Address   cloud.Address
	Allocated bool
	Aborted   bool
}

// AcquireAddress returns the first Available address in region, or allocates
// a new one from cfg when none exists and allowAllocate is set. With nothing
// available and allocation disallowed it returns an aborted Acquisition and a
// nil error.
func (o *Orchestrator) AcquireAddress(ctx context.Context, region string, cfg cloud.AllocationConfig, allowAllocate bool) (Acquisition, error) {
	n, ops := o.scope("acquire", "")
	return o.acquireAddress(ctx, n, ops, region, cfg, allowAllocate)
}

func (o *Orchestrator) acquireAddress(ctx context.Context, n notifier, ops *Operations, region string, cfg cloud.AllocationConfig, allowAllocate bool) (Acquisition, error) {
	n.info("Finding existing available addresses")
	available, err := o.catalog.AvailableAddresses(ctx, region)
	if err != nil {
		return Acquisition{}, err
	}

	if len(available) > 0 {
		addr := available[0]
		n.info("Available address %s (%s) found, reusing it", addr.AllocationID, addr.IP)
		n.addressSnapshot("reused address", addr)
		return Acquisition{Address: addr}, nil
	}

	n.info("No available address found")
	if !allowAllocate {
		n.info("Allocating a new address is disabled by configuration")
		return Acquisition{Aborted: true}, nil
	}

	if cfg.Region == "" {
		cfg.Region = region
	}
	n.info("Allocating a new address")
	n.allocationSnapshot("allocation config", cfg)
	addr, err := ops.Allocate(ctx, cfg)
	if err != nil {
		return Acquisition{}, err
	}
	n.info("Allocated new address %s (%s)", addr.AllocationID, addr.IP)
	n.addressSnapshot("allocated address", addr)
	return Acquisition{Address: addr, Allocated: true}, nil
}
