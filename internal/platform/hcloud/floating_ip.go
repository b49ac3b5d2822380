package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/util/labels"
	"github.com/imamik/floatctl/internal/util/retry"
)

// ListAddresses implements cloud.ControlPlane.
func (c *Client) ListAddresses(ctx context.Context, filter cloud.AddressFilter) ([]cloud.Address, error) {
	var fips []*hcloud.FloatingIP
	if filter.AllocationID != "" {
		id, err := parseID("allocation id", filter.AllocationID)
		if err != nil {
			return nil, err
		}
		fip, _, err := c.client.FloatingIP.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get floating IP: %w", err)
		}
		if fip != nil {
			fips = append(fips, fip)
		}
	} else {
		var err error
		fips, err = c.client.FloatingIP.AllWithOpts(ctx, hcloud.FloatingIPListOpts{
			ListOpts: hcloud.ListOpts{LabelSelector: c.labelSelector},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list floating IPs: %w", err)
		}
	}

	var out []cloud.Address
	for _, fip := range fips {
		addr, err := c.toAddress(ctx, fip)
		if err != nil {
			return nil, err
		}
		if filter.Matches(addr) {
			out = append(out, addr)
		}
	}
	return out, nil
}

func (c *Client) toAddress(ctx context.Context, fip *hcloud.FloatingIP) (cloud.Address, error) {
	addr := cloud.Address{
		AllocationID: formatID(fip.ID),
		Status:       cloud.AddressAvailable,
	}
	if fip.IP != nil {
		addr.IP = fip.IP.String()
	}
	if fip.HomeLocation != nil {
		addr.Region = fip.HomeLocation.Name
	}
	if fip.Server != nil {
		addr.Status = cloud.AddressInUse
		addr.InstanceID = formatID(fip.Server.ID)
	}
	supports := true
	addr.SupportsUnassociate = &supports

	p, ok := c.pendingFor(fip.ID)
	if !ok {
		return addr, nil
	}
	action, _, err := c.client.Action.GetByID(ctx, p.actionID)
	if err != nil {
		return cloud.Address{}, fmt.Errorf("failed to get action %d: %w", p.actionID, err)
	}
	if action != nil && action.Status == hcloud.ActionStatusRunning {
		addr.Status = p.status
		return addr, nil
	}
	c.forget(fip.ID)
	return addr, nil
}

// AssociateAddress implements cloud.ControlPlane. The region is implied by
// the floating IP and ignored.
func (c *Client) AssociateAddress(ctx context.Context, instanceID, allocationID, _ string) error {
	serverID, err := parseID("instance id", instanceID)
	if err != nil {
		return err
	}
	fipID, err := parseID("allocation id", allocationID)
	if err != nil {
		return err
	}

	return c.do(ctx, func(ctx context.Context) error {
		action, _, err := c.client.FloatingIP.Assign(ctx, &hcloud.FloatingIP{ID: fipID}, &hcloud.Server{ID: serverID})
		if err != nil {
			return fmt.Errorf("failed to assign floating IP %d to server %d: %w", fipID, serverID, err)
		}
		c.track(fipID, action, cloud.AddressAssociating)
		return nil
	})
}

// UnassociateAddress implements cloud.ControlPlane.
func (c *Client) UnassociateAddress(ctx context.Context, _, allocationID, _ string) error {
	fipID, err := parseID("allocation id", allocationID)
	if err != nil {
		return err
	}

	return c.do(ctx, func(ctx context.Context) error {
		action, _, err := c.client.FloatingIP.Unassign(ctx, &hcloud.FloatingIP{ID: fipID})
		if err != nil {
			return fmt.Errorf("failed to unassign floating IP %d: %w", fipID, err)
		}
		c.track(fipID, action, cloud.AddressUnassociating)
		return nil
	})
}

// AllocateAddress implements cloud.ControlPlane. Region is the home
// location; bandwidth and charge settings do not apply to Hetzner.
func (c *Client) AllocateAddress(ctx context.Context, cfg cloud.AllocationConfig) (cloud.Address, error) {
	loc, _, err := c.client.Location.Get(ctx, cfg.Region)
	if err != nil {
		return cloud.Address{}, fmt.Errorf("failed to get location %s: %w", cfg.Region, err)
	}
	if loc == nil {
		return cloud.Address{}, fmt.Errorf("location not found: %s", cfg.Region)
	}

	opts := hcloud.FloatingIPCreateOpts{
		Type:         c.ipType,
		HomeLocation: loc,
		Labels:       labels.NewLabelBuilder().WithSelector(c.labelSelector).Build(),
	}
	res, _, err := c.client.FloatingIP.Create(ctx, opts)
	if err != nil {
		return cloud.Address{}, fmt.Errorf("failed to create floating IP: %w", err)
	}
	if res.FloatingIP == nil {
		return cloud.Address{}, fmt.Errorf("%w: empty create response", cloud.ErrAllocationFailure)
	}
	return c.toAddress(ctx, res.FloatingIP)
}

// ReleaseAddress implements cloud.ControlPlane.
func (c *Client) ReleaseAddress(ctx context.Context, allocationID string) error {
	fipID, err := parseID("allocation id", allocationID)
	if err != nil {
		return err
	}

	return c.do(ctx, func(ctx context.Context) error {
		if _, err := c.client.FloatingIP.Delete(ctx, &hcloud.FloatingIP{ID: fipID}); err != nil {
			return fmt.Errorf("failed to delete floating IP %d: %w", fipID, err)
		}
		c.forget(fipID)
		return nil
	})
}

func (c *Client) do(ctx context.Context, call func(ctx context.Context) error) error {
	return retry.Do(ctx, call,
		retry.WithMaxRetries(c.retries),
		retry.WithInitialDelay(c.retryDelay),
		retry.WithRetryIf(isRetryable),
	)
}
