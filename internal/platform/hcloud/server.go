package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/floatctl/internal/cloud"
)

// ListInstances implements cloud.ControlPlane. IDs in the filter may be
// numeric server IDs or server names; returned instances always carry the
// numeric ID.
func (c *Client) ListInstances(ctx context.Context, filter cloud.InstanceFilter) ([]cloud.Instance, error) {
	var servers []*hcloud.Server
	if len(filter.IDs) > 0 {
		for _, idOrName := range filter.IDs {
			server, _, err := c.client.Server.Get(ctx, idOrName)
			if err != nil {
				return nil, fmt.Errorf("failed to get server %s: %w", idOrName, err)
			}
			if server != nil {
				servers = append(servers, server)
			}
		}
	} else {
		var err error
		servers, err = c.client.Server.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list servers: %w", err)
		}
	}

	var bound map[int64]cloud.Address
	var out []cloud.Instance
	for _, server := range servers {
		inst := toInstance(server)
		if filter.Status != nil && inst.Status != *filter.Status {
			continue
		}
		if len(server.PublicNet.FloatingIPs) > 0 {
			if bound == nil {
				var err error
				if bound, err = c.boundAddresses(ctx); err != nil {
					return nil, err
				}
			}
			if addr, ok := bound[server.ID]; ok {
				inst = inst.WithBoundAddress(addr)
			}
		}
		out = append(out, inst)
	}
	return out, nil
}

// boundAddresses maps server IDs to their assigned floating IP. Hetzner
// allows several per server; the lowest ID wins.
func (c *Client) boundAddresses(ctx context.Context) (map[int64]cloud.Address, error) {
	fips, err := c.client.FloatingIP.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list floating IPs: %w", err)
	}
	chosen := make(map[int64]*hcloud.FloatingIP)
	for _, fip := range fips {
		if fip.Server == nil {
			continue
		}
		if prev, ok := chosen[fip.Server.ID]; ok && prev.ID < fip.ID {
			continue
		}
		chosen[fip.Server.ID] = fip
	}

	bound := make(map[int64]cloud.Address, len(chosen))
	for serverID, fip := range chosen {
		addr, err := c.toAddress(ctx, fip)
		if err != nil {
			return nil, err
		}
		bound[serverID] = addr
	}
	return bound, nil
}

func toInstance(server *hcloud.Server) cloud.Instance {
	inst := cloud.Instance{
		ID:     formatID(server.ID),
		Name:   server.Name,
		Status: instanceStatus(server.Status),
	}
	if server.Datacenter != nil && server.Datacenter.Location != nil {
		inst.Region = server.Datacenter.Location.Name
	}
	return inst
}

func instanceStatus(s hcloud.ServerStatus) cloud.InstanceStatus {
	switch s {
	case hcloud.ServerStatusRunning:
		return cloud.InstanceRunning
	case hcloud.ServerStatusOff:
		return cloud.InstanceStopped
	case hcloud.ServerStatusStarting:
		return cloud.InstanceStarting
	case hcloud.ServerStatusStopping:
		return cloud.InstanceStopping
	default:
		return cloud.InstancePending
	}
}

// StopInstance implements cloud.ControlPlane.
func (c *Client) StopInstance(ctx context.Context, instanceID string, _ cloud.ChargeMode, force bool) error {
	id, err := parseID("instance id", instanceID)
	if err != nil {
		return err
	}
	server := &hcloud.Server{ID: id}

	return c.do(ctx, func(ctx context.Context) error {
		if force {
			if _, _, err := c.client.Server.Poweroff(ctx, server); err != nil {
				return fmt.Errorf("failed to poweroff server: %w", err)
			}
			return nil
		}
		if _, _, err := c.client.Server.Shutdown(ctx, server); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})
}

// StartInstance implements cloud.ControlPlane.
func (c *Client) StartInstance(ctx context.Context, instanceID string) error {
	id, err := parseID("instance id", instanceID)
	if err != nil {
		return err
	}

	return c.do(ctx, func(ctx context.Context) error {
		if _, _, err := c.client.Server.Poweron(ctx, &hcloud.Server{ID: id}); err != nil {
			return fmt.Errorf("failed to poweron server: %w", err)
		}
		return nil
	})
}
