package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/imamik/floatctl/internal/cloud"
)

// ListInstances implements cloud.ControlPlane. Unknown instance IDs yield an
// empty result instead of an error.
func (c *Client) ListInstances(ctx context.Context, filter cloud.InstanceFilter) ([]cloud.Instance, error) {
	input := &ec2.DescribeInstancesInput{InstanceIds: filter.IDs}

	var found []types.Instance
	paginator := ec2.NewDescribeInstancesPaginator(c.api, input)
	for paginator.HasMorePages() {
		var page *ec2.DescribeInstancesOutput
		err := c.do(ctx, func(ctx context.Context) error {
			var err error
			page, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			if IsNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			found = append(found, reservation.Instances...)
		}
	}
	if len(found) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(found))
	for _, inst := range found {
		ids = append(ids, awssdk.ToString(inst.InstanceId))
	}
	bound, err := c.boundAddresses(ctx, ids)
	if err != nil {
		return nil, err
	}

	var out []cloud.Instance
	for _, inst := range found {
		converted := c.toInstance(inst)
		if addr, ok := bound[converted.ID]; ok {
			converted = converted.WithBoundAddress(addr)
		}
		if filter.Matches(converted) {
			out = append(out, converted)
		}
	}
	return out, nil
}

func (c *Client) boundAddresses(ctx context.Context, instanceIDs []string) (map[string]cloud.Address, error) {
	addrs, err := c.describeAddresses(ctx, &ec2.DescribeAddressesInput{
		Filters: []types.Filter{{Name: awssdk.String("instance-id"), Values: instanceIDs}},
	})
	if err != nil {
		return nil, err
	}
	bound := make(map[string]cloud.Address, len(addrs))
	for _, addr := range addrs {
		if addr.InstanceID != "" && addr.Status == cloud.AddressInUse {
			bound[addr.InstanceID] = addr
		}
	}
	return bound, nil
}

func (c *Client) toInstance(inst types.Instance) cloud.Instance {
	out := cloud.Instance{
		ID:     awssdk.ToString(inst.InstanceId),
		Region: c.region,
		Status: cloud.InstancePending,
	}
	for _, tag := range inst.Tags {
		if awssdk.ToString(tag.Key) == "Name" {
			out.Name = awssdk.ToString(tag.Value)
		}
	}
	if inst.State != nil {
		out.Status = instanceStatus(inst.State.Name)
	}
	return out
}

func instanceStatus(name types.InstanceStateName) cloud.InstanceStatus {
	switch name {
	case types.InstanceStateNameRunning:
		return cloud.InstanceRunning
	case types.InstanceStateNameStopped:
		return cloud.InstanceStopped
	case types.InstanceStateNameStopping, types.InstanceStateNameShuttingDown:
		return cloud.InstanceStopping
	default:
		return cloud.InstancePending
	}
}

// StopInstance implements cloud.ControlPlane.
func (c *Client) StopInstance(ctx context.Context, instanceID string, mode cloud.ChargeMode, force bool) error {
	if err := cloud.Require("stop instance", "instance id", instanceID); err != nil {
		return err
	}
	input := &ec2.StopInstancesInput{
		InstanceIds: []string{instanceID},
		Force:       awssdk.Bool(force),
	}
	if mode == cloud.KeepCharging {
		input.Hibernate = awssdk.Bool(true)
	}
	return c.do(ctx, func(ctx context.Context) error {
		if _, err := c.api.StopInstances(ctx, input); err != nil {
			return fmt.Errorf("failed to stop instance %s: %w", instanceID, err)
		}
		return nil
	})
}

// StartInstance implements cloud.ControlPlane.
func (c *Client) StartInstance(ctx context.Context, instanceID string) error {
	if err := cloud.Require("start instance", "instance id", instanceID); err != nil {
		return err
	}
	return c.do(ctx, func(ctx context.Context) error {
		if _, err := c.api.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: []string{instanceID}}); err != nil {
			return fmt.Errorf("failed to start instance %s: %w", instanceID, err)
		}
		return nil
	})
}
