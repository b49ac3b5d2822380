package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/imamik/floatctl/internal/cloud"
)

// ListAddresses implements cloud.ControlPlane. Region filters other than
// the client's own region match nothing.
func (c *Client) ListAddresses(ctx context.Context, filter cloud.AddressFilter) ([]cloud.Address, error) {
	if filter.Region != "" && filter.Region != c.region {
		return nil, nil
	}
	input := &ec2.DescribeAddressesInput{
		Filters: []types.Filter{{Name: awssdk.String("domain"), Values: []string{"vpc"}}},
	}
	if filter.AllocationID != "" {
		input.AllocationIds = []string{filter.AllocationID}
	}

	addrs, err := c.describeAddresses(ctx, input)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []cloud.Address
	for _, addr := range addrs {
		if filter.Matches(addr) {
			out = append(out, addr)
		}
	}
	return out, nil
}

func (c *Client) describeAddresses(ctx context.Context, input *ec2.DescribeAddressesInput) ([]cloud.Address, error) {
	var output *ec2.DescribeAddressesOutput
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		output, err = c.api.DescribeAddresses(ctx, input)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe addresses: %w", err)
	}
	out := make([]cloud.Address, 0, len(output.Addresses))
	for _, addr := range output.Addresses {
		out = append(out, c.toAddress(addr))
	}
	return out, nil
}

func (c *Client) toAddress(addr types.Address) cloud.Address {
	out := cloud.Address{
		AllocationID: awssdk.ToString(addr.AllocationId),
		IP:           awssdk.ToString(addr.PublicIp),
		Status:       cloud.AddressAvailable,
		Region:       c.region,
		InstanceID:   awssdk.ToString(addr.InstanceId),
	}
	if awssdk.ToString(addr.AssociationId) != "" {
		out.Status = cloud.AddressInUse
	}
	supports := true
	out.SupportsUnassociate = &supports
	return out
}

// AssociateAddress implements cloud.ControlPlane. Reassociation is refused
// so an address bound elsewhere is never stolen.
func (c *Client) AssociateAddress(ctx context.Context, instanceID, allocationID, _ string) error {
	if err := cloud.Require("associate address", "instance id", instanceID, "allocation id", allocationID); err != nil {
		return err
	}
	input := &ec2.AssociateAddressInput{
		AllocationId:       awssdk.String(allocationID),
		InstanceId:         awssdk.String(instanceID),
		AllowReassociation: awssdk.Bool(false),
	}
	return c.do(ctx, func(ctx context.Context) error {
		if _, err := c.api.AssociateAddress(ctx, input); err != nil {
			return fmt.Errorf("failed to associate %s with %s: %w", allocationID, instanceID, err)
		}
		return nil
	})
}

// UnassociateAddress implements cloud.ControlPlane. EC2 disassociates by
// association ID, which is looked up first.
func (c *Client) UnassociateAddress(ctx context.Context, instanceID, allocationID, _ string) error {
	if err := cloud.Require("unassociate address", "instance id", instanceID, "allocation id", allocationID); err != nil {
		return err
	}

	var output *ec2.DescribeAddressesOutput
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		output, err = c.api.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{AllocationIds: []string{allocationID}})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to describe address %s: %w", allocationID, err)
	}
	if len(output.Addresses) == 0 {
		return fmt.Errorf("address %s not found", allocationID)
	}
	addr := output.Addresses[0]
	if awssdk.ToString(addr.AssociationId) == "" {
		return nil
	}
	if got := awssdk.ToString(addr.InstanceId); got != "" && got != instanceID {
		return fmt.Errorf("address %s is associated with %s, not %s", allocationID, got, instanceID)
	}

	return c.do(ctx, func(ctx context.Context) error {
		if _, err := c.api.DisassociateAddress(ctx, &ec2.DisassociateAddressInput{AssociationId: addr.AssociationId}); err != nil {
			return fmt.Errorf("failed to disassociate %s: %w", allocationID, err)
		}
		return nil
	})
}

// AllocateAddress implements cloud.ControlPlane. Bandwidth and charge
// settings have no EC2 equivalent; ISP selects the network border group
// when set.
func (c *Client) AllocateAddress(ctx context.Context, cfg cloud.AllocationConfig) (cloud.Address, error) {
	input := &ec2.AllocateAddressInput{Domain: types.DomainTypeVpc}
	if cfg.ISP != "" {
		input.NetworkBorderGroup = awssdk.String(cfg.ISP)
	}

	// EC2 takes no client token here, so only throttled requests are
	// re-sent: an internal error may still have allocated the address.
	var output *ec2.AllocateAddressOutput
	err := c.doIf(ctx, func(ctx context.Context) error {
		var err error
		output, err = c.api.AllocateAddress(ctx, input)
		return err
	}, isThrottled)
	if err != nil {
		return cloud.Address{}, fmt.Errorf("failed to allocate address: %w", err)
	}
	return cloud.Address{
		AllocationID: awssdk.ToString(output.AllocationId),
		IP:           awssdk.ToString(output.PublicIp),
		Status:       cloud.AddressAvailable,
		Region:       c.region,
	}, nil
}

// ReleaseAddress implements cloud.ControlPlane.
func (c *Client) ReleaseAddress(ctx context.Context, allocationID string) error {
	if err := cloud.Require("release address", "allocation id", allocationID); err != nil {
		return err
	}
	return c.do(ctx, func(ctx context.Context) error {
		if _, err := c.api.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{AllocationId: awssdk.String(allocationID)}); err != nil {
			return fmt.Errorf("failed to release address %s: %w", allocationID, err)
		}
		return nil
	})
}
