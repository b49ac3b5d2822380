package aliyun

import (
	"context"
	"fmt"
	"strconv"

	vpc "github.com/alibabacloud-go/vpc-20160428/v6/client"
	"github.com/alibabacloud-go/tea/tea"

	"github.com/imamik/floatctl/internal/cloud"
)

// ListAddresses implements cloud.ControlPlane.
func (c *Client) ListAddresses(ctx context.Context, filter cloud.AddressFilter) ([]cloud.Address, error) {
	request := &vpc.DescribeEipAddressesRequest{
		RegionId: tea.String(c.regionOr(filter.Region)),
		PageSize: tea.Int32(pageSize),
	}
	if filter.Status != nil {
		request.Status = tea.String(string(*filter.Status))
	}
	if filter.AllocationID != "" {
		request.AllocationId = tea.String(filter.AllocationID)
	}

	var out []cloud.Address
	for page := int32(1); ; page++ {
		request.PageNumber = tea.Int32(page)

		var response *vpc.DescribeEipAddressesResponse
		err := c.do(ctx, func() error {
			var err error
			response, err = c.eip.DescribeEipAddresses(request)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe EIP addresses: %w", err)
		}
		if response == nil || response.Body == nil || response.Body.EipAddresses == nil {
			break
		}

		batch := response.Body.EipAddresses.EipAddress
		for _, eip := range batch {
			if eip == nil {
				continue
			}
			addr := toAddress(eip, tea.StringValue(request.RegionId))
			if filter.Matches(addr) {
				out = append(out, addr)
			}
		}
		total := tea.Int32Value(response.Body.TotalCount)
		if len(batch) == 0 || page*pageSize >= total {
			break
		}
	}
	return out, nil
}

func toAddress(eip *vpc.DescribeEipAddressesResponseBodyEipAddressesEipAddress, region string) cloud.Address {
	addr := cloud.Address{
		AllocationID:       tea.StringValue(eip.AllocationId),
		IP:                 tea.StringValue(eip.IpAddress),
		Status:             cloud.AddressStatus(tea.StringValue(eip.Status)),
		Region:             tea.StringValue(eip.RegionId),
		InstanceID:         tea.StringValue(eip.InstanceId),
		InternetChargeType: eip.InternetChargeType,
	}
	if addr.Region == "" {
		addr.Region = region
	}
	if bw, err := strconv.Atoi(tea.StringValue(eip.Bandwidth)); err == nil {
		addr.Bandwidth = &bw
	}
	return addr
}

// AssociateAddress implements cloud.ControlPlane.
func (c *Client) AssociateAddress(ctx context.Context, instanceID, allocationID, region string) error {
	if err := cloud.Require("associate address", "instance id", instanceID, "allocation id", allocationID); err != nil {
		return err
	}
	request := &vpc.AssociateEipAddressRequest{
		AllocationId: tea.String(allocationID),
		InstanceId:   tea.String(instanceID),
		RegionId:     tea.String(c.regionOr(region)),
	}
	return c.do(ctx, func() error {
		if _, err := c.eip.AssociateEipAddress(request); err != nil {
			return fmt.Errorf("failed to associate EIP %s with %s: %w", allocationID, instanceID, err)
		}
		return nil
	})
}

// UnassociateAddress implements cloud.ControlPlane.
func (c *Client) UnassociateAddress(ctx context.Context, instanceID, allocationID, region string) error {
	if err := cloud.Require("unassociate address", "instance id", instanceID, "allocation id", allocationID); err != nil {
		return err
	}
	request := &vpc.UnassociateEipAddressRequest{
		AllocationId: tea.String(allocationID),
		InstanceId:   tea.String(instanceID),
		RegionId:     tea.String(c.regionOr(region)),
	}
	return c.do(ctx, func() error {
		if _, err := c.eip.UnassociateEipAddress(request); err != nil {
			return fmt.Errorf("failed to unassociate EIP %s from %s: %w", allocationID, instanceID, err)
		}
		return nil
	})
}

// AllocateAddress implements cloud.ControlPlane. Zero-valued settings are
// left to the API defaults. The returned address is Available.
func (c *Client) AllocateAddress(ctx context.Context, cfg cloud.AllocationConfig) (cloud.Address, error) {
	region := c.regionOr(cfg.Region)
	request := &vpc.AllocateEipAddressRequest{RegionId: tea.String(region)}
	if cfg.Bandwidth > 0 {
		request.Bandwidth = tea.String(strconv.Itoa(cfg.Bandwidth))
	}
	if cfg.InstanceChargeType != "" {
		request.InstanceChargeType = tea.String(cfg.InstanceChargeType)
	}
	if cfg.InternetChargeType != "" {
		request.InternetChargeType = tea.String(cfg.InternetChargeType)
	}
	if cfg.ISP != "" {
		request.ISP = tea.String(cfg.ISP)
	}

	// Only throttled requests are re-sent: any other failure may have
	// allocated an EIP already.
	var response *vpc.AllocateEipAddressResponse
	err := c.doIf(ctx, func() error {
		var err error
		response, err = c.eip.AllocateEipAddress(request)
		return err
	}, isThrottled)
	if err != nil {
		return cloud.Address{}, fmt.Errorf("failed to allocate EIP: %w", err)
	}
	if response == nil || response.Body == nil {
		return cloud.Address{}, fmt.Errorf("%w: empty allocate response", cloud.ErrAllocationFailure)
	}

	addr := cloud.Address{
		AllocationID: tea.StringValue(response.Body.AllocationId),
		IP:           tea.StringValue(response.Body.EipAddress),
		Status:       cloud.AddressAvailable,
		Region:       region,
	}
	if cfg.Bandwidth > 0 {
		bw := cfg.Bandwidth
		addr.Bandwidth = &bw
	}
	if cfg.InternetChargeType != "" {
		addr.InternetChargeType = tea.String(cfg.InternetChargeType)
	}
	return addr, nil
}

// ReleaseAddress implements cloud.ControlPlane.
func (c *Client) ReleaseAddress(ctx context.Context, allocationID string) error {
	if err := cloud.Require("release address", "allocation id", allocationID); err != nil {
		return err
	}
	request := &vpc.ReleaseEipAddressRequest{
		AllocationId: tea.String(allocationID),
		RegionId:     tea.String(c.region),
	}
	return c.do(ctx, func() error {
		if _, err := c.eip.ReleaseEipAddress(request); err != nil {
			return fmt.Errorf("failed to release EIP %s: %w", allocationID, err)
		}
		return nil
	})
}
