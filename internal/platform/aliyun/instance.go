package aliyun

import (
	"context"
	"encoding/json"
	"fmt"

	ecs "github.com/alibabacloud-go/ecs-20140526/v4/client"
	"github.com/alibabacloud-go/tea/tea"

	"github.com/imamik/floatctl/internal/cloud"
)

// ListInstances implements cloud.ControlPlane.
func (c *Client) ListInstances(ctx context.Context, filter cloud.InstanceFilter) ([]cloud.Instance, error) {
	request := &ecs.DescribeInstancesRequest{
		RegionId: tea.String(c.region),
		PageSize: tea.Int32(pageSize),
	}
	if len(filter.IDs) > 0 {
		ids, err := json.Marshal(filter.IDs)
		if err != nil {
			return nil, fmt.Errorf("failed to encode instance ids: %w", err)
		}
		request.InstanceIds = tea.String(string(ids))
	}
	if filter.Status != nil {
		request.Status = tea.String(string(*filter.Status))
	}

	var out []cloud.Instance
	for page := int32(1); ; page++ {
		request.PageNumber = tea.Int32(page)

		var response *ecs.DescribeInstancesResponse
		err := c.do(ctx, func() error {
			var err error
			response, err = c.api.DescribeInstances(request)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		if response == nil || response.Body == nil || response.Body.Instances == nil {
			break
		}

		batch := response.Body.Instances.Instance
		for _, inst := range batch {
			if inst == nil {
				continue
			}
			converted := toInstance(inst, c.region)
			if filter.Matches(converted) {
				out = append(out, converted)
			}
		}
		total := tea.Int32Value(response.Body.TotalCount)
		if len(batch) == 0 || page*pageSize >= total {
			break
		}
	}
	return out, nil
}

func toInstance(inst *ecs.DescribeInstancesResponseBodyInstancesInstance, region string) cloud.Instance {
	out := cloud.Instance{
		ID:     tea.StringValue(inst.InstanceId),
		Name:   tea.StringValue(inst.InstanceName),
		Status: cloud.InstanceStatus(tea.StringValue(inst.Status)),
		Region: tea.StringValue(inst.RegionId),
	}
	if out.Region == "" {
		out.Region = region
	}

	eip := inst.EipAddress
	if eip == nil || tea.StringValue(eip.AllocationId) == "" {
		return out
	}
	addr := cloud.Address{
		AllocationID:        tea.StringValue(eip.AllocationId),
		IP:                  tea.StringValue(eip.IpAddress),
		Status:              cloud.AddressInUse,
		Region:              out.Region,
		InstanceID:          out.ID,
		InternetChargeType:  eip.InternetChargeType,
		SupportsUnassociate: eip.IsSupportUnassociate,
	}
	if eip.Bandwidth != nil {
		bw := int(tea.Int32Value(eip.Bandwidth))
		addr.Bandwidth = &bw
	}
	return out.WithBoundAddress(addr)
}

// StopInstance implements cloud.ControlPlane. StopCharging releases compute
// billing (StoppedMode=StopCharging); KeepCharging keeps the instance's
// resources reserved.
func (c *Client) StopInstance(ctx context.Context, instanceID string, mode cloud.ChargeMode, force bool) error {
	if err := cloud.Require("stop instance", "instance id", instanceID); err != nil {
		return err
	}
	if mode == "" {
		mode = cloud.StopCharging
	}
	request := &ecs.StopInstanceRequest{
		InstanceId:  tea.String(instanceID),
		StoppedMode: tea.String(string(mode)),
		ForceStop:   tea.Bool(force),
	}
	return c.do(ctx, func() error {
		if _, err := c.api.StopInstance(request); err != nil {
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
	request := &ecs.StartInstanceRequest{InstanceId: tea.String(instanceID)}
	return c.do(ctx, func() error {
		if _, err := c.api.StartInstance(request); err != nil {
			return fmt.Errorf("failed to start instance %s: %w", instanceID, err)
		}
		return nil
	})
}
