package aliyun

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	ecs "github.com/alibabacloud-go/ecs-20140526/v4/client"
	"github.com/alibabacloud-go/tea/tea"
	vpc "github.com/alibabacloud-go/vpc-20160428/v6/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/floatctl/internal/cloud"
)

func newTestClient(t *testing.T, api *mockECS, eip *mockVPC) *Client {
	t.Helper()
	if api == nil {
		api = &mockECS{}
	}
	if eip == nil {
		eip = &mockVPC{}
	}
	c, err := NewClient("ak", "secret", "cn-hangzhou", withAPI(api, eip), WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	return c
}

func sdkError(code string) error {
	return tea.NewSDKError(map[string]interface{}{
		"code":    code,
		"message": code + " occurred",
	})
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	t.Parallel()
	_, err := NewClient("", "secret", "cn-hangzhou")
	require.ErrorIs(t, err, cloud.ErrValidation)
	_, err = NewClient("ak", "secret", "")
	require.ErrorIs(t, err, cloud.ErrValidation)
}

func TestClient_ListInstances(t *testing.T) {
	t.Parallel()
	api := &mockECS{
		DescribeInstancesFunc: func(*ecs.DescribeInstancesRequest) (*ecs.DescribeInstancesResponse, error) {
			return &ecs.DescribeInstancesResponse{Body: &ecs.DescribeInstancesResponseBody{
				TotalCount: tea.Int32(1),
				Instances: &ecs.DescribeInstancesResponseBodyInstances{
					Instance: []*ecs.DescribeInstancesResponseBodyInstancesInstance{{
						InstanceId:   tea.String("i-1"),
						InstanceName: tea.String("proxy"),
						Status:       tea.String("Running"),
						RegionId:     tea.String("cn-hangzhou"),
						EipAddress: &ecs.DescribeInstancesResponseBodyInstancesInstanceEipAddress{
							AllocationId:         tea.String("eip-1"),
							IpAddress:            tea.String("47.0.0.1"),
							Bandwidth:            tea.Int32(5),
							InternetChargeType:   tea.String("PayByTraffic"),
							IsSupportUnassociate: tea.Bool(true),
						},
					}},
				},
			}}, nil
		},
	}
	c := newTestClient(t, api, nil)

	instances, err := c.ListInstances(context.Background(), cloud.InstanceFilter{
		IDs:    []string{"i-1"},
		Status: cloud.StatusPtr(cloud.InstanceRunning),
	})
	require.NoError(t, err)
	require.Len(t, instances, 1)

	inst := instances[0]
	assert.Equal(t, "proxy", inst.Name)
	assert.Equal(t, cloud.InstanceRunning, inst.Status)
	addr, ok := inst.BoundAddress()
	require.True(t, ok)
	assert.Equal(t, "eip-1", addr.AllocationID)
	assert.Equal(t, "47.0.0.1", addr.IP)
	assert.Equal(t, cloud.AddressInUse, addr.Status)
	require.NotNil(t, addr.Bandwidth)
	assert.Equal(t, 5, *addr.Bandwidth)
	assert.True(t, tea.BoolValue(addr.SupportsUnassociate))

	reqs := api.recorded()
	require.Len(t, reqs, 1)
	req := reqs[0].(*ecs.DescribeInstancesRequest)
	assert.Equal(t, `["i-1"]`, tea.StringValue(req.InstanceIds))
	assert.Equal(t, "Running", tea.StringValue(req.Status))
	assert.Equal(t, "cn-hangzhou", tea.StringValue(req.RegionId))
}

func TestClient_ListInstances_EmptyEipIsUnbound(t *testing.T) {
	t.Parallel()
	api := &mockECS{
		DescribeInstancesFunc: func(*ecs.DescribeInstancesRequest) (*ecs.DescribeInstancesResponse, error) {
			return &ecs.DescribeInstancesResponse{Body: &ecs.DescribeInstancesResponseBody{
				TotalCount: tea.Int32(1),
				Instances: &ecs.DescribeInstancesResponseBodyInstances{
					Instance: []*ecs.DescribeInstancesResponseBodyInstancesInstance{{
						InstanceId: tea.String("i-2"),
						Status:     tea.String("Stopped"),
						EipAddress: &ecs.DescribeInstancesResponseBodyInstancesInstanceEipAddress{
							AllocationId: tea.String(""),
							IpAddress:    tea.String(""),
						},
					}},
				},
			}}, nil
		},
	}

	instances, err := newTestClient(t, api, nil).ListInstances(context.Background(), cloud.InstanceFilter{})
	require.NoError(t, err)
	require.Len(t, instances, 1)
	_, ok := instances[0].BoundAddress()
	assert.False(t, ok)
	assert.Equal(t, "cn-hangzhou", instances[0].Region)
}

func TestClient_ListAddresses_Paginates(t *testing.T) {
	t.Parallel()
	api := &mockVPC{
		DescribeEipAddressesFunc: func(req *vpc.DescribeEipAddressesRequest) (*vpc.DescribeEipAddressesResponse, error) {
			page := tea.Int32Value(req.PageNumber)
			n := pageSize
			if page == 2 {
				n = 1
			}
			eips := make([]*vpc.DescribeEipAddressesResponseBodyEipAddressesEipAddress, 0, n)
			for i := range n {
				eips = append(eips, &vpc.DescribeEipAddressesResponseBodyEipAddressesEipAddress{
					AllocationId: tea.String(fmt.Sprintf("eip-%d-%d", page, i)),
					IpAddress:    tea.String("47.0.0." + strconv.Itoa(i)),
					Status:       tea.String("Available"),
					Bandwidth:    tea.String("1"),
				})
			}
			return &vpc.DescribeEipAddressesResponse{Body: &vpc.DescribeEipAddressesResponseBody{
				TotalCount:   tea.Int32(pageSize + 1),
				EipAddresses: &vpc.DescribeEipAddressesResponseBodyEipAddresses{EipAddress: eips},
			}}, nil
		},
	}
	c := newTestClient(t, nil, api)

	addrs, err := c.ListAddresses(context.Background(), cloud.AddressFilter{Status: cloud.StatusPtr(cloud.AddressAvailable)})
	require.NoError(t, err)
	assert.Len(t, addrs, pageSize+1)
	assert.Equal(t, "cn-hangzhou", addrs[0].Region)
	require.NotNil(t, addrs[0].Bandwidth)
	assert.Equal(t, 1, *addrs[0].Bandwidth)

	reqs := api.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Available", tea.StringValue(reqs[0].(*vpc.DescribeEipAddressesRequest).Status))
}

func TestClient_ListAddresses_ClientSideFilter(t *testing.T) {
	t.Parallel()
	api := &mockVPC{
		DescribeEipAddressesFunc: func(*vpc.DescribeEipAddressesRequest) (*vpc.DescribeEipAddressesResponse, error) {
			return &vpc.DescribeEipAddressesResponse{Body: &vpc.DescribeEipAddressesResponseBody{
				TotalCount: tea.Int32(2),
				EipAddresses: &vpc.DescribeEipAddressesResponseBodyEipAddresses{
					EipAddress: []*vpc.DescribeEipAddressesResponseBodyEipAddressesEipAddress{
						{AllocationId: tea.String("eip-1"), Status: tea.String("InUse"), InstanceId: tea.String("i-1")},
						{AllocationId: tea.String("eip-2"), Status: tea.String("Unassociating")},
					},
				},
			}}, nil
		},
	}

	addrs, err := newTestClient(t, nil, api).ListAddresses(context.Background(), cloud.AddressFilter{
		AllocationID: "eip-1",
		Status:       cloud.StatusPtr(cloud.AddressInUse),
	})
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, "i-1", addrs[0].InstanceID)
}

func TestClient_AssociateAddress_RetriesTaskConflict(t *testing.T) {
	t.Parallel()
	calls := 0
	api := &mockVPC{
		AssociateEipAddressFunc: func(*vpc.AssociateEipAddressRequest) (*vpc.AssociateEipAddressResponse, error) {
			calls++
			if calls == 1 {
				return nil, sdkError("TaskConflict")
			}
			return &vpc.AssociateEipAddressResponse{}, nil
		},
	}

	err := newTestClient(t, nil, api).AssociateAddress(context.Background(), "i-1", "eip-2", "")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	req := api.recorded()[0].(*vpc.AssociateEipAddressRequest)
	assert.Equal(t, "eip-2", tea.StringValue(req.AllocationId))
	assert.Equal(t, "i-1", tea.StringValue(req.InstanceId))
	assert.Equal(t, "cn-hangzhou", tea.StringValue(req.RegionId))
}

func TestClient_UnassociateAddress_PermanentError(t *testing.T) {
	t.Parallel()
	api := &mockVPC{
		UnassociateEipAddressFunc: func(*vpc.UnassociateEipAddressRequest) (*vpc.UnassociateEipAddressResponse, error) {
			return nil, sdkError("InvalidAllocationId.NotFound")
		},
	}

	err := newTestClient(t, nil, api).UnassociateAddress(context.Background(), "i-1", "eip-1", "cn-beijing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Len(t, api.recorded(), 1)
	assert.Equal(t, "cn-beijing", tea.StringValue(api.recorded()[0].(*vpc.UnassociateEipAddressRequest).RegionId))
}

func TestClient_AllocateAddress(t *testing.T) {
	t.Parallel()
	api := &mockVPC{
		AllocateEipAddressFunc: func(*vpc.AllocateEipAddressRequest) (*vpc.AllocateEipAddressResponse, error) {
			return &vpc.AllocateEipAddressResponse{Body: &vpc.AllocateEipAddressResponseBody{
				AllocationId: tea.String("eip-9"),
				EipAddress:   tea.String("47.0.0.9"),
			}}, nil
		},
	}

	addr, err := newTestClient(t, nil, api).AllocateAddress(context.Background(), cloud.AllocationConfig{
		Region:             "cn-hangzhou",
		Bandwidth:          5,
		InstanceChargeType: "PostPaid",
		InternetChargeType: "PayByTraffic",
		ISP:                "BGP",
	})
	require.NoError(t, err)
	assert.Equal(t, "eip-9", addr.AllocationID)
	assert.Equal(t, "47.0.0.9", addr.IP)
	assert.Equal(t, cloud.AddressAvailable, addr.Status)

	req := api.recorded()[0].(*vpc.AllocateEipAddressRequest)
	assert.Equal(t, "cn-hangzhou", tea.StringValue(req.RegionId))
	assert.Equal(t, "5", tea.StringValue(req.Bandwidth))
	assert.Equal(t, "PostPaid", tea.StringValue(req.InstanceChargeType))
	assert.Equal(t, "PayByTraffic", tea.StringValue(req.InternetChargeType))
	assert.Equal(t, "BGP", tea.StringValue(req.ISP))
}

func TestClient_AllocateAddress_EmptyResponse(t *testing.T) {
	t.Parallel()
	api := &mockVPC{
		AllocateEipAddressFunc: func(*vpc.AllocateEipAddressRequest) (*vpc.AllocateEipAddressResponse, error) {
			return &vpc.AllocateEipAddressResponse{}, nil
		},
	}

	_, err := newTestClient(t, nil, api).AllocateAddress(context.Background(), cloud.AllocationConfig{})
	require.ErrorIs(t, err, cloud.ErrAllocationFailure)
}

func TestClient_AllocateAddress_RetriesOnlyThrottling(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		code      string
		wantCalls int
		wantErr   bool
	}{
		{name: "throttled request is resent", code: "Throttling.User", wantCalls: 2},
		{name: "service unavailable is not resent", code: "ServiceUnavailable", wantCalls: 1, wantErr: true},
		{name: "conflict is not resent", code: "OperationConflict", wantCalls: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			calls := 0
			api := &mockVPC{
				AllocateEipAddressFunc: func(*vpc.AllocateEipAddressRequest) (*vpc.AllocateEipAddressResponse, error) {
					calls++
					if calls == 1 {
						return nil, sdkError(tt.code)
					}
					return &vpc.AllocateEipAddressResponse{Body: &vpc.AllocateEipAddressResponseBody{
						AllocationId: tea.String("eip-9"),
						EipAddress:   tea.String("47.0.0.9"),
					}}, nil
				},
			}

			_, err := newTestClient(t, nil, api).AllocateAddress(context.Background(), cloud.AllocationConfig{})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestClient_ReleaseAddress(t *testing.T) {
	t.Parallel()
	api := &mockVPC{}

	require.NoError(t, newTestClient(t, nil, api).ReleaseAddress(context.Background(), "eip-1"))

	reqs := api.recorded()
	require.Len(t, reqs, 1)
	req := reqs[0].(*vpc.ReleaseEipAddressRequest)
	assert.Equal(t, "eip-1", tea.StringValue(req.AllocationId))
	assert.Equal(t, "cn-hangzhou", tea.StringValue(req.RegionId))
}

func TestClient_StopInstance(t *testing.T) {
	t.Parallel()
	api := &mockECS{}
	c := newTestClient(t, api, nil)

	require.NoError(t, c.StopInstance(context.Background(), "i-1", cloud.KeepCharging, true))
	require.NoError(t, c.StopInstance(context.Background(), "i-1", "", false))

	reqs := api.recorded()
	require.Len(t, reqs, 2)
	first := reqs[0].(*ecs.StopInstanceRequest)
	assert.Equal(t, "KeepCharging", tea.StringValue(first.StoppedMode))
	assert.True(t, tea.BoolValue(first.ForceStop))
	second := reqs[1].(*ecs.StopInstanceRequest)
	assert.Equal(t, "StopCharging", tea.StringValue(second.StoppedMode))
	assert.False(t, tea.BoolValue(second.ForceStop))
}

func TestClient_StartInstance(t *testing.T) {
	t.Parallel()
	api := &mockECS{}
	c := newTestClient(t, api, nil)

	require.NoError(t, c.StartInstance(context.Background(), "i-1"))
	require.ErrorIs(t, c.StartInstance(context.Background(), ""), cloud.ErrValidation)
	assert.Len(t, api.recorded(), 1)
}

func TestClient_CancelledContext(t *testing.T) {
	t.Parallel()
	api := &mockVPC{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestClient(t, nil, api).ReleaseAddress(ctx, "eip-1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, api.recorded())
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, isRetryable(sdkError("Throttling.User")))
	assert.True(t, isRetryable(fmt.Errorf("wrapped: %w", sdkError("OperationConflict"))))
	assert.False(t, isRetryable(sdkError("IncorrectEipStatus")))
	assert.False(t, isRetryable(errors.New("plain")))
	assert.False(t, isRetryable(nil))
	assert.True(t, isThrottled(sdkError("Throttling")))
	assert.False(t, isThrottled(sdkError("ServiceUnavailable")))
}
