package aliyun

import (
	"context"
	"fmt"
	"time"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	ecs "github.com/alibabacloud-go/ecs-20140526/v4/client"
	"github.com/alibabacloud-go/tea/tea"
	vpc "github.com/alibabacloud-go/vpc-20160428/v6/client"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/util/retry"
)

const pageSize = 100

// ecsAPI is the subset of the ECS SDK client used here.
type ecsAPI interface {
	DescribeInstances(*ecs.DescribeInstancesRequest) (*ecs.DescribeInstancesResponse, error)
	StopInstance(*ecs.StopInstanceRequest) (*ecs.StopInstanceResponse, error)
	StartInstance(*ecs.StartInstanceRequest) (*ecs.StartInstanceResponse, error)
}

// vpcAPI is the subset of the VPC SDK client used here. EIPs belong to the
// VPC API; only it accepts the instance charge type on allocation.
type vpcAPI interface {
	DescribeEipAddresses(*vpc.DescribeEipAddressesRequest) (*vpc.DescribeEipAddressesResponse, error)
	AssociateEipAddress(*vpc.AssociateEipAddressRequest) (*vpc.AssociateEipAddressResponse, error)
	UnassociateEipAddress(*vpc.UnassociateEipAddressRequest) (*vpc.UnassociateEipAddressResponse, error)
	AllocateEipAddress(*vpc.AllocateEipAddressRequest) (*vpc.AllocateEipAddressResponse, error)
	ReleaseEipAddress(*vpc.ReleaseEipAddressRequest) (*vpc.ReleaseEipAddressResponse, error)
}

// Client implements cloud.ControlPlane for one Alibaba Cloud region.
type Client struct {
	api        ecsAPI
	eip        vpcAPI
	region     string
	retries    int
	retryDelay time.Duration
}

var _ cloud.ControlPlane = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetry sets how often and how fast throttling and conflict errors are
// retried.
func WithRetry(maxRetries int, initialDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.retries = maxRetries
		c.retryDelay = initialDelay
	}
}

// withAPI replaces the SDK clients (useful for testing).
func withAPI(api ecsAPI, eip vpcAPI) ClientOption {
	return func(c *Client) {
		c.api = api
		c.eip = eip
	}
}

// NewClient creates a Client for region using an access key pair.
func NewClient(accessKeyID, accessKeySecret, region string, opts ...ClientOption) (*Client, error) {
	if err := cloud.Require("aliyun client", "access key id", accessKeyID, "access key secret", accessKeySecret, "region", region); err != nil {
		return nil, err
	}

	c := &Client{
		region:     region,
		retries:    3,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.api == nil {
		api, err := ecs.NewClient(openapiConfig(accessKeyID, accessKeySecret, region, "ecs"))
		if err != nil {
			return nil, fmt.Errorf("failed to create ECS client: %w", err)
		}
		c.api = api
	}
	if c.eip == nil {
		eip, err := vpc.NewClient(openapiConfig(accessKeyID, accessKeySecret, region, "vpc"))
		if err != nil {
			return nil, fmt.Errorf("failed to create VPC client: %w", err)
		}
		c.eip = eip
	}
	return c, nil
}

func openapiConfig(accessKeyID, accessKeySecret, region, product string) *openapi.Config {
	return &openapi.Config{
		AccessKeyId:     tea.String(accessKeyID),
		AccessKeySecret: tea.String(accessKeySecret),
		RegionId:        tea.String(region),
		Endpoint:        tea.String(fmt.Sprintf("%s.%s.aliyuncs.com", product, region)),
	}
}

// Region returns the region the client is bound to.
func (c *Client) Region() string {
	return c.region
}

func (c *Client) regionOr(region string) string {
	if region == "" {
		return c.region
	}
	return region
}

// do runs call with the context checked first; the SDK itself takes no
// context.
func (c *Client) do(ctx context.Context, call func() error) error {
	return c.doIf(ctx, call, isRetryable)
}

func (c *Client) doIf(ctx context.Context, call func() error, retryIf func(error) bool) error {
	return retry.Do(ctx, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return retry.Fatal(err)
		}
		return call()
	},
		retry.WithMaxRetries(c.retries),
		retry.WithInitialDelay(c.retryDelay),
		retry.WithRetryIf(retryIf),
	)
}
