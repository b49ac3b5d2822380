package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/smithy-go"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/util/retry"
)

// ec2API is the subset of the EC2 client used here.
type ec2API interface {
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeAddresses(ctx context.Context, in *ec2.DescribeAddressesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error)
	AssociateAddress(ctx context.Context, in *ec2.AssociateAddressInput, optFns ...func(*ec2.Options)) (*ec2.AssociateAddressOutput, error)
	DisassociateAddress(ctx context.Context, in *ec2.DisassociateAddressInput, optFns ...func(*ec2.Options)) (*ec2.DisassociateAddressOutput, error)
	AllocateAddress(ctx context.Context, in *ec2.AllocateAddressInput, optFns ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error)
	ReleaseAddress(ctx context.Context, in *ec2.ReleaseAddressInput, optFns ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error)
	StopInstances(ctx context.Context, in *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	StartInstances(ctx context.Context, in *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
}

// Client implements cloud.ControlPlane for one AWS region.
type Client struct {
	api        ec2API
	region     string
	retries    int
	retryDelay time.Duration
}

var _ cloud.ControlPlane = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetry sets how often and how fast throttled calls are retried.
func WithRetry(maxRetries int, initialDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.retries = maxRetries
		c.retryDelay = initialDelay
	}
}

func withAPI(api ec2API) ClientOption {
	return func(c *Client) {
		c.api = api
	}
}

// NewClient creates a Client for region. With an empty access key the
// default credential chain (environment, shared config, instance role) is
// used.
func NewClient(ctx context.Context, accessKeyID, secretAccessKey, region string, opts ...ClientOption) (*Client, error) {
	if err := cloud.Require("aws client", "region", region); err != nil {
		return nil, err
	}
	c := &Client{region: region, retries: 3, retryDelay: time.Second}
	for _, opt := range opts {
		opt(c)
	}
	if c.api != nil {
		return c, nil
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	c.api = ec2.NewFromConfig(cfg)
	return c, nil
}

// Region returns the region the client is bound to.
func (c *Client) Region() string {
	return c.region
}

func (c *Client) do(ctx context.Context, call func(ctx context.Context) error) error {
	return c.doIf(ctx, call, isRetryable)
}

func (c *Client) doIf(ctx context.Context, call func(ctx context.Context) error, retryIf func(error) bool) error {
	return retry.Do(ctx, call,
		retry.WithMaxRetries(c.retries),
		retry.WithInitialDelay(c.retryDelay),
		retry.WithRetryIf(retryIf),
	)
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func isRetryable(err error) bool {
	switch errorCode(err) {
	case "RequestLimitExceeded", "Throttling", "InternalError", "Unavailable", "ServiceUnavailable":
		return true
	}
	return false
}

// isThrottled reports whether the request was rejected before it ran.
func isThrottled(err error) bool {
	switch errorCode(err) {
	case "RequestLimitExceeded", "Throttling":
		return true
	}
	return false
}

// IsNotFound reports whether err says the instance or address does not exist.
func IsNotFound(err error) bool {
	code := errorCode(err)
	return strings.HasSuffix(code, ".NotFound") || strings.HasSuffix(code, ".Malformed")
}
