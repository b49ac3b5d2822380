package hcloud

import (
	"sync"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/floatctl/internal/cloud"
)

// Client implements cloud.ControlPlane using the Hetzner Cloud API.
type Client struct {
	client        *hcloud.Client
	labelSelector string
	ipType        hcloud.FloatingIPType
	retries       int
	retryDelay    time.Duration

	// pending tracks assign and unassign actions issued by this client, keyed
	// by floating IP ID.
	mu      sync.Mutex
	pending map[int64]pendingAction
}

type pendingAction struct {
	actionID int64
	status   cloud.AddressStatus
}

var _ cloud.ControlPlane = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLabelSelector limits the floating IPs considered to those matching
// selector, e.g. "floatctl=pool". Allocated floating IPs get the selector's
// key=value labels.
func WithLabelSelector(selector string) ClientOption {
	return func(c *Client) {
		c.labelSelector = selector
	}
}

// WithRetry sets how often and how fast locked-resource errors are retried.
func WithRetry(maxRetries int, initialDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.retries = maxRetries
		c.retryDelay = initialDelay
	}
}

// NewClient creates a Client authenticated with token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		client:     hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("floatctl", "")),
		ipType:     hcloud.FloatingIPTypeIPv4,
		retries:    5,
		retryDelay: time.Second,
		pending:    make(map[int64]pendingAction),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HCloudClient returns the underlying hcloud.Client.
func (c *Client) HCloudClient() *hcloud.Client {
	return c.client
}

func (c *Client) track(fipID int64, action *hcloud.Action, status cloud.AddressStatus) {
	if action == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[fipID] = pendingAction{actionID: action.ID, status: status}
}

func (c *Client) pendingFor(fipID int64) (pendingAction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[fipID]
	return p, ok
}

func (c *Client) forget(fipID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, fipID)
}
