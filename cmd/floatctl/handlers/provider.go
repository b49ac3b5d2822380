package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/config"
	"github.com/imamik/floatctl/internal/platform/aliyun"
	"github.com/imamik/floatctl/internal/platform/aws"
	"github.com/imamik/floatctl/internal/platform/hcloud"
	"github.com/imamik/floatctl/internal/platform/memory"
)

// Factory function variables - can be replaced in tests.
var (
	loadConfigFile  = config.LoadFile
	loadSecretsFile = config.LoadSecrets
	newControlPlane = buildControlPlane
)

// buildControlPlane returns the client for the configured provider.
func buildControlPlane(ctx context.Context, cfg *config.Config, secrets *config.Secrets) (cloud.ControlPlane, error) {
	region := cfg.RegionFor(secrets)

	switch cfg.Provider {
	case config.ProviderAliyun:
		c, err := aliyun.NewClient(secrets.AccessKeyID, secrets.AccessKeySecret, region)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderHCloud:
		var opts []hcloud.ClientOption
		if cfg.LabelSelector != "" {
			opts = append(opts, hcloud.WithLabelSelector(cfg.LabelSelector))
		}
		return hcloud.NewClient(secrets.Token, opts...), nil
	case config.ProviderAWS:
		c, err := aws.NewClient(ctx, secrets.AccessKeyID, secrets.AccessKeySecret, region)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderMemory:
		return newDemoControlPlane(cfg.Target, region)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

const demoRegion = "mem-1"

// newDemoControlPlane returns an in-memory control plane holding the target
// instance bound to one address plus one spare address. State does not
// outlive the process.
func newDemoControlPlane(target, region string) (*memory.ControlPlane, error) {
	if region == "" {
		region = demoRegion
	}
	cp, err := memory.New()
	if err != nil {
		return nil, err
	}

	inst := cloud.Instance{ID: target, Name: "demo", Status: cloud.InstanceRunning, Region: region}
	if err := cp.AddInstance(inst.WithBoundAddress(cloud.Address{
		AllocationID: "eip-demo-0001",
		IP:           "192.0.2.10",
	})); err != nil {
		return nil, fmt.Errorf("failed to seed demo instance: %w", err)
	}
	if err := cp.AddAddress(cloud.Address{
		AllocationID: "eip-demo-0002",
		IP:           "192.0.2.11",
		Region:       region,
	}); err != nil {
		return nil, fmt.Errorf("failed to seed demo address: %w", err)
	}
	return cp, nil
}
