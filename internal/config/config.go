package config

import (
	"time"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/orchestration"
	"github.com/imamik/floatctl/internal/poll"
)

// Supported providers.
const (
	ProviderAliyun = "aliyun"
	ProviderHCloud = "hcloud"
	ProviderAWS    = "aws"
	ProviderMemory = "memory"
)

// Default poll budgets.
const (
	DefaultPollInterval  = 2 * time.Second
	DefaultMaxAttempts   = 5
	DefaultStopInterval  = 5 * time.Second
	DefaultStartInterval = 2 * time.Second
)

// Config is the contents of the configuration file.
//
// The capitalised keys keep their historical spelling so existing files
// still load.
type Config struct {
	Target             string `yaml:"Target"`
	BandWidth          int    `yaml:"BandWidth"`
	InstanceChargeType string `yaml:"InstanceChargeType"`
	InternetChargeType string `yaml:"InternetChargeType"`
	ISP                string `yaml:"ISP"`

	Provider      string      `yaml:"provider"`
	Region        string      `yaml:"region"`
	LabelSelector string      `yaml:"labelSelector"`
	Poll          PollConfig  `yaml:"poll"`
	Power         PowerConfig `yaml:"power"`
}

// PollConfig bounds address waits. Deadline is zero when unset. Durations
// are strings such as "2s" or "500ms".
type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts *int          `yaml:"maxAttempts"`
	Deadline    time.Duration `yaml:"deadline"`
}

// PowerConfig bounds instance power waits. A nil MaxAttempts inherits the
// poll value.
type PowerConfig struct {
	StopInterval  time.Duration `yaml:"stopInterval"`
	StartInterval time.Duration `yaml:"startInterval"`
	MaxAttempts   *int          `yaml:"maxAttempts"`
}

// Secrets is the contents of the secrets file.
type Secrets struct {
	AccessKeyID     string `yaml:"accessKey_id"`
	AccessKeySecret string `yaml:"accessKey_secret"`
	RegionID        string `yaml:"region_id"`
	Token           string `yaml:"token"`
}

// applyDefaults fills every unset field.
func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAliyun
	}
	if c.Poll.Interval == 0 {
		c.Poll.Interval = DefaultPollInterval
	}
	if c.Poll.MaxAttempts == nil {
		n := DefaultMaxAttempts
		c.Poll.MaxAttempts = &n
	}
	if c.Power.StopInterval == 0 {
		c.Power.StopInterval = DefaultStopInterval
	}
	if c.Power.StartInterval == 0 {
		c.Power.StartInterval = DefaultStartInterval
	}
}

// RegionFor returns the region used to reach the control plane: the config
// value when set, otherwise the one from the secrets file.
func (c *Config) RegionFor(s *Secrets) string {
	if c.Region != "" {
		return c.Region
	}
	if s == nil {
		return ""
	}
	return s.RegionID
}

// Settings converts the poll budgets for the orchestrator.
func (c *Config) Settings() orchestration.Settings {
	attempts := DefaultMaxAttempts
	if c.Poll.MaxAttempts != nil {
		attempts = *c.Poll.MaxAttempts
	}
	powerAttempts := attempts
	if c.Power.MaxAttempts != nil {
		powerAttempts = *c.Power.MaxAttempts
	}

	return orchestration.Settings{
		Address: poll.Config{
			Interval:    c.Poll.Interval,
			MaxAttempts: attempts,
			Deadline:    c.Poll.Deadline,
		},
		Stop: poll.Config{
			Interval:    c.Power.StopInterval,
			MaxAttempts: powerAttempts,
			Deadline:    c.Poll.Deadline,
		},
		Start: poll.Config{
			Interval:    c.Power.StartInterval,
			MaxAttempts: powerAttempts,
			Deadline:    c.Poll.Deadline,
		},
	}
}

// AllocationConfig returns the parameters for allocating an address in
// region.
func (c *Config) AllocationConfig(region string) cloud.AllocationConfig {
	return cloud.AllocationConfig{
		Region:             region,
		Bandwidth:          c.BandWidth,
		InstanceChargeType: c.InstanceChargeType,
		InternetChargeType: c.InternetChargeType,
		ISP:                c.ISP,
	}
}
