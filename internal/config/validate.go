package config

import (
	"fmt"
	"sort"
	"time"
)

// minInterval is the shortest accepted wait. Durations are written as
// strings like "2s"; a bare JSON number decodes as nanoseconds and lands
// below it.
const minInterval = time.Millisecond

var validProviders = map[string]bool{
	ProviderAliyun: true,
	ProviderHCloud: true,
	ProviderAWS:    true,
	ProviderMemory: true,
}

// Validate checks the configuration together with the secrets the selected
// provider needs.
func (c *Config) Validate(s *Secrets) error {
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of %v", c.Provider, providerNames())
	}
	if c.Target == "" {
		return fmt.Errorf("Target is required")
	}

	if err := c.validatePoll(); err != nil {
		return fmt.Errorf("poll validation failed: %w", err)
	}

	if err := c.validateCredentials(s); err != nil {
		return fmt.Errorf("credential validation failed: %w", err)
	}

	return nil
}

func (c *Config) validatePoll() error {
	if err := validateInterval("poll.interval", c.Poll.Interval); err != nil {
		return err
	}
	if c.Poll.MaxAttempts != nil && *c.Poll.MaxAttempts < 0 {
		return fmt.Errorf("poll.maxAttempts must not be negative, got %d", *c.Poll.MaxAttempts)
	}
	if c.Poll.Deadline < 0 {
		return fmt.Errorf("poll.deadline must not be negative, got %v", c.Poll.Deadline)
	}
	if c.Poll.Deadline > 0 && c.Poll.Deadline < minInterval {
		return fmt.Errorf("poll.deadline must be at least %v, got %v (write durations as strings like \"30s\")", minInterval, c.Poll.Deadline)
	}
	if err := validateInterval("power.stopInterval", c.Power.StopInterval); err != nil {
		return err
	}
	if err := validateInterval("power.startInterval", c.Power.StartInterval); err != nil {
		return err
	}
	if c.Power.MaxAttempts != nil && *c.Power.MaxAttempts < 0 {
		return fmt.Errorf("power.maxAttempts must not be negative, got %d", *c.Power.MaxAttempts)
	}
	return nil
}

func validateInterval(field string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %v", field, d)
	}
	if d < minInterval {
		return fmt.Errorf("%s must be at least %v, got %v (write durations as strings like \"2s\")", field, minInterval, d)
	}
	return nil
}

func (c *Config) validateCredentials(s *Secrets) error {
	if s == nil {
		s = &Secrets{}
	}
	switch c.Provider {
	case ProviderAliyun:
		if s.AccessKeyID == "" {
			return fmt.Errorf("accessKey_id is required")
		}
		if s.AccessKeySecret == "" {
			return fmt.Errorf("accessKey_secret is required")
		}
		if c.RegionFor(s) == "" {
			return fmt.Errorf("region_id is required")
		}
	case ProviderHCloud:
		if s.Token == "" {
			return fmt.Errorf("token is required")
		}
	case ProviderAWS:
		// The SDK default chain supplies credentials when no key is set.
		if (s.AccessKeyID == "") != (s.AccessKeySecret == "") {
			return fmt.Errorf("accessKey_id and accessKey_secret must be set together")
		}
		if c.RegionFor(s) == "" {
			return fmt.Errorf("region is required")
		}
	}
	return nil
}

func providerNames() []string {
	names := make([]string, 0, len(validProviders))
	for name := range validProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
