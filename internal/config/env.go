package config

import (
	"os"
	"strconv"
	"time"
)

// applyEnv overrides file values from the environment.
//
// Environment Variables:
//   - FLOATCTL_PROVIDER
//   - FLOATCTL_TARGET
//   - FLOATCTL_POLL_INTERVAL (duration, e.g. 2s)
//   - FLOATCTL_POLL_MAX_ATTEMPTS
//   - FLOATCTL_POLL_DEADLINE (duration)
//
// Values that fail to parse are ignored.
func (c *Config) applyEnv() {
	c.Provider = parseString("FLOATCTL_PROVIDER", c.Provider)
	c.Target = parseString("FLOATCTL_TARGET", c.Target)
	c.Poll.Interval = parseDuration("FLOATCTL_POLL_INTERVAL", c.Poll.Interval)
	c.Poll.Deadline = parseDuration("FLOATCTL_POLL_DEADLINE", c.Poll.Deadline)

	attempts := DefaultMaxAttempts
	if c.Poll.MaxAttempts != nil {
		attempts = *c.Poll.MaxAttempts
	}
	attempts = parseInt("FLOATCTL_POLL_MAX_ATTEMPTS", attempts)
	c.Poll.MaxAttempts = &attempts
}

// applyEnv overrides credentials from the environment.
//
// Environment Variables:
//   - HCLOUD_TOKEN
//   - ALIBABA_CLOUD_ACCESS_KEY_ID
//   - ALIBABA_CLOUD_ACCESS_KEY_SECRET
func (s *Secrets) applyEnv() {
	s.Token = parseString("HCLOUD_TOKEN", s.Token)
	s.AccessKeyID = parseString("ALIBABA_CLOUD_ACCESS_KEY_ID", s.AccessKeyID)
	s.AccessKeySecret = parseString("ALIBABA_CLOUD_ACCESS_KEY_SECRET", s.AccessKeySecret)
}

func parseString(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
