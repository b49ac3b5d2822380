package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default file names, resolved against the home directory.
const (
	DefaultConfigFilename  = "config.json"
	DefaultSecretsFilename = "secrets.json"
)

// Load reads both files, applies defaults and environment overrides and
// validates the result.
func Load(configPath, secretsPath string) (*Config, *Secrets, error) {
	cfg, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	secrets, err := LoadSecrets(secretsPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(secrets); err != nil {
		return nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, secrets, nil
}

// LoadFile reads a configuration file without validating it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses configuration data and applies defaults and
// environment overrides.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// LoadSecrets reads a secrets file. A missing file yields empty secrets so
// credentials can come from the environment alone.
func LoadSecrets(path string) (*Secrets, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}
	return ParseSecrets(data)
}

// ParseSecrets parses secrets data and applies environment overrides.
func ParseSecrets(data []byte) (*Secrets, error) {
	var s Secrets
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse secrets: %w", err)
	}
	s.applyEnv()
	return &s, nil
}

// DefaultConfigPath returns ~/config.json.
func DefaultConfigPath() string {
	return homePath(DefaultConfigFilename)
}

// DefaultSecretsPath returns ~/secrets.json.
func DefaultSecretsPath() string {
	return homePath(DefaultSecretsFilename)
}

func homePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}
