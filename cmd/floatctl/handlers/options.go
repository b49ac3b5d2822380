// Package handlers implements the business logic for floatctl commands.
//
// Each handler loads the configuration, builds the control plane client for
// the selected provider, resolves the target instance and runs one
// orchestration workflow. Factory variables allow tests to replace the
// loaders and the control plane.
package handlers

import (
	"io"
	"os"
)

// Options carries the persistent command-line flags.
type Options struct {
	ConfigPath  string
	SecretsPath string
	// Provider and Target override the config file when set.
	Provider    string
	Target      string
	MetricsFile string
	Verbose     bool
	Quiet       bool

	// Out receives command results, Err receives progress logs. Nil means
	// stdout and stderr.
	Out io.Writer
	Err io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) stderr() io.Writer {
	if o.Err == nil {
		return os.Stderr
	}
	return o.Err
}
