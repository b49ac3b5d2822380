// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/floatctl/cmd/floatctl/handlers"
	"github.com/imamik/floatctl/internal/config"
)

// Root returns the root command for the floatctl CLI.
//
// The persistent flags are shared by every subcommand through one
// handlers.Options value.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:           "floatctl",
		Short:         "Rebind floating addresses and control instance power",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.Out = cmd.OutOrStdout()
			opts.Err = cmd.ErrOrStderr()
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show verbose output")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "Disable output")
	flags.StringVarP(&opts.ConfigPath, "config", "c", config.DefaultConfigPath(), "Path to the configuration file")
	flags.StringVarP(&opts.SecretsPath, "secrets", "s", config.DefaultSecretsPath(), "Path to the secrets file")
	flags.StringVar(&opts.Provider, "provider", "", "Control plane provider (aliyun, hcloud, aws, memory)")
	flags.StringVar(&opts.Target, "target", "", "Target instance ID, overrides the configuration file")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile on exit")

	// Power
	cmd.AddCommand(Stop(opts))
	cmd.AddCommand(Start(opts))

	// Addresses
	cmd.AddCommand(Rebind(opts))
	cmd.AddCommand(Release(opts))
	cmd.AddCommand(IP(opts))
	cmd.AddCommand(Status(opts))

	cmd.AddCommand(Version())

	return cmd
}
