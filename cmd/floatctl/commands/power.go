package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/floatctl/cmd/floatctl/handlers"
)

// Stop returns the stop command.
func Stop(opts *handlers.Options) *cobra.Command {
	var keepCharging, force bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the target instance",
		Long: `Stop shuts the target instance down and waits until the control plane
reports it Stopped.

By default billing for the instance stops while it is down. Use
--keep-charging to keep resources reserved, and --force to power off
without a graceful shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Stop(cmd.Context(), *opts, keepCharging, force)
		},
	}

	cmd.Flags().BoolVar(&keepCharging, "keep-charging", false, "Keep charging for the stopped instance")
	cmd.Flags().BoolVar(&force, "force", false, "Force the stop")

	return cmd
}

// Start returns the start command.
func Start(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the target instance",
		Long:  "Start powers the target instance on and waits until the control plane reports it Running.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Start(cmd.Context(), *opts)
		},
	}
}
