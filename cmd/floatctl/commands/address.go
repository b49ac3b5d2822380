package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/floatctl/cmd/floatctl/handlers"
)

// Rebind returns the rebind command.
func Rebind(opts *handlers.Options) *cobra.Command {
	var keepOld, noAllocate bool

	cmd := &cobra.Command{
		Use:   "rebind",
		Short: "Move the target instance onto a new floating address",
		Long: `Rebind replaces the address bound to the target instance.

An available address in the instance's region is reused; otherwise a new one
is allocated from the configuration. The current address is unbound, and
released unless --keep-old is given, before the replacement is bound. Each
step waits until the control plane confirms it.

With --no-allocate and no available address, rebind exits without changing
anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Rebind(cmd.Context(), *opts, keepOld, noAllocate)
		},
	}

	cmd.Flags().BoolVar(&keepOld, "keep-old", false, "Keep the old address allocated after unbinding it")
	cmd.Flags().BoolVar(&noAllocate, "no-allocate", false, "Never allocate a new address")

	return cmd
}

// Release returns the release command.
func Release(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Unbind and release the target's current address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Release(cmd.Context(), *opts)
		},
	}
}

// IP returns the ip command.
func IP(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ip",
		Short: "Print the address bound to the target instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.IP(cmd.Context(), *opts)
		},
	}
}

// Status returns the status command.
func Status(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the lifecycle status of the target instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), *opts)
		},
	}
}
