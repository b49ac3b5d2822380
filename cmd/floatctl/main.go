// Package main is the entry point for the floatctl CLI.
//
// floatctl moves a floating address from one allocation to another on a
// cloud instance and controls the instance's power state, waiting for the
// control plane to confirm every transition.
//
// Commands: stop, start, rebind, ip, status, release, version.
//
// For detailed usage information, run:
//
//	floatctl --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/imamik/floatctl/cmd/floatctl/commands"
	"github.com/imamik/floatctl/cmd/floatctl/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(handlers.ExitCode(err))
	}
}
