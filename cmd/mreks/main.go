// Package main is the entry point for the mreks CLI.
//
// mreks declares a two-region EKS deployment: a cluster stack per region,
// the workloads running on each cluster and a release pipeline that deploys
// to the primary region, waits for approval and then deploys to the
// secondary region.
//
// For detailed usage information, run:
//
//	mreks --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/mreks/cmd/mreks/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
