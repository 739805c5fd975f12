// Package cli defines the triangles command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-triangles/internal/config"
)

// Execute runs the command tree and returns the process exit code.
// SIGINT and SIGTERM cancel the command context.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          config.CmdRoot,
		Short:        config.DescRoot,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&debug, config.FlagDebug, false, config.FlagDescDebug)
	cmd.AddCommand(
		chartCmd(&debug),
		serveCmd(&debug),
		versionCmd(),
	)
	return cmd
}
