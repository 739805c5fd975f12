package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-triangles/internal/config"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdVersion,
		Short: config.DescVersion,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgVersionOutput,
				config.AppName,
				config.Version,
				runtime.GOOS,
				runtime.GOARCH,
			)
		},
	}
}
