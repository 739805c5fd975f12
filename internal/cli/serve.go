package cli

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-triangles/internal/app"
	"github.com/tartampluch/go-triangles/internal/config"
	"github.com/tartampluch/go-triangles/internal/engine"
	"github.com/tartampluch/go-triangles/internal/server"
)

func serveCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdServe,
		Short: config.DescServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.LoadSettings()
			if err != nil {
				return err
			}

			if closer := setupLogging(*debug, true); closer != nil {
				defer func() { _ = closer.Close() }()
			}

			logStartupInfo()

			srv := server.NewCalendarServer(settings.Port)
			controller := app.New(settings, srv, engine.NewHTTPFetcher())
			if err := controller.Run(cmd.Context()); err != nil {
				slog.Error(config.ErrAppFailed,
					config.LogKeyComponent, config.CompMain,
					config.LogKeyError, err,
				)
				return err
			}

			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return nil
		},
	}
}

// logStartupInfo logs build and host details once per server run.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyBuiltAt, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}
