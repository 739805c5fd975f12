package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tartampluch/go-triangles/internal/config"
)

// setupLogging installs the default JSON logger. Server mode logs to stdout
// and to a file in the user cache dir; chart mode logs warnings to stderr.
func setupLogging(debugMode, serverMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	if serverMode {
		writers = append(writers, os.Stdout)
		if logPath, err := getLogFilePath(); err == nil {
			// Truncated on each start.
			f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
			if err == nil {
				writers = append(writers, f)
				logFile = f
			} else {
				fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
			}
		}
	} else {
		writers = append(writers, os.Stderr)
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	} else if !serverMode {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath returns the log location under the user cache dir, creating it if needed.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
