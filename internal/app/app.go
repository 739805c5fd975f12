// Package app wires settings, credentials, translations, the contact
// pipeline and the HTTP server into one headless controller.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-triangles/internal/chart"
	"github.com/tartampluch/go-triangles/internal/config"
	"github.com/tartampluch/go-triangles/internal/engine"
	"github.com/tartampluch/go-triangles/internal/numerology"
	"github.com/tartampluch/go-triangles/internal/server"
	"github.com/zalando/go-keyring"
)

// App owns the long-lived state of a running instance.
type App struct {
	Settings   Settings
	Server     *server.CalendarServer
	Fetcher    engine.VCardFetcher
	Clock      engine.Clock
	Translator *Translator

	// numerology is shared by every ChartFor caller; numerologyMu
	// serializes SetDate with the reads that follow it.
	numerologyMu sync.Mutex
	numerology   *numerology.Engine

	entriesMu sync.RWMutex
	entries   []engine.ChartEntry
}

// New constructs the controller and routes the server's chart requests
// through the owned engine.
func New(settings Settings, srv *server.CalendarServer, fetcher engine.VCardFetcher) *App {
	a := &App{
		Settings:   settings,
		Server:     srv,
		Fetcher:    fetcher,
		Clock:      engine.RealClock{},
		Translator: NewTranslator(settings.Language),
		numerology: numerology.New(),
		entries:    make([]engine.ChartEntry, 0),
	}
	if srv != nil {
		srv.Charts = a.ChartFor
	}
	return a
}

// ChartFor evaluates the chart of a birth date on the owned engine.
func (a *App) ChartFor(birth time.Time) (chart.Chart, error) {
	a.numerologyMu.Lock()
	defer a.numerologyMu.Unlock()

	a.numerology.SetDate(chart.PickerDate(birth))
	return chart.Build(a.numerology)
}

// Entries returns a snapshot of the contacts charted by the last sync.
func (a *App) Entries() []engine.ChartEntry {
	a.entriesMu.RLock()
	defer a.entriesMu.RUnlock()

	out := make([]engine.ChartEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Run starts the server and the sync worker and blocks until ctx is done
// or the server fails to start.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, config.ChannelBufferSize)
	go func() {
		serverErr <- a.Server.Start(ctx)
	}()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		a.backgroundWorker(ctx)
	}()

	err := <-serverErr
	cancel()
	<-workerDone
	return err
}

// Refresh runs one sync immediately.
func (a *App) Refresh(ctx context.Context) error {
	return a.performSync(ctx, true)
}

// backgroundWorker syncs once, then on every tick of the refresh interval.
func (a *App) backgroundWorker(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	if a.Settings.SourceMode == config.SourceModeNone {
		log.Info(config.MsgSyncSkipped)
		a.Server.Update([]byte(config.StubVCalendar))
		return
	}

	_ = a.performSync(ctx, false)

	interval := a.refreshInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			_ = a.performSync(ctx, false)
		}
	}
}

func (a *App) refreshInterval() time.Duration {
	minutes := a.Settings.RefreshMin
	if minutes <= 0 {
		minutes = config.DefaultRefreshMin
	}
	return time.Duration(minutes) * time.Minute
}

// performSync runs the pipeline and publishes its output.
func (a *App) performSync(ctx context.Context, manual bool) error {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyManual, manual)

	gen := &engine.Generator{
		Clock:             a.Clock,
		Fetcher:           a.Fetcher,
		FormatSummary:     a.Translator.Summary,
		FormatDescription: a.Translator.Description,
	}

	icsData, entries, countToday, err := gen.RunSync(ctx, a.loadSyncConfig())
	if err != nil {
		slog.Error(config.MsgSyncFailed,
			config.LogKeyComponent, config.CompApp,
			config.LogKeyError, err)
		return err
	}

	a.entriesMu.Lock()
	a.entries = entries
	a.entriesMu.Unlock()

	a.Server.Update(icsData)

	slog.Info(config.MsgSyncSuccess,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyToday, countToday)
	return nil
}

// loadSyncConfig assembles the engine configuration from settings and the OS keyring.
func (a *App) loadSyncConfig() engine.SyncConfig {
	cfg := engine.SyncConfig{
		Mode:            a.Settings.SourceMode,
		LocalPath:       a.Settings.LocalPath,
		WebURL:          a.Settings.CardDAVURL,
		WebUser:         a.Settings.Username,
		ReminderTrigger: a.Settings.ReminderTrigger(),
		MaxBytes:        a.Settings.MaxSourceBytes,
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompApp)
		}
	}

	return cfg
}
