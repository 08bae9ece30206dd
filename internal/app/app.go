package app

import (
	"context"
	"fmt"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/batch"
	"github.com/five82/tally/internal/config"
	"github.com/five82/tally/internal/grid"
	"github.com/five82/tally/internal/logging"
	"github.com/five82/tally/internal/prefs"
	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/syncer"
	"github.com/five82/tally/internal/ui"
)

// Options configure the tally application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tally/prefs.toml
	Server     string // overrides the configured server when set
	Role       string // overrides the configured role when set
}

// Run boots the tally TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Server != "" {
		cfg.Server = opts.Server
	}
	if opts.Role != "" {
		cfg.Role = opts.Role
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat, logFile)

	policy, err := batch.ParseResetPolicy(cfg.ResetPolicy)
	if err != nil {
		return fmt.Errorf("reset policy: %w", err)
	}

	client, err := api.NewClient(cfg.Server,
		api.WithSession(cfg.SessionCookie),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logging.Component("api")),
	)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	store := &state.Store{}
	saver := batch.NewSaver(client, batch.Options{
		Policy:      policy,
		MaxInFlight: cfg.MaxInFlight,
		Logger:      logging.Component("batch"),
	})
	engine := syncer.New(client, store, syncer.Options{
		Role:    grid.ParseRole(cfg.Role),
		Timeout: cfg.RequestTimeout,
		Saver:   saver,
		Logger:  logging.Component("syncer"),
	})

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs failed", "error", err)
	}

	logger.Info("tally starting",
		"server", client.BaseURL(),
		"role", engine.Role(),
		"reset_policy", policy.String(),
		"refresh", cfg.RefreshEvery,
	)

	uiOpts := ui.Options{
		Context:   ctx,
		Syncer:    engine,
		Poller:    NewPoller(store, cfg.RefreshEvery, logging.Component("poller")),
		Server:    client.BaseURL(),
		LogPath:   cfg.LogPath(),
		ThemeName: userPrefs.Theme,
		LastTab:   userPrefs.LastTab,
		PrefsPath: opts.PrefsPath,
		Logger:    logging.Component("ui"),
	}
	err = ui.Run(uiOpts)
	logger.Info("tally stopped", "error", err)
	return err
}
