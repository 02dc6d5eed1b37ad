package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/altomedia/gallery-bridge/internal/config"
	"github.com/altomedia/gallery-bridge/internal/scheduler"
	"github.com/altomedia/gallery-bridge/internal/types"
)

// App represents the main application
type App struct {
	logger    *slog.Logger
	scheduler *scheduler.Scheduler
	configs   []*types.Config
	configID  string
	configDir string
	watcher   *config.ConfigWatcher
	profiles  map[string]*Profile
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a new application instance
func New(logger *slog.Logger, configDir string, configID string) (*App, error) {
	app := &App{
		logger:    logger,
		configID:  configID,
		configDir: configDir,
		profiles:  make(map[string]*Profile),
	}

	// Load initial configurations
	if err := config.LoadConfigs(configDir); err != nil {
		return nil, fmt.Errorf("failed to load configs: %w", err)
	}

	// Get configurations based on configID
	if configID != "" {
		cfg, err := config.GetConfig(configID)
		if err != nil {
			return nil, fmt.Errorf("failed to get config %s: %w", configID, err)
		}
		app.configs = []*types.Config{cfg}
	} else {
		app.configs = config.GetEnabledConfigs()
	}

	// Initialize scheduler
	app.scheduler = scheduler.NewScheduler(logger)

	return app, nil
}

// Start starts all application services
func (a *App) Start() error {
	a.ctx, a.cancel = context.WithCancel(context.Background())

	// Start configuration watcher
	watcher, err := config.StartWatcher(a.configDir, a.logger)
	if err != nil {
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	a.watcher = watcher

	// Start scheduler
	a.scheduler.Start()

	// Start services for initial configurations
	for _, cfg := range a.configs {
		if err := a.startServices(cfg); err != nil {
			return err
		}
	}

	// Watch for configuration changes
	a.wg.Add(1)
	go a.watchConfigs()

	return nil
}

// Stop gracefully stops all application services
func (a *App) Stop() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.cancel != nil {
		a.cancel()
	}

	a.mu.Lock()
	for id, profile := range a.profiles {
		profile.Close()
		delete(a.profiles, id)
	}
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *App) startServices(cfg *types.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Tear down the previous incarnation of this profile on reload
	if existing, ok := a.profiles[cfg.Meta.ID]; ok {
		existing.Close()
		delete(a.profiles, cfg.Meta.ID)
	}

	profile, err := NewProfile(a.ctx, cfg, a.logger)
	if err != nil {
		a.logger.Error("failed to build profile",
			"error", err,
			"id", cfg.Meta.ID,
		)
		return err
	}

	if err := profile.Start(a.ctx); err != nil {
		profile.Close()
		a.logger.Error("failed to start profile services",
			"error", err,
			"id", cfg.Meta.ID,
		)
		return err
	}

	// Update scheduler with configuration
	if err := a.scheduler.UpdateJob(cfg, func() {
		profile.Maintenance(a.ctx)
	}); err != nil {
		profile.Close()
		a.logger.Error("failed to update scheduler",
			"error", err,
			"id", cfg.Meta.ID,
		)
		return err
	}

	a.profiles[cfg.Meta.ID] = profile

	a.logger.Info("started services for configuration",
		"id", cfg.Meta.ID,
		"name", cfg.Meta.Name,
		"writer", profile.Saver().WriterType(),
	)

	return nil
}

func (a *App) watchConfigs() {
	defer a.wg.Done()

	for range a.watcher.ReloadChan() {
		a.logger.Info("reloading services due to configuration change")

		// Get updated configurations
		var newConfigs []*types.Config
		if a.configID != "" {
			cfg, err := config.GetConfig(a.configID)
			if err != nil {
				a.logger.Error("failed to get updated config",
					"id", a.configID,
					"error", err,
				)
				continue
			}
			newConfigs = []*types.Config{cfg}
		} else {
			newConfigs = config.GetEnabledConfigs()
		}

		// Update services with new configurations
		current := make(map[string]bool, len(newConfigs))
		for _, cfg := range newConfigs {
			current[cfg.Meta.ID] = true
			if err := a.startServices(cfg); err != nil {
				a.logger.Error("failed to update services",
					"config_id", cfg.Meta.ID,
					"error", err,
				)
			}
		}

		// Tear down profiles whose configuration disappeared or was disabled
		a.mu.Lock()
		for id, profile := range a.profiles {
			if !current[id] {
				profile.Close()
				delete(a.profiles, id)
				a.scheduler.RemoveJob(id)
				a.logger.Info("stopped services for removed configuration", "id", id)
			}
		}
		a.mu.Unlock()
	}
}
