package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/altomedia/gallery-bridge/internal/app"
	"github.com/altomedia/gallery-bridge/internal/config"
	"github.com/altomedia/gallery-bridge/internal/logger"
	"github.com/altomedia/gallery-bridge/internal/types"
)

var (
	cfgDir    string
	logLevel  string
	logFormat string
	configID  string
	log       *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gallery-bridge",
	Short: "Media gallery save bridge",
	Long: `A service that saves images and files into a media gallery backed by
the local filesystem, Google Drive or S3, sorting them into folders by
media type and importing new files from watched directories.`,
	RunE: run,
}

func init() {
	// Setup default logger until we load config
	log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	cobra.OnInitialize(initConfig)

	// Command line flags
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", "", "config directory (default is ./config)")
	rootCmd.PersistentFlags().StringVar(&configID, "config-id", "", "specific config ID to use")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging format (text, json, dev)")

	// Bind flags to viper
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(createSaveCommand())
	rootCmd.AddCommand(createCacheCommand())
	rootCmd.AddCommand(createJournalCommand())
	rootCmd.AddCommand(createOAuth2Command())
}

func configDir() string {
	if cfgDir != "" {
		return cfgDir
	}
	return "./config"
}

func initConfig() {
	config.InitLogger(log)

	if err := config.LoadConfigs(configDir()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configs: %v\n", err)
		os.Exit(1)
	}

	// List available configurations
	configs := config.ListConfigs()
	if len(configs) == 0 {
		fmt.Fprintf(os.Stderr, "No configurations found in %s\n", configDir())
		os.Exit(1)
	}

	applyOverrides(configs)

	log.Info("loaded configurations",
		"count", len(configs),
		"enabled", len(config.GetEnabledConfigs()),
	)
}

// applyOverrides pushes command line logging overrides into every
// loaded configuration
func applyOverrides(configs []*types.Config) {
	level := viper.GetString("logging.level")
	format := viper.GetString("logging.format")

	for _, cfg := range configs {
		if level != "" {
			cfg.Logging.Level = level
		}
		if format != "" {
			cfg.Logging.Format = format
		}
	}
}

// selectConfig resolves the configuration a one-shot command operates
// on: the --config-id flag when given, otherwise the single enabled
// configuration.
func selectConfig() (*types.Config, error) {
	if configID != "" {
		return config.GetConfig(configID)
	}

	enabled := config.GetEnabledConfigs()
	switch len(enabled) {
	case 0:
		return nil, fmt.Errorf("no enabled configurations, pass --config-id")
	case 1:
		return enabled[0], nil
	default:
		return nil, fmt.Errorf("%d enabled configurations, pass --config-id to pick one", len(enabled))
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Use the logging settings of the selected or first enabled config
	if cfg, err := selectConfig(); err == nil {
		log = logger.Setup(cfg)
		slog.SetDefault(log)
	}

	// Create and start application
	application, err := app.New(log, configDir(), configID)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Stop()

	// Start the application
	if err := application.Start(); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down application")
	return nil
}
