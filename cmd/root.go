package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/app"
	"github.com/abhisek/eduindia/internal/config"
	"github.com/abhisek/eduindia/internal/logging"
	"github.com/abhisek/eduindia/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "eduindia",
	Short: "Localized AI tutor for adult learners",
	Long: "EduIndia explains concepts with analogies from the learner's own life and language, " +
		"checks understanding with active recall questions and plans what to study next.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal; a malformed one is not.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "eduindia.yaml", "Path to YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to the LLM event log (overrides EDUINDIA_DB; \":memory:\" for none on disk)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	addChatFlags(rootCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config. The default file is
// optional; one named explicitly must exist.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, !cmd.Flags().Changed("config"))
	if err != nil {
		return config.Config{}, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

// resolveDBPath returns the event log path using --db (highest priority),
// then the config file or EDUINDIA_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

// openApp loads configuration and builds the tutor. adjust, when non-nil,
// may change the loaded config before anything is opened.
func openApp(cmd *cobra.Command, adjust func(*config.Config) error) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		if err := adjust(&cfg); err != nil {
			return nil, err
		}
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	a, err := app.New(cmd.Context(), app.Options{Config: cfg, DBPath: dbPath, Logger: logger})
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

// withLogFormat overrides the configured log format.
func withLogFormat(format string) func(*config.Config) error {
	return func(cfg *config.Config) error {
		cfg.Logging.Format = format
		return nil
	}
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Logger.Warn("close store", zap.Error(err))
	}
	_ = a.Logger.Sync()
}
