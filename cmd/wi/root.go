// Package wi implements the wi CLI: a thin cobra shell over
// internal/dispatch standing in for the external MCP transport during local
// use and end-to-end tests. Grounded on the teacher's cmd/root.go
// command-tree/PersistentFlags layout, with the analytics/session/sync
// layers stripped since this service has no notion of either.
package wi

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/config"
	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/eventsink"
	"github.com/hallowell/workitem/internal/store"
)

var (
	workDir string

	flagDBHost     string
	flagDBPort     int
	flagDBUser     string
	flagDBPassword string
	flagDBName     string
	flagDriver     string
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "wi",
	Short: "Structured project/task management over a local work-item forest",
	Long: `wi is a local command-line shell over the work-item service: a
soft-deletable forest of projects and tasks with fractional-index ordering,
typed dependencies, transactional mutation, and undo/redo.`,
	SilenceErrors: true,
}

// SetVersion sets the version string and enables --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command, printing errors and exiting non-zero on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workDir, "work-dir", "", "project directory containing .workitem (defaults to cwd)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "store driver: sqlite or mysql (defaults to config)")
	rootCmd.PersistentFlags().StringVar(&flagDBHost, "db-host", "", "database host (mysql)")
	rootCmd.PersistentFlags().IntVar(&flagDBPort, "db-port", 0, "database port (mysql)")
	rootCmd.PersistentFlags().StringVar(&flagDBUser, "db-user", "", "database user (mysql)")
	rootCmd.PersistentFlags().StringVar(&flagDBPassword, "db-password", "", "database password (mysql)")
	rootCmd.PersistentFlags().StringVar(&flagDBName, "db-name", "", "database name, or sqlite file path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// getBaseDir resolves the project directory: --work-dir if set, else cwd.
func getBaseDir() (string, error) {
	if workDir != "" {
		if !filepath.IsAbs(workDir) {
			cwd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Clean(filepath.Join(cwd, workDir)), nil
		}
		return filepath.Clean(workDir), nil
	}
	return os.Getwd()
}

// loadConfig resolves baseDir's configuration, overlaid with any
// --db-*/--driver/--log-level flags the caller passed explicitly.
func loadConfig() (config.Config, error) {
	baseDir, err := getBaseDir()
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(baseDir)
	if err != nil {
		return config.Config{}, err
	}
	if flagDriver != "" {
		cfg.Driver = flagDriver
	}
	if flagDBHost != "" {
		cfg.Host = flagDBHost
	}
	if flagDBPort != 0 {
		cfg.Port = flagDBPort
	}
	if flagDBUser != "" {
		cfg.User = flagDBUser
	}
	if flagDBPassword != "" {
		cfg.Password = flagDBPassword
	}
	if flagDBName != "" {
		cfg.Database = flagDBName
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, nil
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openDispatcher loads configuration, initializes structured logging at the
// configured level, opens the Store, and wires an in-process event bus into
// a Dispatcher. Callers must Close the returned Store when done.
func openDispatcher(ctx context.Context) (*dispatch.Dispatcher, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})))

	s, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	bus := eventsink.NewBus()
	return dispatch.NewWithSink(s, bus), s, nil
}
