package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/baiirun/simplrtask/internal/config"
	"github.com/baiirun/simplrtask/internal/db"
	"github.com/baiirun/simplrtask/internal/logging"
	"github.com/baiirun/simplrtask/internal/storage"
	"github.com/baiirun/simplrtask/internal/store"
)

var (
	flagConfig string
	flagDB     string
)

var rootCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Simple task lists grouped by project",
	Long: `A CLI for tracking tasks across projects. Every change is recorded in the
task's history and the project's activity log. Run 'tasks popout' for a live
view that follows changes made from other terminals.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and task database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if err := config.WriteDefault(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", path)
		}

		a, err := openApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		p, _ := a.store.ActiveProject()
		fmt.Fprintf(cmd.OutOrStdout(), "Task database ready at %s (active project: %s)\n", a.cfg.DataPath, p.Name)
		return nil
	},
}

// app bundles everything a command needs.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *db.DB
	adapter *storage.Adapter
	store   *store.Store
}

// openApp resolves config, builds the logger and loads the document. Logs go
// to console when it is non-nil.
func openApp(console io.Writer) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.DataPath = flagDB
	}

	logger, err := logging.New(cfg.Log, console)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	if err := database.Init(); err != nil {
		database.Close()
		return nil, err
	}

	adapter := storage.NewAdapter(database, logger)
	return &app{
		cfg:     cfg,
		log:     logger,
		db:      database,
		adapter: adapter,
		store:   store.New(adapter, store.WithLogger(logger)),
	}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
	_ = a.db.Close()
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.simplr/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "task database path (overrides config)")

	rootCmd.AddCommand(initCmd)
}

func main() {
	// A missing .env is fine; anything else is worth knowing about
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: failed to load .env:", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
