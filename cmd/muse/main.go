package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/musekeep/muse/internal/config"
	"github.com/musekeep/muse/internal/db"
	"github.com/musekeep/muse/internal/logging"
	"github.com/musekeep/muse/internal/reminder"
	"github.com/musekeep/muse/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("muse %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Path:     cfg.Logger.Path,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if firstRun, _ := store.GetSettingBool("first_run", true); firstRun {
		logger.Info("first run, database seeded", zap.String("path", cfg.DBPath))
		store.SetSetting("first_run", "false")
	}

	worker := reminder.New(store, logger, cfg.RemindInterval)
	worker.Start(context.Background())
	defer worker.Stop()

	janitor, err := reminder.NewJanitor(store, logger, cfg.PurgeSchedule, cfg.PurgeAfterDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scheduling bin purge: %v\n", err)
		os.Exit(1)
	}
	janitor.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		janitor.Stop(ctx)
	}()

	// Create and run the application
	app := ui.NewApp(store, worker.Events())
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("application exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
