package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"budget/internal/alert"
	"budget/internal/clock"
	"budget/internal/commands"
	"budget/internal/config"
	apphttp "budget/internal/http"
	"budget/internal/log"
	"budget/internal/state"
	"budget/internal/storage"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger := log.New(log.DefaultConfig())
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open snapshot store",
			log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sysClock := clock.System{}

	// Load the persisted snapshot. Absence and corruption both come back
	// as nil and mean empty defaults.
	snap, err := repo.LoadSnapshot(context.Background())
	if err != nil {
		logger.Warn("Could not read snapshot, starting from defaults", log.FieldError, err)
	}
	var store *state.Store
	if snap != nil {
		store = state.NewFromSnapshot(sysClock, *snap)
	} else {
		store = state.New(sysClock)
	}

	alerts := alert.New(cfg.WarningAutoDismiss)
	app := commands.New(commands.Deps{
		Store:            store,
		Persister:        repo,
		Alerts:           alerts,
		Clock:            sysClock,
		Logger:           logger,
		SimulatedLatency: cfg.SimulatedLatency,
	})

	// Roll the period forward if the snapshot predates this month, and
	// persist the roll right away.
	startup := app.Refresh(context.Background())
	logger.Info("State restored",
		"expenses", len(startup.VisibleExpenses),
		log.FieldOperation, log.OpStartup)

	srv := apphttp.NewServer(":"+cfg.Port, app, sysClock)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Starting budget server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Period watcher: keeps the stored month current while the process
	// stays up across a month boundary. Display-only clients poll
	// /api/clock; this ticker is the state-side counterpart.
	group.Go(func() error {
		ticker := time.NewTicker(cfg.PeriodCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				app.Refresh(context.Background())
			}
		}
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
