package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-ledger/config"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Dur("interval", cfg.Reconciler.Interval).
		Dur("age", cfg.Reconciler.Age).
		Int("limit", cfg.Reconciler.Limit).
		Msg("Starting reconciliation sweeper")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	outboxRepo := pgStorage.NewOutboxRepo(pool)
	reconciler := service.NewReconcileService(outboxRepo, cfg.Reconciler.Age, cfg.Reconciler.Limit, log)

	ticker := time.NewTicker(cfg.Reconciler.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup, then on every tick.
	sweep(ctx, reconciler, log)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Reconciliation sweeper exited")
			return
		case <-ticker.C:
			sweep(ctx, reconciler, log)
		}
	}
}

func sweep(ctx context.Context, reconciler *service.ReconcileServiceImpl, log zerolog.Logger) {
	entries, err := reconciler.SweepOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reconciliation sweep failed")
		return
	}
	log.Debug().Int("unresolved", len(entries)).Msg("reconciliation sweep finished")
}
