package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hypertune/hypertune/internal/artifacts"
	"github.com/hypertune/hypertune/internal/capability"
	"github.com/hypertune/hypertune/internal/config"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/worker"
	"github.com/hypertune/hypertune/pkg/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trial loop for one worker assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		if workerID == "" {
			workerID = cfg.Worker.ID
		}
		id, err := uuid.Parse(workerID)
		if err != nil {
			return fmt.Errorf("invalid worker id %q: %w", workerID, err)
		}

		zap.S().Info("Starting worker")
		defer zap.S().Info("Worker stopped")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		dataStore := store.NewStore(db)
		defer dataStore.Close()

		var resolver worker.URIResolver
		if cfg.Artifact.Endpoint != "" {
			artifactStore, err := artifacts.NewStore(cfg)
			if err != nil {
				zap.S().Fatalw("initializing artifact store", "error", err)
			}
			resolver = artifactStore
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		w := worker.New(id, dataStore, capability.Default(), resolver).
			WithPollInterval(time.Duration(cfg.Worker.PollInterval) * time.Second).
			WithFinalizeRetries(cfg.Worker.FinalizeRetries)

		// A nil error means the budget was exhausted or the worker was asked
		// to stop; anything else is an orchestration failure.
		if err := w.Run(ctx); err != nil {
			zap.S().Errorf("worker failed: %v", err)
			os.Exit(1)
		}

		return nil
	},
}
