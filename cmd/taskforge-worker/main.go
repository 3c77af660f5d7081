// The taskforge-worker binary runs the built-in stub specialists as a NATS
// worker fleet. One process serves every registered capability; production
// deployments replace the stubs with real specialists behind the same
// subjects.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tfnats "github.com/Strob0t/TaskForge/internal/adapter/nats"
	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/logger"
	"github.com/Strob0t/TaskForge/internal/port/delegate"
	"github.com/Strob0t/TaskForge/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log.With("role", "worker"))
	defer logCloser.Close()

	channel, err := tfnats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = channel.Close() }()

	pool := worker.NewPool(cfg.Foreman.MaxParallel)
	for capability, h := range worker.Roster() {
		bounded := pool.Bound(h)
		_, err := channel.Serve(capability, func(ctx context.Context, req delegate.Request) (json.RawMessage, error) {
			slog.Info("job received", "run_id", req.RunID, "node_id", req.NodeID, "capability", req.Capability)
			return bounded(ctx, req.Input)
		})
		if err != nil {
			return fmt.Errorf("serve %s: %w", capability, err)
		}
		slog.Info("capability online", "capability", capability)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	slog.Info("shutting down worker")
	return nil
}
