package modules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"golang.org/x/sync/errgroup"
)

// AsynqWorker runs an asynq server under the application errgroup,
// shutting it down when the group context is cancelled.
type AsynqWorker struct{}

func (AsynqWorker) Run(
	gCtx context.Context,
	g *errgroup.Group,
	server *asynq.Server,
	mux *asynq.ServeMux,
) {
	g.Go(func() error {
		logger(gCtx).Info("asynq worker started")

		if err := server.Start(mux); err != nil {
			logger(gCtx).Error("asynq worker start error", slog.Any("error", err))
			return fmt.Errorf("server.Start: %w", err)
		}

		<-gCtx.Done()

		logger(gCtx).Info("asynq worker is shutting down")
		server.Shutdown()
		return nil
	})
}

// AsynqScheduler runs an asynq periodic scheduler the same way.
type AsynqScheduler struct{}

func (AsynqScheduler) Run(
	gCtx context.Context,
	g *errgroup.Group,
	scheduler *asynq.Scheduler,
) {
	g.Go(func() error {
		logger(gCtx).Info("asynq scheduler started")

		if err := scheduler.Start(); err != nil {
			logger(gCtx).Error("asynq scheduler start error", slog.Any("error", err))
			return fmt.Errorf("scheduler.Start: %w", err)
		}

		<-gCtx.Done()

		logger(gCtx).Info("asynq scheduler is shutting down")
		scheduler.Shutdown()
		return nil
	})
}
