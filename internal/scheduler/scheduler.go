// Package scheduler triggers audit runs through asynq: a periodic task
// for scheduled runs and a client for runs requested over the ops API.
// The worker is the only place extract, transform and load meet.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"pr_compliance_service/internal/config"
	"pr_compliance_service/internal/domain/raw"
	"pr_compliance_service/internal/domain/service"
	"pr_compliance_service/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const TaskAuditRun = "audit:run"

func NewAuditTask() *asynq.Task {
	return asynq.NewTask(TaskAuditRun, nil, asynq.MaxRetry(3))
}

type BatchExtractor interface {
	ExtractBatch(ctx context.Context) (raw.Batch, error)
}

type RunStore interface {
	StoreRun(ctx context.Context, result service.RunResult) error
}

// Worker executes one full audit run per task.
type Worker struct {
	extractor BatchExtractor
	pipeline  *service.Pipeline
	store     RunStore
	rules     config.Rules
}

func NewWorker(extractor BatchExtractor, pipeline *service.Pipeline, store RunStore, rules config.Rules) *Worker {
	return &Worker{
		extractor: extractor,
		pipeline:  pipeline,
		store:     store,
		rules:     rules,
	}
}

func (w *Worker) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	batch, err := w.extractor.ExtractBatch(ctx)
	if err != nil {
		return fmt.Errorf("extractor.ExtractBatch: %w", err)
	}

	// The rule set lives for exactly one run.
	result, err := w.pipeline.Run(ctx, batch, w.rules.RuleSet(time.Now()))
	if err != nil {
		return fmt.Errorf("pipeline.Run: %w", err)
	}

	if err := w.store.StoreRun(ctx, result); err != nil {
		return fmt.Errorf("store.StoreRun: %w", err)
	}

	logger(ctx).Info("audit run stored", slog.String("run_id", result.RunID.String()))
	return nil
}

// Enqueuer lets the ops API request an out-of-schedule run.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueAuditRun(ctx context.Context) (string, error) {
	info, err := e.client.EnqueueContext(ctx, NewAuditTask())
	if err != nil {
		return "", fmt.Errorf("client.EnqueueContext: %w", err)
	}
	return info.ID, nil
}
