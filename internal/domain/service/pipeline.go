package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pr_compliance_service/internal/domain/entity"
	"pr_compliance_service/internal/domain/raw"
	"pr_compliance_service/internal/domain/value"
)

// RunResult is everything one pipeline invocation produced. Records and
// summaries are column-stable rows for the loader; faults ride alongside
// so degraded coverage is visible, never silent.
type RunResult struct {
	RunID     value.RunID
	StartedAt time.Time

	Records   []entity.ComplianceRecord
	Summaries []entity.RepositorySummary
	Faults    []entity.Fault
}

// Pipeline runs normalize → evaluate → aggregate over one snapshot.
// It holds no state between runs: the rule set is created per run and
// discarded with it, and re-running the same batch with the same rules
// yields identical records and summaries.
type Pipeline struct {
	evaluator  Evaluator
	aggregator Aggregator
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		evaluator:  NewEvaluator(),
		aggregator: NewAggregator(),
	}
}

func (p *Pipeline) Run(ctx context.Context, batch raw.Batch, rules RuleSet) (RunResult, error) {
	// A configuration fault aborts the whole run up front.
	if err := rules.Validate(); err != nil {
		return RunResult{}, fmt.Errorf("rules.Validate: %w", err)
	}

	runID := value.NewRunID()
	startedAt := time.Now().UTC()

	snapshot, faults, err := NewNormalizer(rules.BotAccounts).Normalize(ctx, batch)
	if err != nil {
		return RunResult{}, fmt.Errorf("normalizer.Normalize: %w", err)
	}

	records, err := p.evaluator.EvaluateAll(ctx, snapshot, rules)
	if err != nil {
		return RunResult{}, fmt.Errorf("evaluator.EvaluateAll: %w", err)
	}

	summaries := p.aggregator.Aggregate(records, rules.Window)

	logger(ctx).Info("pipeline run finished",
		slog.String("run_id", runID.String()),
		slog.Int("pull_requests", len(records)),
		slog.Int("summaries", len(summaries)),
		slog.Int("faults", len(faults)))

	return RunResult{
		RunID:     runID,
		StartedAt: startedAt,
		Records:   records,
		Summaries: summaries,
		Faults:    faults,
	}, nil
}
