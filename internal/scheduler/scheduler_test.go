package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pr_compliance_service/internal/config"
	"pr_compliance_service/internal/domain/entity"
	"pr_compliance_service/internal/domain/raw"
	"pr_compliance_service/internal/domain/service"
)

type stubExtractor struct {
	batch raw.Batch
	err   error
}

func (s stubExtractor) ExtractBatch(context.Context) (raw.Batch, error) {
	return s.batch, s.err
}

type captureStore struct {
	stored []service.RunResult
	err    error
}

func (c *captureStore) StoreRun(_ context.Context, result service.RunResult) error {
	if c.err != nil {
		return c.err
	}
	c.stored = append(c.stored, result)
	return nil
}

func ptr[T any](v T) *T { return &v }

func testBatch() raw.Batch {
	// The worker computes its window from the wall clock, so the batch
	// has to live relative to it too.
	now := time.Now().UTC()
	return raw.Batch{
		ExtractedAt: ptr(now),
		PullRequests: []raw.PullRequest{{
			ID:         ptr("pr-1"),
			Number:     ptr(1),
			Repository: ptr("core"),
			Author:     ptr("alice"),
			State:      ptr(entity.PRStateOpen),
			CreatedAt:  ptr(now.Add(-time.Hour)),
			BaseBranch: ptr("main"),
			HeadBranch: ptr("feature"),
		}},
		Reviews: []raw.Review{{
			ID:            ptr("r-1"),
			PullRequestID: ptr("pr-1"),
			Reviewer:      ptr("bob"),
			State:         ptr(entity.ReviewApproved),
			SubmittedAt:   ptr(now.Add(-30 * time.Minute)),
		}},
	}
}

func testRules() config.Rules {
	return config.Rules{
		RequiredApprovals: 1,
		WindowDays:        30,
		Workers:           2,
	}
}

func TestWorkerProcessTaskStoresRun(t *testing.T) {
	store := &captureStore{}
	worker := NewWorker(stubExtractor{batch: testBatch()}, service.NewPipeline(), store, testRules())

	err := worker.ProcessTask(context.Background(), NewAuditTask())
	require.NoError(t, err)
	require.Len(t, store.stored, 1)

	result := store.stored[0]
	require.Len(t, result.Records, 1)
	require.Equal(t, entity.StatusCompliant, result.Records[0].ComplianceStatus)
	require.Len(t, result.Summaries, 1)
}

func TestWorkerProcessTaskPropagatesExtractionError(t *testing.T) {
	store := &captureStore{}
	worker := NewWorker(stubExtractor{err: errors.New("boom")},
		service.NewPipeline(), store, testRules())

	err := worker.ProcessTask(context.Background(), NewAuditTask())
	require.Error(t, err)
	require.Empty(t, store.stored)
}

func TestWorkerProcessTaskPropagatesStoreError(t *testing.T) {
	store := &captureStore{err: errors.New("db down")}
	worker := NewWorker(stubExtractor{batch: testBatch()}, service.NewPipeline(), store, testRules())

	err := worker.ProcessTask(context.Background(), NewAuditTask())
	require.Error(t, err)
}
