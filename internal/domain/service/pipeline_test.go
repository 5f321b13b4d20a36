package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pr_compliance_service/internal/domain/entity"
	"pr_compliance_service/internal/domain/raw"
)

func pipelineBatch() raw.Batch {
	batch := raw.Batch{ExtractedAt: ptr(baseTime)}

	pr1 := rawPR("pr-1")
	pr2 := rawPR("pr-2")
	pr2.Repository = ptr("infra")
	batch.PullRequests = []raw.PullRequest{pr1, pr2}

	batch.Reviews = []raw.Review{
		rawReview("r1", "pr-1", "bob"),
		// pr-2 has no reviews at all.
	}
	batch.CheckRuns = []raw.CheckRun{{
		ID:            ptr("c1"),
		PullRequestID: ptr("pr-1"),
		Name:          ptr("ci"),
		Status:        ptr(entity.CheckStatusCompleted),
		Conclusion:    ptr(entity.CheckConclusionSuccess),
		CompletedAt:   ptr(baseTime.Add(time.Hour)),
	}}

	return batch
}

func TestPipelineRunEndToEnd(t *testing.T) {
	p := NewPipeline()

	result, err := p.Run(context.Background(), pipelineBatch(), testRules())
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID.String())
	require.Len(t, result.Records, 2)
	require.Empty(t, result.Faults)

	require.Equal(t, "pr-1", result.Records[0].PullRequestID)
	require.Equal(t, entity.StatusCompliant, result.Records[0].ComplianceStatus)
	require.Equal(t, entity.StatusNonCompliant, result.Records[1].ComplianceStatus)
	require.True(t, result.Records[1].HasViolation(entity.ViolationNoIndependentReview))

	require.Len(t, result.Summaries, 2)
	require.Equal(t, "core", result.Summaries[0].Repository)
	require.Equal(t, "infra", result.Summaries[1].Repository)
}

func TestPipelineRunIsIdempotent(t *testing.T) {
	p := NewPipeline()

	first, err := p.Run(context.Background(), pipelineBatch(), testRules())
	require.NoError(t, err)
	second, err := p.Run(context.Background(), pipelineBatch(), testRules())
	require.NoError(t, err)

	// Run identity differs; the produced rows do not.
	require.NotEqual(t, first.RunID, second.RunID)
	require.Equal(t, first.Records, second.Records)
	require.Equal(t, first.Summaries, second.Summaries)
	require.Equal(t, first.Faults, second.Faults)
}

func TestPipelineRejectsInvalidRulesBeforeNormalizing(t *testing.T) {
	p := NewPipeline()

	rules := testRules()
	rules.Workers = 0

	_, err := p.Run(context.Background(), pipelineBatch(), rules)
	require.Error(t, err)
}

func TestPipelineSurfacesFaults(t *testing.T) {
	p := NewPipeline()

	batch := pipelineBatch()
	batch.Reviews = append(batch.Reviews, rawReview("r9", "pr-ghost", "bob"))

	result, err := p.Run(context.Background(), batch, testRules())
	require.NoError(t, err)
	require.Len(t, result.Faults, 1)
	require.Equal(t, "dangling_reference", result.Faults[0].Reason)
}
