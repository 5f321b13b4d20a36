package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pr_compliance_service/internal/domain/entity"
)

func testWindow() entity.Window {
	return entity.Window{
		From: baseTime.AddDate(0, 0, -30),
		To:   baseTime.AddDate(0, 0, 1),
	}
}

func record(id, repo, status string, createdAt time.Time, violations ...entity.ViolationType) entity.ComplianceRecord {
	return entity.ComplianceRecord{
		PullRequestID:    id,
		Repository:       repo,
		ComplianceStatus: status,
		Violations:       violations,
		PRCreatedAt:      createdAt,
	}
}

func TestAggregateApprovalRate(t *testing.T) {
	a := NewAggregator()

	var records []entity.ComplianceRecord
	for i := 0; i < 7; i++ {
		records = append(records, record(string(rune('a'+i)), "core", entity.StatusCompliant, baseTime))
	}
	for i := 0; i < 3; i++ {
		records = append(records, record(string(rune('h'+i)), "core", entity.StatusNonCompliant, baseTime,
			entity.ViolationMinApprovals))
	}

	summaries := a.Aggregate(records, testWindow())
	require.Len(t, summaries, 1)

	summary := summaries[0]
	require.Equal(t, "core", summary.Repository)
	require.Equal(t, 10, summary.TotalPRs)
	require.Equal(t, 7, summary.CompliantPRs)
	require.NotNil(t, summary.ApprovalRate)
	require.InDelta(t, 0.7, *summary.ApprovalRate, 1e-9)
	require.Equal(t, 3, summary.ViolationCounts[entity.ViolationMinApprovals])
}

func TestAggregateEmptyWindowHasNilRate(t *testing.T) {
	a := NewAggregator()

	// Everything outside the window: the repository is still reported,
	// with zero totals and an undefined rate rather than a divide-by-zero.
	records := []entity.ComplianceRecord{
		record("pr-1", "core", entity.StatusCompliant, baseTime.AddDate(0, 0, -90)),
		record("pr-2", "core", entity.StatusNonCompliant, baseTime.AddDate(0, 0, -90),
			entity.ViolationMinApprovals),
	}

	summaries := a.Aggregate(records, testWindow())
	require.Len(t, summaries, 1)

	summary := summaries[0]
	require.Equal(t, "core", summary.Repository)
	require.Equal(t, 0, summary.TotalPRs)
	require.Equal(t, 0, summary.CompliantPRs)
	require.Nil(t, summary.ApprovalRate)
	require.Empty(t, summary.ViolationCounts)
}

func TestAggregateWindowBoundsAreHalfOpen(t *testing.T) {
	a := NewAggregator()
	window := testWindow()

	records := []entity.ComplianceRecord{
		record("at-from", "core", entity.StatusCompliant, window.From),
		record("at-to", "core", entity.StatusCompliant, window.To),
		record("before", "core", entity.StatusCompliant, window.From.Add(-time.Second)),
	}

	summaries := a.Aggregate(records, window)
	require.Len(t, summaries, 1)
	require.Equal(t, 1, summaries[0].TotalPRs)
}

func TestAggregateMultiViolationRecordCountsEachType(t *testing.T) {
	a := NewAggregator()

	records := []entity.ComplianceRecord{
		record("pr-1", "core", entity.StatusNonCompliant, baseTime,
			entity.ViolationMinApprovals, entity.ViolationChecksFailed),
	}

	summaries := a.Aggregate(records, testWindow())
	require.Len(t, summaries, 1)
	require.Equal(t, 1, summaries[0].ViolationCounts[entity.ViolationMinApprovals])
	require.Equal(t, 1, summaries[0].ViolationCounts[entity.ViolationChecksFailed])
}

func TestAggregateGroupsByRepository(t *testing.T) {
	a := NewAggregator()

	records := []entity.ComplianceRecord{
		record("pr-1", "infra", entity.StatusCompliant, baseTime),
		record("pr-2", "core", entity.StatusNonCompliant, baseTime, entity.ViolationChecksFailed),
		record("pr-3", "core", entity.StatusCompliant, baseTime),
	}

	summaries := a.Aggregate(records, testWindow())
	require.Len(t, summaries, 2)
	// Sorted by repository name.
	require.Equal(t, "core", summaries[0].Repository)
	require.Equal(t, "infra", summaries[1].Repository)
	require.Equal(t, 2, summaries[0].TotalPRs)
	require.Equal(t, 1, summaries[1].TotalPRs)
}

func TestAggregateOrderIndependence(t *testing.T) {
	a := NewAggregator()

	records := []entity.ComplianceRecord{
		record("pr-1", "core", entity.StatusCompliant, baseTime),
		record("pr-2", "core", entity.StatusNonCompliant, baseTime, entity.ViolationMinApprovals),
		record("pr-3", "infra", entity.StatusPending, baseTime),
		record("pr-4", "infra", entity.StatusCompliant, baseTime),
		record("pr-5", "tools", entity.StatusNonCompliant, baseTime,
			entity.ViolationChecksFailed, entity.ViolationNoIndependentReview),
	}

	expected := a.Aggregate(records, testWindow())

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]entity.ComplianceRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		require.Equal(t, expected, a.Aggregate(shuffled, testWindow()))
	}
}

func TestAggregateIdempotence(t *testing.T) {
	a := NewAggregator()

	records := []entity.ComplianceRecord{
		record("pr-1", "core", entity.StatusCompliant, baseTime),
		record("pr-2", "core", entity.StatusNonCompliant, baseTime, entity.ViolationMinApprovals),
	}

	require.Equal(t, a.Aggregate(records, testWindow()), a.Aggregate(records, testWindow()))
}
