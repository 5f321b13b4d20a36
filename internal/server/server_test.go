package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"pr_compliance_service/internal/domain"
	"pr_compliance_service/internal/domain/entity"
	"pr_compliance_service/pkg/errcodes"
)

type stubEnqueuer struct {
	taskID string
	err    error
}

func (s stubEnqueuer) EnqueueAuditRun(context.Context) (string, error) {
	return s.taskID, s.err
}

type stubSummaries struct {
	summaries []entity.RepositorySummary
	err       error
}

func (s stubSummaries) LatestSummaries(context.Context) ([]entity.RepositorySummary, error) {
	return s.summaries, s.err
}

func newTestRouter(runs RunEnqueuer, summaries SummarySource) http.Handler {
	router := chi.NewRouter()
	NewServer(runs, summaries).RegisterRoutes(router)
	return router
}

func TestEnqueueRun(t *testing.T) {
	router := newTestRouter(stubEnqueuer{taskID: "task-1"}, stubSummaries{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/runs", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.JSONEq(t, `{"task_id":"task-1"}`, rec.Body.String())
}

func TestLatestSummaries(t *testing.T) {
	rate := 0.5
	summaries := []entity.RepositorySummary{{
		Repository: "core",
		Window: entity.Window{
			From: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		TotalPRs:     2,
		CompliantPRs: 1,
		ApprovalRate: &rate,
		ViolationCounts: map[entity.ViolationType]int{
			entity.ViolationMinApprovals: 1,
		},
	}}
	router := newTestRouter(stubEnqueuer{}, stubSummaries{summaries: summaries})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summaries/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{
		"repository": "core",
		"window": {"from": "2026-07-01T00:00:00Z", "to": "2026-08-01T00:00:00Z"},
		"total_prs": 2,
		"compliant_prs": 1,
		"approval_rate": 0.5,
		"violation_counts_by_type": {"MIN_APPROVALS": 1}
	}]`, rec.Body.String())
}

func TestLatestSummariesNotFound(t *testing.T) {
	router := newTestRouter(stubEnqueuer{},
		stubSummaries{err: domain.NewError(errcodes.NotFound, "no stored runs")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summaries/latest", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(stubEnqueuer{}, stubSummaries{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}
