package server

import (
	"time"

	"pr_compliance_service/internal/domain/entity"
)

type runEnqueuedResponse struct {
	TaskID string `json:"task_id"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type windowResponse struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type summaryResponse struct {
	Repository      string         `json:"repository"`
	Window          windowResponse `json:"window"`
	TotalPRs        int            `json:"total_prs"`
	CompliantPRs    int            `json:"compliant_prs"`
	ApprovalRate    *float64       `json:"approval_rate"`
	ViolationCounts map[string]int `json:"violation_counts_by_type"`
}

func newSummariesResponse(summaries []entity.RepositorySummary) []summaryResponse {
	out := make([]summaryResponse, len(summaries))
	for i, summary := range summaries {
		counts := make(map[string]int, len(summary.ViolationCounts))
		for violation, count := range summary.ViolationCounts {
			counts[string(violation)] = count
		}
		out[i] = summaryResponse{
			Repository:      summary.Repository,
			Window:          windowResponse{From: summary.Window.From, To: summary.Window.To},
			TotalPRs:        summary.TotalPRs,
			CompliantPRs:    summary.CompliantPRs,
			ApprovalRate:    summary.ApprovalRate,
			ViolationCounts: counts,
		}
	}
	return out
}
