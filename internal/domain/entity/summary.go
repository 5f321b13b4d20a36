package entity

import (
	"fmt"
	"time"
)

// Window is the half-open time range [From, To) repository aggregation
// is computed over.
type Window struct {
	From time.Time `db:"window_from" json:"from"`
	To   time.Time `db:"window_to" json:"to"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

func (w Window) Validate() error {
	if w.From.IsZero() || w.To.IsZero() {
		return fmt.Errorf("window bounds must be set")
	}
	if !w.From.Before(w.To) {
		return fmt.Errorf("window from %s is not before to %s", w.From, w.To)
	}
	return nil
}

// RepositorySummary is the per-repository rollup of compliance records.
// ApprovalRate is nil when no PRs fall inside the window.
type RepositorySummary struct {
	Repository      string                `json:"repository"`
	Window          Window                `json:"window"`
	TotalPRs        int                   `json:"total_prs"`
	CompliantPRs    int                   `json:"compliant_prs"`
	ApprovalRate    *float64              `json:"approval_rate"`
	ViolationCounts map[ViolationType]int `json:"violation_counts_by_type"`
}
