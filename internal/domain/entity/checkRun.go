package entity

import "time"

const (
	CheckStatusQueued     = "queued"
	CheckStatusInProgress = "in_progress"
	CheckStatusCompleted  = "completed"
)

const (
	CheckConclusionSuccess        = "success"
	CheckConclusionFailure        = "failure"
	CheckConclusionNeutral        = "neutral"
	CheckConclusionCancelled      = "cancelled"
	CheckConclusionSkipped        = "skipped"
	CheckConclusionTimedOut       = "timed_out"
	CheckConclusionActionRequired = "action_required"
	CheckConclusionStale          = "stale"
)

type CheckRun struct {
	ID            string     `db:"id" json:"id"`
	PullRequestID string     `db:"pull_request_id" json:"pull_request_id"`
	Name          string     `db:"name" json:"name"`
	Status        string     `db:"status" json:"status"`
	Conclusion    string     `db:"conclusion" json:"conclusion"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

func ValidCheckStatus(s string) bool {
	switch s {
	case CheckStatusQueued, CheckStatusInProgress, CheckStatusCompleted:
		return true
	}
	return false
}

func ValidCheckConclusion(s string) bool {
	switch s {
	case CheckConclusionSuccess, CheckConclusionFailure, CheckConclusionNeutral,
		CheckConclusionCancelled, CheckConclusionSkipped, CheckConclusionTimedOut,
		CheckConclusionActionRequired, CheckConclusionStale:
		return true
	}
	return false
}

func (c CheckRun) Completed() bool {
	return c.Status == CheckStatusCompleted
}
