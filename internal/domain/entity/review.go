package entity

import "time"

const (
	ReviewApproved         = "approved"
	ReviewChangesRequested = "changes_requested"
	ReviewCommented        = "commented"
)

type Review struct {
	ID            string    `db:"id" json:"id"`
	PullRequestID string    `db:"pull_request_id" json:"pull_request_id"`
	Reviewer      string    `db:"reviewer" json:"reviewer"`
	State         string    `db:"state" json:"state"`
	SubmittedAt   time.Time `db:"submitted_at" json:"submitted_at"`
}

func ValidReviewState(s string) bool {
	switch s {
	case ReviewApproved, ReviewChangesRequested, ReviewCommented:
		return true
	}
	return false
}

// Supersedes reports whether r is the more recent review of the two:
// later submitted_at wins, ties go to the greater review id.
func (r Review) Supersedes(other Review) bool {
	if !r.SubmittedAt.Equal(other.SubmittedAt) {
		return r.SubmittedAt.After(other.SubmittedAt)
	}
	return r.ID > other.ID
}
