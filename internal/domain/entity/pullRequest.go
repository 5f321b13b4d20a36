package entity

import "time"

const (
	PRStateOpen   = "open"
	PRStateMerged = "merged"
	PRStateClosed = "closed"
)

// PullRequest is the normalized form of an extracted pull request.
// Immutable once produced by the normalizer; all timestamps are UTC.
type PullRequest struct {
	ID         string     `db:"id" json:"id"`
	Number     int        `db:"number" json:"number"`
	Repository string     `db:"repository" json:"repository"`
	Author     string     `db:"author" json:"author"`
	State      string     `db:"state" json:"state"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	MergedAt   *time.Time `db:"merged_at" json:"merged_at,omitempty"`
	BaseBranch string     `db:"base_branch" json:"base_branch"`
	HeadBranch string     `db:"head_branch" json:"head_branch"`
}

func ValidPRState(s string) bool {
	switch s {
	case PRStateOpen, PRStateMerged, PRStateClosed:
		return true
	}
	return false
}
