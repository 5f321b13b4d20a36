package entity

import "time"

type Commit struct {
	SHA           string    `db:"sha" json:"sha"`
	PullRequestID string    `db:"pull_request_id" json:"pull_request_id"`
	Author        string    `db:"author" json:"author"`
	CommittedAt   time.Time `db:"committed_at" json:"committed_at"`
}
