// Package raw holds the flat records delivered by the extractor, before
// any validation. Fields are pointers so the normalizer can distinguish
// an absent field from a zero value.
package raw

import "time"

// Batch is one extraction snapshot. ExtractedAt marks the instant the
// snapshot is consistent as of; a batch without it is malformed.
type Batch struct {
	ExtractedAt  *time.Time    `json:"extracted_at"`
	PullRequests []PullRequest `json:"pull_requests"`
	Reviews      []Review      `json:"reviews"`
	Commits      []Commit      `json:"commits"`
	CheckRuns    []CheckRun    `json:"check_runs"`
}

type PullRequest struct {
	ID         *string    `json:"id"`
	Number     *int       `json:"number"`
	Repository *string    `json:"repository"`
	Author     *string    `json:"author"`
	State      *string    `json:"state"`
	CreatedAt  *time.Time `json:"created_at"`
	MergedAt   *time.Time `json:"merged_at"`
	BaseBranch *string    `json:"base_branch"`
	HeadBranch *string    `json:"head_branch"`
}

type Review struct {
	ID            *string    `json:"id"`
	PullRequestID *string    `json:"pull_request_id"`
	Reviewer      *string    `json:"reviewer"`
	State         *string    `json:"state"`
	SubmittedAt   *time.Time `json:"submitted_at"`
}

type Commit struct {
	SHA           *string    `json:"sha"`
	PullRequestID *string    `json:"pull_request_id"`
	Author        *string    `json:"author"`
	CommittedAt   *time.Time `json:"committed_at"`
}

type CheckRun struct {
	ID            *string    `json:"id"`
	PullRequestID *string    `json:"pull_request_id"`
	Name          *string    `json:"name"`
	Status        *string    `json:"status"`
	Conclusion    *string    `json:"conclusion"`
	CompletedAt   *time.Time `json:"completed_at"`
}
