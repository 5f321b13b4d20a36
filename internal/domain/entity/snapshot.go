package entity

import "time"

// Snapshot is one run's normalized view of the extracted entities,
// consistent as of ExtractedAt. Slices are sorted deterministically
// (PRs by id, per-PR entities by their natural key) so that evaluating
// the same snapshot twice yields identical output.
type Snapshot struct {
	ExtractedAt time.Time

	PullRequests []PullRequest
	ReviewsByPR  map[string][]Review
	CommitsByPR  map[string][]Commit
	ChecksByPR   map[string][]CheckRun
}
