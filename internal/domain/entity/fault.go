package entity

const (
	FaultSchema      = "schema"
	FaultReferential = "referential"
)

const (
	KindPullRequest = "pull_request"
	KindReview      = "review"
	KindCommit      = "commit"
	KindCheckRun    = "check_run"
)

// Fault records a raw entity that was excluded during normalization.
// Faults ride alongside normal output so operators can audit coverage;
// they are never a reason to abort a run.
type Fault struct {
	Kind       string `db:"kind" json:"kind"`
	EntityKind string `db:"entity_kind" json:"entity_kind"`
	EntityID   string `db:"entity_id" json:"entity_id"`
	Reason     string `db:"reason" json:"reason"`
}
