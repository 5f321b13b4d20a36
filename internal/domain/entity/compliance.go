package entity

import (
	"sort"
	"time"
)

// ViolationType is a closed enumeration of compliance rule failures.
type ViolationType string

const (
	ViolationMinApprovals        ViolationType = "MIN_APPROVALS"
	ViolationOutstandingChanges  ViolationType = "OUTSTANDING_CHANGES_REQUESTED"
	ViolationChecksFailed        ViolationType = "CHECKS_FAILED"
	ViolationNoIndependentReview ViolationType = "NO_INDEPENDENT_REVIEW"
)

// violationOrder fixes the order violations appear in output records,
// independent of evaluation order.
var violationOrder = map[ViolationType]int{ //nolint:gochecknoglobals
	ViolationMinApprovals:        0,
	ViolationOutstandingChanges:  1,
	ViolationChecksFailed:        2,
	ViolationNoIndependentReview: 3,
}

func SortViolations(vs []ViolationType) {
	sort.Slice(vs, func(i, j int) bool {
		return violationOrder[vs[i]] < violationOrder[vs[j]]
	})
}

const (
	StatusCompliant    = "compliant"
	StatusNonCompliant = "non_compliant"
	StatusPending      = "pending"
)

// ComplianceRecord is the per-PR verdict. Its field set is column-stable:
// loaders may rely on names and types not changing between runs.
type ComplianceRecord struct {
	PullRequestID          string          `db:"pull_request_id" json:"pull_request_id"`
	Repository             string          `db:"repository" json:"repository"`
	ComplianceStatus       string          `db:"compliance_status" json:"compliance_status"`
	Violations             []ViolationType `db:"-" json:"violations"`
	EffectiveApprovalCount int             `db:"effective_approval_count" json:"effective_approval_count"`
	RequiredApprovals      int             `db:"required_approvals" json:"required_approvals"`
	ChecksPassed           bool            `db:"checks_passed" json:"checks_passed"`
	PRCreatedAt            time.Time       `db:"pr_created_at" json:"pr_created_at"`
}

func (r ComplianceRecord) HasViolation(v ViolationType) bool {
	for _, got := range r.Violations {
		if got == v {
			return true
		}
	}
	return false
}
