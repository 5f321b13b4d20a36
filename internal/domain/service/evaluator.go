package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pr_compliance_service/internal/domain/entity"
)

// Evaluator applies the compliance rule set to normalized pull requests.
// Evaluation is stateless: each verdict depends only on the PR's own
// entities and the shared read-only rules.
type Evaluator struct{}

func NewEvaluator() Evaluator {
	return Evaluator{}
}

// Evaluate computes the compliance verdict for a single pull request.
// Every rule predicate runs; a PR can accumulate multiple violations.
func (Evaluator) Evaluate(
	pr entity.PullRequest,
	reviews []entity.Review,
	commits []entity.Commit,
	checks []entity.CheckRun,
	rules RuleSet,
) entity.ComplianceRecord {
	_ = commits // carried for context parity with the extractor contract; no rule reads them yet

	effective := effectiveReviews(pr, reviews)

	approvals := 0
	outstandingChanges := false
	for _, review := range effective {
		switch review.State {
		case entity.ReviewApproved:
			approvals++
		case entity.ReviewChangesRequested:
			outstandingChanges = true
		}
	}

	required := rules.RequiredApprovalsFor(pr.Repository)
	checksFailed, checksIncomplete := examineChecks(checks, rules.requiredCheckSet())

	var violations []entity.ViolationType
	if approvals < required {
		violations = append(violations, entity.ViolationMinApprovals)
	}
	if outstandingChanges && pr.State == entity.PRStateMerged {
		violations = append(violations, entity.ViolationOutstandingChanges)
	}
	if checksFailed {
		violations = append(violations, entity.ViolationChecksFailed)
	}
	if len(effective) == 0 {
		violations = append(violations, entity.ViolationNoIndependentReview)
	}
	entity.SortViolations(violations)

	status := entity.StatusCompliant
	switch {
	case len(violations) > 0:
		status = entity.StatusNonCompliant
	case checksIncomplete:
		status = entity.StatusPending
	}

	return entity.ComplianceRecord{
		PullRequestID:          pr.ID,
		Repository:             pr.Repository,
		ComplianceStatus:       status,
		Violations:             violations,
		EffectiveApprovalCount: approvals,
		RequiredApprovals:      required,
		ChecksPassed:           !checksFailed && !checksIncomplete,
		PRCreatedAt:            pr.CreatedAt,
	}
}

// EvaluateAll validates the rule set once, then evaluates every PR in the
// snapshot across a bounded worker pool. Results keep snapshot order.
func (e Evaluator) EvaluateAll(ctx context.Context, snapshot entity.Snapshot, rules RuleSet) ([]entity.ComplianceRecord, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules.Validate: %w", err)
	}

	records := make([]entity.ComplianceRecord, len(snapshot.PullRequests))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(rules.Workers)
	for i, pr := range snapshot.PullRequests {
		i, pr := i, pr
		g.Go(func() error {
			records[i] = e.Evaluate(
				pr,
				snapshot.ReviewsByPR[pr.ID],
				snapshot.CommitsByPR[pr.ID],
				snapshot.ChecksByPR[pr.ID],
				rules,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("g.Wait: %w", err)
	}

	return records, nil
}

// effectiveReviews reduces resubmissions to one review per reviewer: the
// latest submitted_at wins, ties go to the greater review id. The PR
// author's own reviews never count.
func effectiveReviews(pr entity.PullRequest, reviews []entity.Review) map[string]entity.Review {
	effective := make(map[string]entity.Review, len(reviews))
	for _, review := range reviews {
		if review.Reviewer == pr.Author {
			continue
		}
		current, ok := effective[review.Reviewer]
		if !ok || review.Supersedes(current) {
			effective[review.Reviewer] = review
		}
	}
	return effective
}

// examineChecks inspects the runs of required checks. A completed run with
// a conclusion other than success is a failure; a required check with no
// completed run, or with a run still queued or in progress, is incomplete.
func examineChecks(checks []entity.CheckRun, required map[string]struct{}) (failed, incomplete bool) {
	if len(required) == 0 {
		return false, false
	}

	completedByName := make(map[string]bool, len(required))
	for _, check := range checks {
		if _, ok := required[check.Name]; !ok {
			continue
		}
		if !check.Completed() {
			incomplete = true
			continue
		}
		completedByName[check.Name] = true
		if check.Conclusion != entity.CheckConclusionSuccess {
			failed = true
		}
	}

	for name := range required {
		if !completedByName[name] {
			incomplete = true
		}
	}

	return failed, incomplete
}
