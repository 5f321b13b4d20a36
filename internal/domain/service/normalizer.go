package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"pr_compliance_service/internal/domain"
	"pr_compliance_service/internal/domain/entity"
	"pr_compliance_service/internal/domain/raw"
	"pr_compliance_service/pkg/errcodes"
)

// Normalizer validates raw extractor records and canonicalizes them into
// the internal data model. A record failing validation becomes a fault
// and is excluded; only a malformed batch as a whole is fatal.
type Normalizer struct {
	bots map[string]struct{}
}

func NewNormalizer(botAccounts []string) *Normalizer {
	bots := make(map[string]struct{}, len(botAccounts))
	for _, b := range botAccounts {
		bots[b] = struct{}{}
	}
	return &Normalizer{bots: bots}
}

func (n *Normalizer) Normalize(ctx context.Context, batch raw.Batch) (entity.Snapshot, []entity.Fault, error) {
	if batch.ExtractedAt == nil {
		return entity.Snapshot{}, nil, domain.NewError(errcodes.MalformedBatch,
			"batch has no extraction timestamp")
	}

	snapshot := entity.Snapshot{
		ExtractedAt: batch.ExtractedAt.UTC(),
		ReviewsByPR: make(map[string][]entity.Review),
		CommitsByPR: make(map[string][]entity.Commit),
		ChecksByPR:  make(map[string][]entity.CheckRun),
	}
	var faults []entity.Fault

	known := make(map[string]struct{}, len(batch.PullRequests))
	for _, rawPR := range batch.PullRequests {
		pr, reason := normalizePR(rawPR)
		if reason != "" {
			faults = append(faults, fault(entity.FaultSchema, entity.KindPullRequest, strOrEmpty(rawPR.ID), reason))
			continue
		}
		if _, dup := known[pr.ID]; dup {
			faults = append(faults, fault(entity.FaultSchema, entity.KindPullRequest, pr.ID, "duplicate id"))
			continue
		}
		known[pr.ID] = struct{}{}
		snapshot.PullRequests = append(snapshot.PullRequests, pr)
	}

	for _, rawReview := range batch.Reviews {
		review, reason := normalizeReview(rawReview)
		if reason != "" {
			faults = append(faults, fault(entity.FaultSchema, entity.KindReview, strOrEmpty(rawReview.ID), reason))
			continue
		}
		if _, ok := known[review.PullRequestID]; !ok {
			faults = append(faults, fault(entity.FaultReferential, entity.KindReview, review.ID, "dangling_reference"))
			continue
		}
		if _, bot := n.bots[review.Reviewer]; bot {
			// Bot accounts never count as reviewers.
			continue
		}
		snapshot.ReviewsByPR[review.PullRequestID] = append(snapshot.ReviewsByPR[review.PullRequestID], review)
	}

	for _, rawCommit := range batch.Commits {
		commit, reason := normalizeCommit(rawCommit)
		if reason != "" {
			faults = append(faults, fault(entity.FaultSchema, entity.KindCommit, strOrEmpty(rawCommit.SHA), reason))
			continue
		}
		if _, ok := known[commit.PullRequestID]; !ok {
			faults = append(faults, fault(entity.FaultReferential, entity.KindCommit, commit.SHA, "dangling_reference"))
			continue
		}
		snapshot.CommitsByPR[commit.PullRequestID] = append(snapshot.CommitsByPR[commit.PullRequestID], commit)
	}

	for _, rawCheck := range batch.CheckRuns {
		check, reason := normalizeCheckRun(rawCheck)
		if reason != "" {
			faults = append(faults, fault(entity.FaultSchema, entity.KindCheckRun, strOrEmpty(rawCheck.ID), reason))
			continue
		}
		if _, ok := known[check.PullRequestID]; !ok {
			faults = append(faults, fault(entity.FaultReferential, entity.KindCheckRun, check.ID, "dangling_reference"))
			continue
		}
		snapshot.ChecksByPR[check.PullRequestID] = append(snapshot.ChecksByPR[check.PullRequestID], check)
	}

	sortSnapshot(&snapshot)

	if len(faults) > 0 {
		logger(ctx).Warn("normalization excluded records",
			slog.Int("faults", len(faults)),
			slog.Int("pull_requests", len(snapshot.PullRequests)))
	}

	return snapshot, faults, nil
}

func normalizePR(r raw.PullRequest) (entity.PullRequest, string) {
	switch {
	case r.ID == nil || *r.ID == "":
		return entity.PullRequest{}, "missing id"
	case r.Number == nil:
		return entity.PullRequest{}, "missing number"
	case r.Repository == nil || *r.Repository == "":
		return entity.PullRequest{}, "missing repository"
	case r.Author == nil || *r.Author == "":
		return entity.PullRequest{}, "missing author"
	case r.State == nil:
		return entity.PullRequest{}, "missing state"
	case !entity.ValidPRState(*r.State):
		return entity.PullRequest{}, fmt.Sprintf("invalid state %q", *r.State)
	case r.CreatedAt == nil:
		return entity.PullRequest{}, "missing created_at"
	case *r.State == entity.PRStateMerged && r.MergedAt == nil:
		return entity.PullRequest{}, "merged pull request has no merged_at"
	case r.BaseBranch == nil || *r.BaseBranch == "":
		return entity.PullRequest{}, "missing base branch"
	case r.HeadBranch == nil || *r.HeadBranch == "":
		return entity.PullRequest{}, "missing head branch"
	}

	pr := entity.PullRequest{
		ID:         *r.ID,
		Number:     *r.Number,
		Repository: *r.Repository,
		Author:     *r.Author,
		State:      *r.State,
		CreatedAt:  r.CreatedAt.UTC(),
		BaseBranch: *r.BaseBranch,
		HeadBranch: *r.HeadBranch,
	}
	if r.MergedAt != nil {
		mergedAt := r.MergedAt.UTC()
		pr.MergedAt = &mergedAt
	}
	return pr, ""
}

func normalizeReview(r raw.Review) (entity.Review, string) {
	switch {
	case r.ID == nil || *r.ID == "":
		return entity.Review{}, "missing id"
	case r.PullRequestID == nil || *r.PullRequestID == "":
		return entity.Review{}, "missing pull_request_id"
	case r.Reviewer == nil || *r.Reviewer == "":
		return entity.Review{}, "missing reviewer"
	case r.State == nil:
		return entity.Review{}, "missing state"
	case !entity.ValidReviewState(*r.State):
		return entity.Review{}, fmt.Sprintf("invalid state %q", *r.State)
	case r.SubmittedAt == nil:
		return entity.Review{}, "missing submitted_at"
	}

	return entity.Review{
		ID:            *r.ID,
		PullRequestID: *r.PullRequestID,
		Reviewer:      *r.Reviewer,
		State:         *r.State,
		SubmittedAt:   r.SubmittedAt.UTC(),
	}, ""
}

func normalizeCommit(r raw.Commit) (entity.Commit, string) {
	switch {
	case r.SHA == nil || *r.SHA == "":
		return entity.Commit{}, "missing sha"
	case r.PullRequestID == nil || *r.PullRequestID == "":
		return entity.Commit{}, "missing pull_request_id"
	case r.Author == nil || *r.Author == "":
		return entity.Commit{}, "missing author"
	case r.CommittedAt == nil:
		return entity.Commit{}, "missing committed_at"
	}

	return entity.Commit{
		SHA:           *r.SHA,
		PullRequestID: *r.PullRequestID,
		Author:        *r.Author,
		CommittedAt:   r.CommittedAt.UTC(),
	}, ""
}

func normalizeCheckRun(r raw.CheckRun) (entity.CheckRun, string) {
	switch {
	case r.ID == nil || *r.ID == "":
		return entity.CheckRun{}, "missing id"
	case r.PullRequestID == nil || *r.PullRequestID == "":
		return entity.CheckRun{}, "missing pull_request_id"
	case r.Name == nil || *r.Name == "":
		return entity.CheckRun{}, "missing name"
	case r.Status == nil:
		return entity.CheckRun{}, "missing status"
	case !entity.ValidCheckStatus(*r.Status):
		return entity.CheckRun{}, fmt.Sprintf("invalid status %q", *r.Status)
	case *r.Status == entity.CheckStatusCompleted && r.Conclusion == nil:
		return entity.CheckRun{}, "completed check has no conclusion"
	case r.Conclusion != nil && !entity.ValidCheckConclusion(*r.Conclusion):
		return entity.CheckRun{}, fmt.Sprintf("invalid conclusion %q", *r.Conclusion)
	}

	check := entity.CheckRun{
		ID:            *r.ID,
		PullRequestID: *r.PullRequestID,
		Name:          *r.Name,
		Status:        *r.Status,
	}
	if r.Conclusion != nil {
		check.Conclusion = *r.Conclusion
	}
	if r.CompletedAt != nil {
		completedAt := r.CompletedAt.UTC()
		check.CompletedAt = &completedAt
	}
	return check, ""
}

// sortSnapshot orders everything by a stable key so that identical batches
// normalize to identical snapshots regardless of extractor ordering.
func sortSnapshot(s *entity.Snapshot) {
	sort.Slice(s.PullRequests, func(i, j int) bool {
		return s.PullRequests[i].ID < s.PullRequests[j].ID
	})
	for _, reviews := range s.ReviewsByPR {
		sort.Slice(reviews, func(i, j int) bool {
			if !reviews[i].SubmittedAt.Equal(reviews[j].SubmittedAt) {
				return reviews[i].SubmittedAt.Before(reviews[j].SubmittedAt)
			}
			return reviews[i].ID < reviews[j].ID
		})
	}
	for _, commits := range s.CommitsByPR {
		sort.Slice(commits, func(i, j int) bool {
			return commits[i].SHA < commits[j].SHA
		})
	}
	for _, checks := range s.ChecksByPR {
		sort.Slice(checks, func(i, j int) bool {
			return checks[i].ID < checks[j].ID
		})
	}
}

func fault(kind, entityKind, entityID, reason string) entity.Fault {
	return entity.Fault{
		Kind:       kind,
		EntityKind: entityKind,
		EntityID:   entityID,
		Reason:     reason,
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
