package service

import (
	"sort"

	"github.com/samber/lo"

	"pr_compliance_service/internal/domain/entity"
)

// Aggregator rolls per-PR verdicts up into per-repository summaries.
// It is a pure reduction: permuting the input records never changes
// the output.
type Aggregator struct{}

func NewAggregator() Aggregator {
	return Aggregator{}
}

func (Aggregator) Aggregate(records []entity.ComplianceRecord, window entity.Window) []entity.RepositorySummary {
	byRepo := lo.GroupBy(records, func(r entity.ComplianceRecord) string {
		return r.Repository
	})

	summaries := make([]entity.RepositorySummary, 0, len(byRepo))
	for repo, repoRecords := range byRepo {
		// Every repository present in the record set gets a summary;
		// only in-window PRs count toward the totals. A repository
		// whose PRs all fall outside the window is reported with zero
		// totals and an undefined rate rather than dropped.
		summary := entity.RepositorySummary{
			Repository:      repo,
			Window:          window,
			ViolationCounts: make(map[entity.ViolationType]int),
		}
		for _, record := range repoRecords {
			if !window.Contains(record.PRCreatedAt) {
				continue
			}
			summary.TotalPRs++
			if record.ComplianceStatus == entity.StatusCompliant {
				summary.CompliantPRs++
			}
			for _, violation := range record.Violations {
				summary.ViolationCounts[violation]++
			}
		}
		if summary.TotalPRs > 0 {
			rate := float64(summary.CompliantPRs) / float64(summary.TotalPRs)
			summary.ApprovalRate = &rate
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Repository < summaries[j].Repository
	})

	return summaries
}
