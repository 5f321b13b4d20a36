package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"pr_compliance_service/internal/domain"
	"pr_compliance_service/internal/domain/entity"
	"pr_compliance_service/internal/domain/service"
	"pr_compliance_service/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// ComplianceRepository persists run results. One run is one transaction:
// a failed run leaves no rows behind, so retries are safe.
type ComplianceRepository struct {
	db *sqlx.DB
}

func NewComplianceRepository(db *sqlx.DB) *ComplianceRepository {
	return &ComplianceRepository{db: db}
}

func (r *ComplianceRepository) StoreRun(ctx context.Context, result service.RunResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	runQuery := `INSERT INTO audit_runs (id, started_at) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, runQuery, result.RunID.String(), result.StartedAt); err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.NewError(errcodes.RunAlreadyStored,
				fmt.Sprintf("run '%s' is already stored", result.RunID))
		}
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert audit run")
	}

	recordQuery := `
        INSERT INTO compliance_records
            (run_id, pull_request_id, repository, compliance_status, violations,
             effective_approval_count, required_approvals, checks_passed, pr_created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, record := range result.Records {
		violations := lo.Map(record.Violations, func(v entity.ViolationType, _ int) string {
			return string(v)
		})
		_, err := tx.ExecContext(ctx, recordQuery,
			result.RunID.String(), record.PullRequestID, record.Repository,
			record.ComplianceStatus, pq.Array(violations),
			record.EffectiveApprovalCount, record.RequiredApprovals,
			record.ChecksPassed, record.PRCreatedAt)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError,
				fmt.Sprintf("failed to insert compliance record for pull request '%s'", record.PullRequestID))
		}
	}

	summaryQuery := `
        INSERT INTO repository_summaries
            (run_id, repository, window_from, window_to, total_prs, compliant_prs,
             approval_rate, violation_counts)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, summary := range result.Summaries {
		counts, err := json.Marshal(summary.ViolationCounts)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to encode violation counts")
		}
		_, err = tx.ExecContext(ctx, summaryQuery,
			result.RunID.String(), summary.Repository,
			summary.Window.From, summary.Window.To,
			summary.TotalPRs, summary.CompliantPRs,
			summary.ApprovalRate, counts)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError,
				fmt.Sprintf("failed to insert summary for repository '%s'", summary.Repository))
		}
	}

	faultQuery := `
        INSERT INTO normalization_faults (run_id, kind, entity_kind, entity_id, reason)
        VALUES ($1, $2, $3, $4, $5)`
	for _, f := range result.Faults {
		if _, err := tx.ExecContext(ctx, faultQuery,
			result.RunID.String(), f.Kind, f.EntityKind, f.EntityID, f.Reason); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert normalization fault")
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit run")
	}
	return nil
}

// LatestSummaries returns the repository summaries of the most recent run.
func (r *ComplianceRepository) LatestSummaries(ctx context.Context) ([]entity.RepositorySummary, error) {
	query := `
        SELECT repository, window_from, window_to, total_prs, compliant_prs,
               approval_rate, violation_counts
        FROM repository_summaries
        WHERE run_id = (SELECT id FROM audit_runs ORDER BY started_at DESC, id DESC LIMIT 1)
        ORDER BY repository`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to query latest summaries")
	}
	defer rows.Close()

	var summaries []entity.RepositorySummary
	for rows.Next() {
		var (
			summary entity.RepositorySummary
			counts  []byte
		)
		err := rows.Scan(&summary.Repository, &summary.Window.From, &summary.Window.To,
			&summary.TotalPRs, &summary.CompliantPRs, &summary.ApprovalRate, &counts)
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to scan summary row")
		}
		if err := json.Unmarshal(counts, &summary.ViolationCounts); err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode violation counts")
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to iterate summary rows")
	}
	if summaries == nil {
		return nil, domain.NewError(errcodes.NotFound, "no stored runs")
	}

	return summaries, nil
}
