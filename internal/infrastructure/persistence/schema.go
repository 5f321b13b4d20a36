package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_runs (
    id         TEXT PRIMARY KEY,
    started_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS compliance_records (
    run_id                   TEXT NOT NULL REFERENCES audit_runs (id),
    pull_request_id          TEXT NOT NULL,
    repository               TEXT NOT NULL,
    compliance_status        TEXT NOT NULL,
    violations               TEXT[] NOT NULL DEFAULT '{}',
    effective_approval_count INT NOT NULL,
    required_approvals       INT NOT NULL,
    checks_passed            BOOLEAN NOT NULL,
    pr_created_at            TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (run_id, pull_request_id)
);

CREATE TABLE IF NOT EXISTS repository_summaries (
    run_id           TEXT NOT NULL REFERENCES audit_runs (id),
    repository       TEXT NOT NULL,
    window_from      TIMESTAMPTZ NOT NULL,
    window_to        TIMESTAMPTZ NOT NULL,
    total_prs        INT NOT NULL,
    compliant_prs    INT NOT NULL,
    approval_rate    DOUBLE PRECISION,
    violation_counts JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (run_id, repository)
);

CREATE TABLE IF NOT EXISTS normalization_faults (
    run_id      TEXT NOT NULL REFERENCES audit_runs (id),
    kind        TEXT NOT NULL,
    entity_kind TEXT NOT NULL,
    entity_id   TEXT NOT NULL,
    reason      TEXT NOT NULL
);
`

func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}
	return nil
}
