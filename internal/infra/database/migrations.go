package database

import (
	"context"
	"database/sql"
)

// Migration is a single schema step.
type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, tx *sql.Tx) error
}

// migrations is applied in order. Append new ones with increasing versions.
var migrations = []Migration{
	{
		Version:     1,
		Description: "reports and sync state",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS reports (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT '',
    weakness TEXT NOT NULL DEFAULT '',
    asset_identifier TEXT NOT NULL DEFAULT '',
    asset_type TEXT NOT NULL DEFAULT '',
    issue_tracker_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    triaged_at TIMESTAMPTZ,
    closed_at TIMESTAMPTZ,
    disclosed_at TIMESTAMPTZ,
    sla_triaged_at TIMESTAMPTZ,
    last_nagged_at TIMESTAMPTZ,
    is_eligible_for_bounty BOOLEAN,
    is_accurate BOOLEAN NOT NULL DEFAULT TRUE,
    is_false_negative BOOLEAN NOT NULL DEFAULT FALSE,
    last_synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    days_until_triage INTEGER,
    next_nag_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_reports_next_nag_at ON reports(next_nag_at) WHERE next_nag_at IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_reports_days_until_triage ON reports(days_until_triage) WHERE days_until_triage IS NOT NULL;

CREATE TABLE IF NOT EXISTS sync_state (
    id BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
    last_synced_at TIMESTAMPTZ
);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "report activities",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
CREATE EXTENSION IF NOT EXISTS hstore;

CREATE TABLE IF NOT EXISTS report_activities (
    id BIGINT PRIMARY KEY,
    report_id BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    attributes HSTORE
);

CREATE INDEX IF NOT EXISTS idx_report_activities_report ON report_activities(report_id, created_at);
`)
			return err
		},
	},
}

func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
