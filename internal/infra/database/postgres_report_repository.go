// internal/infra/database/postgres_report_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bugbounty_sla_bot/internal/domain/report"

	"github.com/lib/pq" // For pq.Array
	"github.com/lib/pq/hstore"
)

const reportColumns = `id, title, state, weakness, asset_identifier, asset_type, issue_tracker_url,
       created_at, triaged_at, closed_at, disclosed_at, sla_triaged_at, last_nagged_at,
       is_eligible_for_bounty, is_accurate, is_false_negative, last_synced_at,
       days_until_triage, next_nag_at`

type PostgresReportRepository struct {
	db     *sql.DB
	derive report.DeriveFunc
}

func NewPostgresReportRepository(db *sql.DB, derive report.DeriveFunc) *PostgresReportRepository {
	return &PostgresReportRepository{db: db, derive: derive}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*report.Record, error) {
	rec := &report.Record{}
	err := s.Scan(
		&rec.ID, &rec.Title, &rec.State, &rec.Weakness, &rec.AssetIdentifier, &rec.AssetType, &rec.IssueTrackerURL,
		&rec.CreatedAt, &rec.TriagedAt, &rec.ClosedAt, &rec.DisclosedAt, &rec.SLATriagedAt, &rec.LastNaggedAt,
		&rec.IsEligibleForBounty, &rec.IsAccurate, &rec.IsFalseNegative, &rec.LastSyncedAt,
		&rec.DaysUntilTriage, &rec.NextNagAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Save upserts the report, recomputing its derived columns first.
func (r *PostgresReportRepository) Save(ctx context.Context, rep *report.Report) (*report.Record, error) {
	derived := r.derive(rep)

	query := `INSERT INTO reports (` + reportColumns + `)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
               ON CONFLICT (id) DO UPDATE SET
                   title = EXCLUDED.title,
                   state = EXCLUDED.state,
                   weakness = EXCLUDED.weakness,
                   asset_identifier = EXCLUDED.asset_identifier,
                   asset_type = EXCLUDED.asset_type,
                   issue_tracker_url = EXCLUDED.issue_tracker_url,
                   created_at = EXCLUDED.created_at,
                   triaged_at = EXCLUDED.triaged_at,
                   closed_at = EXCLUDED.closed_at,
                   disclosed_at = EXCLUDED.disclosed_at,
                   sla_triaged_at = EXCLUDED.sla_triaged_at,
                   last_nagged_at = EXCLUDED.last_nagged_at,
                   is_eligible_for_bounty = EXCLUDED.is_eligible_for_bounty,
                   is_accurate = EXCLUDED.is_accurate,
                   is_false_negative = EXCLUDED.is_false_negative,
                   last_synced_at = EXCLUDED.last_synced_at,
                   days_until_triage = EXCLUDED.days_until_triage,
                   next_nag_at = EXCLUDED.next_nag_at`

	_, err := r.db.ExecContext(ctx, query,
		rep.ID, rep.Title, rep.State, rep.Weakness, rep.AssetIdentifier, rep.AssetType, rep.IssueTrackerURL,
		rep.CreatedAt, rep.TriagedAt, rep.ClosedAt, rep.DisclosedAt, rep.SLATriagedAt, rep.LastNaggedAt,
		rep.IsEligibleForBounty, rep.IsAccurate, rep.IsFalseNegative, rep.LastSyncedAt,
		derived.DaysUntilTriage, derived.NextNagAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error saving report %d: %w", rep.ID, err)
	}
	return &report.Record{Report: *rep, Derived: derived}, nil
}

func (r *PostgresReportRepository) GetByID(ctx context.Context, id int64) (*report.Record, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, report.ErrNotFound
		}
		return nil, fmt.Errorf("error getting report by ID: %w", err)
	}
	return rec, nil
}

func (r *PostgresReportRepository) ListByIDs(ctx context.Context, ids []int64) ([]*report.Record, error) {
	if len(ids) == 0 {
		return []*report.Record{}, nil
	}
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ANY($1)`
	return r.list(ctx, "reports by IDs", query, pq.Array(ids))
}

func (r *PostgresReportRepository) ListAll(ctx context.Context) ([]*report.Record, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY id`
	return r.list(ctx, "all reports", query)
}

func (r *PostgresReportRepository) ListTriaged(ctx context.Context) ([]*report.Record, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE days_until_triage IS NOT NULL ORDER BY created_at`
	return r.list(ctx, "triaged reports", query)
}

func (r *PostgresReportRepository) ListDueNags(ctx context.Context, now time.Time) ([]*report.Record, error) {
	query := `SELECT ` + reportColumns + ` FROM reports
               WHERE next_nag_at IS NOT NULL AND next_nag_at <= $1
               ORDER BY next_nag_at, id`
	return r.list(ctx, "due nags", query, now)
}

func (r *PostgresReportRepository) list(ctx context.Context, what, query string, args ...any) ([]*report.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", what, err)
	}
	defer rows.Close()

	records := make([]*report.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", what, err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return records, nil
}

// SaveActivities upserts the activities in a single transaction.
func (r *PostgresReportRepository) SaveActivities(ctx context.Context, activities []*report.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for activities: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO report_activities (id, report_id, type, created_at, attributes)
                                         VALUES ($1, $2, $3, $4, $5)
                                         ON CONFLICT (id) DO UPDATE SET
                                             type = EXCLUDED.type,
                                             created_at = EXCLUDED.created_at,
                                             attributes = EXCLUDED.attributes`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for activities: %w", err)
	}
	defer stmt.Close()

	for _, a := range activities {
		if _, err := stmt.ExecContext(ctx, a.ID, a.ReportID, string(a.Type), a.CreatedAt, toHstore(a.Attributes)); err != nil {
			return fmt.Errorf("error saving activity %d of report %d: %w", a.ID, a.ReportID, err)
		}
	}

	return txn.Commit()
}

func (r *PostgresReportRepository) ListActivities(ctx context.Context, reportID int64) ([]*report.Activity, error) {
	query := `SELECT id, report_id, type, created_at, attributes
               FROM report_activities WHERE report_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("error listing activities: %w", err)
	}
	defer rows.Close()

	activities := make([]*report.Activity, 0)
	for rows.Next() {
		a := &report.Activity{}
		var typ string
		var attrs hstore.Hstore
		if err := rows.Scan(&a.ID, &a.ReportID, &typ, &a.CreatedAt, &attrs); err != nil {
			return nil, fmt.Errorf("error scanning activity: %w", err)
		}
		a.Type = report.ActivityType(typ)
		a.Attributes = fromHstore(attrs)
		activities = append(activities, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return activities, nil
}

func (r *PostgresReportRepository) GetLastSyncedAt(ctx context.Context) (sql.NullTime, error) {
	var at sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT last_synced_at FROM sync_state WHERE id`).Scan(&at)
	if err != nil && err != sql.ErrNoRows {
		return sql.NullTime{}, fmt.Errorf("error reading sync state: %w", err)
	}
	return at, nil
}

func (r *PostgresReportRepository) SetLastSyncedAt(ctx context.Context, at time.Time) error {
	query := `INSERT INTO sync_state (id, last_synced_at) VALUES (TRUE, $1)
               ON CONFLICT (id) DO UPDATE SET last_synced_at = EXCLUDED.last_synced_at`
	if _, err := r.db.ExecContext(ctx, query, at); err != nil {
		return fmt.Errorf("error writing sync state: %w", err)
	}
	return nil
}

func toHstore(m map[string]string) hstore.Hstore {
	h := hstore.Hstore{Map: make(map[string]sql.NullString, len(m))}
	for k, v := range m {
		h.Map[k] = sql.NullString{String: v, Valid: true}
	}
	return h
}

func fromHstore(h hstore.Hstore) map[string]string {
	m := make(map[string]string, len(h.Map))
	for k, v := range h.Map {
		if v.Valid {
			m[k] = v.String
		}
	}
	return m
}
