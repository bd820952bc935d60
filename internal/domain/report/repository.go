// internal/domain/report/repository.go
package report

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("report not found")

// Repository persists reports, their activities and the sync bookkeeping.
// Implementations recompute the derived fields with their DeriveFunc before
// every write; callers never supply them.
type Repository interface {
	// Save inserts or updates the report and returns the stored record.
	Save(ctx context.Context, r *Report) (*Record, error)
	GetByID(ctx context.Context, id int64) (*Record, error)
	// ListByIDs returns the records that exist among ids, in no particular order.
	ListByIDs(ctx context.Context, ids []int64) ([]*Record, error)
	ListAll(ctx context.Context) ([]*Record, error)
	// ListTriaged returns records whose DaysUntilTriage is set.
	ListTriaged(ctx context.Context) ([]*Record, error)
	// ListDueNags returns records whose NextNagAt is at or before now, oldest first.
	ListDueNags(ctx context.Context, now time.Time) ([]*Record, error)

	SaveActivities(ctx context.Context, activities []*Activity) error
	ListActivities(ctx context.Context, reportID int64) ([]*Activity, error)

	GetLastSyncedAt(ctx context.Context) (sql.NullTime, error)
	SetLastSyncedAt(ctx context.Context, at time.Time) error
}

// Snapshot is a report as produced by an ingestion source.
type Snapshot struct {
	Report     Report
	Activities []*Activity
}

// Source produces report snapshots. since, when valid, restricts the result to
// reports with activity after that instant.
type Source interface {
	FindReports(ctx context.Context, since sql.NullTime) ([]Snapshot, error)
}
