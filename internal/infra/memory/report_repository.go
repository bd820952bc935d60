// internal/infra/memory/report_repository.go
package memory

import (
	"context"
	"database/sql"
	"maps"
	"sort"
	"sync"
	"time"

	"bugbounty_sla_bot/internal/domain/report"
)

// ReportRepository keeps reports in process memory. It is used by tests and
// by the CLI when no database is configured.
type ReportRepository struct {
	mu         sync.RWMutex
	derive     report.DeriveFunc
	records    map[int64]*report.Record
	activities map[int64]map[int64]*report.Activity // report ID -> activity ID
	lastSynced sql.NullTime
}

func NewReportRepository(derive report.DeriveFunc) *ReportRepository {
	return &ReportRepository{
		derive:     derive,
		records:    make(map[int64]*report.Record),
		activities: make(map[int64]map[int64]*report.Activity),
	}
}

func copyRecord(rec *report.Record) *report.Record {
	c := *rec
	return &c
}

func copyActivity(a *report.Activity) *report.Activity {
	c := *a
	c.Attributes = maps.Clone(a.Attributes)
	return &c
}

func (r *ReportRepository) Save(_ context.Context, rep *report.Report) (*report.Record, error) {
	rec := &report.Record{Report: *rep, Derived: r.derive(rep)}

	r.mu.Lock()
	r.records[rep.ID] = rec
	r.mu.Unlock()

	return copyRecord(rec), nil
}

func (r *ReportRepository) GetByID(_ context.Context, id int64) (*report.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, report.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (r *ReportRepository) ListByIDs(_ context.Context, ids []int64) ([]*report.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*report.Record, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if rec, ok := r.records[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

func (r *ReportRepository) ListAll(_ context.Context) ([]*report.Record, error) {
	out := r.filter(func(*report.Record) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ReportRepository) ListTriaged(_ context.Context) ([]*report.Record, error) {
	out := r.filter(func(rec *report.Record) bool { return rec.DaysUntilTriage.Valid })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ReportRepository) ListDueNags(_ context.Context, now time.Time) ([]*report.Record, error) {
	out := r.filter(func(rec *report.Record) bool {
		return rec.NextNagAt.Valid && !rec.NextNagAt.Time.After(now)
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].NextNagAt.Time, out[j].NextNagAt.Time
		if !a.Equal(b) {
			return a.Before(b)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ReportRepository) filter(keep func(*report.Record) bool) []*report.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*report.Record, 0, len(r.records))
	for _, rec := range r.records {
		if keep(rec) {
			out = append(out, copyRecord(rec))
		}
	}
	return out
}

func (r *ReportRepository) SaveActivities(_ context.Context, activities []*report.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range activities {
		byID, ok := r.activities[a.ReportID]
		if !ok {
			byID = make(map[int64]*report.Activity)
			r.activities[a.ReportID] = byID
		}
		byID[a.ID] = copyActivity(a)
	}
	return nil
}

func (r *ReportRepository) ListActivities(_ context.Context, reportID int64) ([]*report.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*report.Activity, 0, len(r.activities[reportID]))
	for _, a := range r.activities[reportID] {
		out = append(out, copyActivity(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ReportRepository) GetLastSyncedAt(_ context.Context) (sql.NullTime, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSynced, nil
}

func (r *ReportRepository) SetLastSyncedAt(_ context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSynced = sql.NullTime{Time: at, Valid: true}
	return nil
}
