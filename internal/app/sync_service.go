// internal/app/sync_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bugbounty_sla_bot/internal/domain/report"

	"github.com/sirupsen/logrus"
)

// SyncResult summarizes one sync run.
type SyncResult struct {
	Reports    int
	Activities int
	Created    int
}

// SyncService mirrors reports from a snapshot source into the repository.
type SyncService struct {
	repo   report.Repository
	source report.Source
	logger *logrus.Entry
	now    func() time.Time
}

func NewSyncService(repo report.Repository, source report.Source, logger *logrus.Entry) *SyncService {
	return &SyncService{
		repo:   repo,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Sync pulls the reports changed since the last run, or all of them when
// full is set. Fields we own locally survive the overwrite.
func (s *SyncService) Sync(ctx context.Context, full bool) (*SyncResult, error) {
	startedAt := s.now()

	var since sql.NullTime
	if !full {
		var err error
		if since, err = s.repo.GetLastSyncedAt(ctx); err != nil {
			return nil, fmt.Errorf("failed to read last sync time: %w", err)
		}
	}
	logCtx := s.logger.WithFields(logrus.Fields{"full": full, "since": since.Time, "incremental": since.Valid})

	snapshots, err := s.source.FindReports(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	logCtx.WithField("reports", len(snapshots)).Debug("Fetched report snapshots")

	ids := make([]int64, 0, len(snapshots))
	for _, snap := range snapshots {
		ids = append(ids, snap.Report.ID)
	}
	existing, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing reports: %w", err)
	}
	byID := make(map[int64]*report.Record, len(existing))
	for _, rec := range existing {
		byID[rec.ID] = rec
	}

	result := &SyncResult{}
	for _, snap := range snapshots {
		rep := snap.Report
		if prev, ok := byID[rep.ID]; ok {
			rep.IsAccurate = prev.IsAccurate
			rep.IsFalseNegative = prev.IsFalseNegative
			rep.LastNaggedAt = prev.LastNaggedAt
			rep.SLATriagedAt = prev.SLATriagedAt
		} else {
			result.Created++
		}

		if err := s.repo.SaveActivities(ctx, snap.Activities); err != nil {
			return nil, fmt.Errorf("failed to save activities of report %d: %w", rep.ID, err)
		}
		// Replay the full stored timeline so an incremental snapshot with
		// only recent activities still finds the first triage.
		activities, err := s.repo.ListActivities(ctx, rep.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list activities of report %d: %w", rep.ID, err)
		}
		for _, a := range activities {
			if rep.ApplyActivity(a) {
				logCtx.WithFields(logrus.Fields{
					"report_id":     rep.ID,
					"activity_type": a.Type,
					"actor":         a.Actor(),
				}).Debug("SLA triage time set from activity")
			}
		}

		rep.LastSyncedAt = startedAt
		if _, err := s.repo.Save(ctx, &rep); err != nil {
			return nil, fmt.Errorf("failed to save report %d: %w", rep.ID, err)
		}
		result.Reports++
		result.Activities += len(snap.Activities)
	}

	if err := s.repo.SetLastSyncedAt(ctx, startedAt); err != nil {
		return nil, fmt.Errorf("failed to record sync time: %w", err)
	}

	logCtx.WithFields(logrus.Fields{
		"reports":    result.Reports,
		"created":    result.Created,
		"activities": result.Activities,
	}).Info("Sync finished")
	return result, nil
}

// Recompute re-saves every report so the derived fields reflect the current
// calendar and nag policy.
func (s *SyncService) Recompute(ctx context.Context) (int, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list reports: %w", err)
	}
	for _, rec := range records {
		if _, err := s.repo.Save(ctx, &rec.Report); err != nil {
			return 0, fmt.Errorf("failed to save report %d: %w", rec.ID, err)
		}
	}
	s.logger.WithField("reports", len(records)).Info("Derived fields recomputed")
	return len(records), nil
}
