package app

import (
	"context"
	"fmt"
	"time"

	"bugbounty_sla_bot/internal/domain/report"
	"bugbounty_sla_bot/internal/domain/sla"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")

// DefaultDueWindow is how far ahead the due command looks.
const DefaultDueWindow = 7 * 24 * time.Hour

type AdminService struct {
	repo            report.Repository
	agg             *sla.Aggregator
	sched           *sla.NagScheduler
	adminTelegramID int64
	startDay        int
	urlTemplate     string
	now             func() time.Time
}

func NewAdminService(
	repo report.Repository,
	agg *sla.Aggregator,
	sched *sla.NagScheduler,
	adminID int64,
	startDay int,
	urlTemplate string,
) *AdminService {
	return &AdminService{
		repo:            repo,
		agg:             agg,
		sched:           sched,
		adminTelegramID: adminID,
		startDay:        startDay,
		urlTemplate:     urlTemplate,
		now:             time.Now,
	}
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// StartDay is the configured contract start day.
func (s *AdminService) StartDay() int {
	return s.startDay
}

// Stats computes SLA statistics. A zero startDay uses the configured one.
func (s *AdminService) Stats(ctx context.Context, performingAdminID int64, startDay int) (*sla.Stats, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	if startDay == 0 {
		startDay = s.startDay
	}
	return ComputeStats(ctx, s.repo, s.agg, startDay)
}

// ComputeStats aggregates all triaged reports in the repository.
func ComputeStats(ctx context.Context, repo report.Repository, agg *sla.Aggregator, startDay int) (*sla.Stats, error) {
	if err := sla.ValidateStartDay(startDay); err != nil {
		return nil, err
	}
	records, err := repo.ListTriaged(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list triaged reports: %w", err)
	}
	return agg.Stats(records, startDay)
}

// Report returns a single report with its SLA figures.
func (s *AdminService) Report(ctx context.Context, performingAdminID int64, reportID int64) (*ReportView, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return s.view(rec), nil
}

// SetAccuracy records whether we agree with the platform's triage of the report.
func (s *AdminService) SetAccuracy(ctx context.Context, performingAdminID int64, reportID int64, accurate bool) (*report.Record, error) {
	return s.update(ctx, performingAdminID, reportID, func(r *report.Report) { r.IsAccurate = accurate })
}

// SetFalseNegative records whether the platform wrongly dismissed the report.
func (s *AdminService) SetFalseNegative(ctx context.Context, performingAdminID int64, reportID int64, falseNegative bool) (*report.Record, error) {
	return s.update(ctx, performingAdminID, reportID, func(r *report.Report) { r.IsFalseNegative = falseNegative })
}

func (s *AdminService) update(ctx context.Context, performingAdminID int64, reportID int64, apply func(r *report.Report)) (*report.Record, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	apply(&rec.Report)
	saved, err := s.repo.Save(ctx, &rec.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to update report %d: %w", reportID, err)
	}
	return saved, nil
}

// UpcomingNags lists the reports whose next nag falls within the window.
func (s *AdminService) UpcomingNags(ctx context.Context, performingAdminID int64, within time.Duration) ([]ReportView, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListDueNags(ctx, s.now().Add(within))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming nags: %w", err)
	}
	views := make([]ReportView, 0, len(records))
	for _, rec := range records {
		views = append(views, *s.view(rec))
	}
	return views, nil
}

func (s *AdminService) view(rec *report.Record) *ReportView {
	return &ReportView{
		Record:    rec,
		Remaining: s.sched.Remaining(rec.CreatedAt, s.now()),
		URL:       rec.URL(s.urlTemplate),
	}
}
