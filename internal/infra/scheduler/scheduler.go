package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	syncTimeout = 5 * time.Minute
	nagTimeout  = 2 * time.Minute
)

// Syncer pulls report changes from the platform.
type Syncer interface {
	Sync(ctx context.Context, full bool) (int, error)
}

// Nagger delivers due SLA reminders.
type Nagger interface {
	ProcessDueNags(ctx context.Context) (int, error)
}

// SyncFunc adapts a function to Syncer.
type SyncFunc func(ctx context.Context, full bool) (int, error)

func (f SyncFunc) Sync(ctx context.Context, full bool) (int, error) { return f(ctx, full) }

// SLAScheduler runs the incremental sync and the nag delivery on their own
// cron schedules in the business location.
type SLAScheduler struct {
	cronEngine   *cron.Cron
	syncer       Syncer
	nagger       Nagger
	logger       *logrus.Entry
	cronSpecSync string
	cronSpecNag  string
}

func NewSLAScheduler(
	syncer Syncer,
	nagger Nagger,
	loc *time.Location,
	logger *logrus.Entry,
	cronSpecSync string, // e.g. "* * * * *" (every minute)
	cronSpecNag string, // e.g. "*/15 * * * *" (every 15 minutes)
) *SLAScheduler {
	return &SLAScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		syncer:       syncer,
		nagger:       nagger,
		logger:       logger,
		cronSpecSync: cronSpecSync,
		cronSpecNag:  cronSpecNag,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *SLAScheduler) Start() error {
	s.logger.Info("Starting SLA scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecSync, s.RunSync); err != nil {
		return fmt.Errorf("could not add sync cron job: %w", err)
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecNag, s.RunNags); err != nil {
		return fmt.Errorf("could not add nag cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"sync_spec": s.cronSpecSync,
		"nag_spec":  s.cronSpecNag,
	}).Info("SLA scheduler started with jobs")
	return nil
}

// RunSync runs one incremental sync.
func (s *SLAScheduler) RunSync() {
	logCtx := s.logger.WithField("job", "sync")
	logCtx.Debug("Cron job triggered")
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	n, err := s.syncer.Sync(ctx, false)
	if err != nil {
		logCtx.WithError(err).Error("Sync failed")
		return
	}
	logCtx.WithField("reports", n).Debug("Sync completed")
}

// RunNags delivers the nags that are due.
func (s *SLAScheduler) RunNags() {
	logCtx := s.logger.WithField("job", "nag")
	logCtx.Debug("Cron job triggered")
	ctx, cancel := context.WithTimeout(context.Background(), nagTimeout)
	defer cancel()

	n, err := s.nagger.ProcessDueNags(ctx)
	if err != nil {
		logCtx.WithError(err).WithField("sent", n).Error("Error during nag processing")
		return
	}
	if n > 0 {
		logCtx.WithField("sent", n).Info("Nags delivered")
	}
}

func (s *SLAScheduler) Stop() {
	s.logger.Info("Stopping SLA scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("SLA scheduler gracefully stopped")
}
