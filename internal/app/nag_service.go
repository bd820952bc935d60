// internal/app/nag_service.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bugbounty_sla_bot/internal/domain/report"
	"bugbounty_sla_bot/internal/domain/sla"
	domainTelegram "bugbounty_sla_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Callback uniques of the review buttons attached to nags. The payload is the report ID.
const (
	CallbackInaccurate    = "inaccurate"
	CallbackFalseNegative = "false_negative"
)

// NagService delivers due SLA reminders to the nag chat.
type NagService struct {
	repo        report.Repository
	sched       *sla.NagScheduler
	client      domainTelegram.Client
	chatID      int64
	urlTemplate string
	logger      *logrus.Entry
	now         func() time.Time
}

func NewNagService(
	repo report.Repository,
	sched *sla.NagScheduler,
	client domainTelegram.Client,
	chatID int64,
	urlTemplate string,
	logger *logrus.Entry,
) *NagService {
	return &NagService{
		repo:        repo,
		sched:       sched,
		client:      client,
		chatID:      chatID,
		urlTemplate: urlTemplate,
		logger:      logger,
		now:         time.Now,
	}
}

// ProcessDueNags sends a reminder for every report whose next nag is due and
// records the delivery, which moves the report to its next rung. A failed
// send leaves the report due so the next run retries it.
func (s *NagService) ProcessDueNags(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.ListDueNags(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due nags: %w", err)
	}
	if len(due) == 0 {
		s.logger.Debug("No nags due")
		return 0, nil
	}
	s.logger.WithField("due", len(due)).Info("Processing due nags")

	var errs []error
	sent := 0
	for _, rec := range due {
		logCtx := s.logger.WithField("report_id", rec.ID)
		view := ReportView{
			Record:    rec,
			Remaining: s.sched.Remaining(rec.CreatedAt, now),
			URL:       rec.URL(s.urlTemplate),
		}

		err := s.client.SendMessage(s.chatID, FormatNag(view), &telebot.SendOptions{
			ReplyMarkup:           reviewMarkup(rec.ID),
			DisableWebPagePreview: true,
		})
		if err != nil {
			logCtx.WithError(err).Error("Failed to send nag")
			errs = append(errs, fmt.Errorf("report %d: %w", rec.ID, err))
			continue
		}

		rec.LastNaggedAt = sql.NullTime{Time: now, Valid: true}
		saved, err := s.repo.Save(ctx, &rec.Report)
		if err != nil {
			logCtx.WithError(err).Error("Failed to record nag delivery")
			errs = append(errs, fmt.Errorf("report %d: %w", rec.ID, err))
			continue
		}
		sent++
		logCtx.WithFields(logrus.Fields{
			"remaining":   view.Remaining,
			"next_nag_at": saved.NextNagAt.Time,
		}).Info("Nag sent")
	}
	return sent, errors.Join(errs...)
}

func reviewMarkup(reportID int64) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	id := strconv.FormatInt(reportID, 10)
	btnInaccurate := markup.Data("Mark inaccurate", CallbackInaccurate, id)
	btnFalseNegative := markup.Data("Mark false negative", CallbackFalseNegative, id)
	markup.Inline(markup.Row(btnInaccurate, btnFalseNegative))
	return markup
}
