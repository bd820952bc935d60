// internal/infra/telegram/review_handlers.go
package telegram

import (
	"context"
	"fmt"

	"bugbounty_sla_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ReviewCallback applies a review button pressed under a nag and returns the
// text shown to the user.
func (h *AdminHandlers) ReviewCallback(ctx context.Context, senderID int64, unique, data string) string {
	handlerLogger := h.logger.WithFields(logrus.Fields{
		"handler":   "callback",
		"unique":    unique,
		"sender_id": senderID,
	})

	reportID, err := parseReportID(data)
	if err != nil {
		handlerLogger.WithField("data", data).Warn("Invalid callback payload")
		return "Invalid report ID."
	}
	handlerLogger = handlerLogger.WithField("report_id", reportID)

	switch unique {
	case app.CallbackInaccurate:
		if _, err := h.svc.SetAccuracy(ctx, senderID, reportID, false); err != nil {
			return h.failure(handlerLogger, err, reportID)
		}
		handlerLogger.Info("Report marked inaccurate")
		return fmt.Sprintf("Report #%d marked inaccurate.", reportID)
	case app.CallbackFalseNegative:
		if _, err := h.svc.SetFalseNegative(ctx, senderID, reportID, true); err != nil {
			return h.failure(handlerLogger, err, reportID)
		}
		handlerLogger.Info("Report marked false negative")
		return fmt.Sprintf("Report #%d marked false negative.", reportID)
	default:
		handlerLogger.Warn("Unknown callback")
		return "Unknown action."
	}
}

// RegisterReviewHandlers handles the inline buttons attached to nags.
func RegisterReviewHandlers(ctx context.Context, b *telebot.Bot, h *AdminHandlers) {
	for _, unique := range []string{app.CallbackInaccurate, app.CallbackFalseNegative} {
		b.Handle("\f"+unique, func(c telebot.Context) error {
			text := h.ReviewCallback(ctx, c.Sender().ID, unique, c.Callback().Data)
			return c.Respond(&telebot.CallbackResponse{Text: text})
		})
	}
}
