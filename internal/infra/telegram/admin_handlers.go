package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bugbounty_sla_bot/internal/app"
	"bugbounty_sla_bot/internal/domain/report"
	"bugbounty_sla_bot/internal/domain/sla"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const msgNotAuthorized = "Error: you are not allowed to run this command."

// AdminHandlers answers the admin commands. Each handler returns the reply text.
type AdminHandlers struct {
	svc    *app.AdminService
	loc    *time.Location
	logger *logrus.Entry
}

func NewAdminHandlers(svc *app.AdminService, loc *time.Location, logger *logrus.Entry) *AdminHandlers {
	return &AdminHandlers{svc: svc, loc: loc, logger: logger}
}

// RegisterAdminHandlers registers handlers for admin commands.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, h *AdminHandlers) {
	register := func(command string, handle func(ctx context.Context, senderID int64, args []string) string) {
		b.Handle(command, func(c telebot.Context) error {
			reply := handle(ctx, c.Sender().ID, c.Args())
			return c.Send(reply, &telebot.SendOptions{DisableWebPagePreview: true})
		})
	}
	register("/stats", h.Stats)
	register("/report", h.Report)
	register("/accurate", h.Accurate)
	register("/false_negative", h.FalseNegative)
	register("/due", h.Due)
}

func (h *AdminHandlers) log(command string, senderID int64) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"handler":   command,
		"sender_id": senderID,
	})
}

// Stats handles /stats [start_day].
func (h *AdminHandlers) Stats(ctx context.Context, senderID int64, args []string) string {
	handlerLogger := h.log("/stats", senderID)
	handlerLogger.Info("Command received")

	if len(args) > 1 {
		return "Invalid format. Use: /stats [start_day]"
	}
	startDay := 0
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "Error: start day must be a number."
		}
		if err := sla.ValidateStartDay(n); err != nil {
			return h.failure(handlerLogger, err, 0)
		}
		startDay = n
	}

	stats, err := h.svc.Stats(ctx, senderID, startDay)
	if err != nil {
		return h.failure(handlerLogger, err, 0)
	}
	if startDay == 0 {
		startDay = h.svc.StartDay()
	}
	return app.FormatStats(stats, startDay)
}

// Report handles /report <id>.
func (h *AdminHandlers) Report(ctx context.Context, senderID int64, args []string) string {
	handlerLogger := h.log("/report", senderID)
	handlerLogger.Info("Command received")

	if len(args) != 1 {
		return "Invalid format. Use: /report <id>"
	}
	reportID, err := parseReportID(args[0])
	if err != nil {
		return "Error: " + err.Error() + "."
	}

	view, err := h.svc.Report(ctx, senderID, reportID)
	if err != nil {
		return h.failure(handlerLogger.WithField("report_id", reportID), err, reportID)
	}
	return app.FormatReport(*view, h.loc)
}

// Accurate handles /accurate <id> yes|no.
func (h *AdminHandlers) Accurate(ctx context.Context, senderID int64, args []string) string {
	handlerLogger := h.log("/accurate", senderID)
	handlerLogger.Info("Command received")

	if len(args) != 2 {
		return "Invalid format. Use: /accurate <id> yes|no"
	}
	reportID, value, err := parseFlagArgs(args)
	if err != nil {
		return "Error: " + err.Error() + "."
	}
	if _, err := h.svc.SetAccuracy(ctx, senderID, reportID, value); err != nil {
		return h.failure(handlerLogger.WithField("report_id", reportID), err, reportID)
	}
	handlerLogger.WithFields(logrus.Fields{"report_id": reportID, "accurate": value}).Info("Report accuracy updated")
	return fmt.Sprintf("Report #%d marked accurate: %s.", reportID, yesNo(value))
}

// FalseNegative handles /false_negative <id> yes|no.
func (h *AdminHandlers) FalseNegative(ctx context.Context, senderID int64, args []string) string {
	handlerLogger := h.log("/false_negative", senderID)
	handlerLogger.Info("Command received")

	if len(args) != 2 {
		return "Invalid format. Use: /false_negative <id> yes|no"
	}
	reportID, value, err := parseFlagArgs(args)
	if err != nil {
		return "Error: " + err.Error() + "."
	}
	if _, err := h.svc.SetFalseNegative(ctx, senderID, reportID, value); err != nil {
		return h.failure(handlerLogger.WithField("report_id", reportID), err, reportID)
	}
	handlerLogger.WithFields(logrus.Fields{"report_id": reportID, "false_negative": value}).Info("Report false negative flag updated")
	return fmt.Sprintf("Report #%d marked false negative: %s.", reportID, yesNo(value))
}

// Due handles /due.
func (h *AdminHandlers) Due(ctx context.Context, senderID int64, _ []string) string {
	handlerLogger := h.log("/due", senderID)
	handlerLogger.Info("Command received")

	views, err := h.svc.UpcomingNags(ctx, senderID, app.DefaultDueWindow)
	if err != nil {
		return h.failure(handlerLogger, err, 0)
	}
	return app.FormatDue(views, h.loc)
}

func (h *AdminHandlers) failure(logCtx *logrus.Entry, err error, reportID int64) string {
	logWithError := logCtx.WithError(err)
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized):
		logWithError.Warn("Unauthorized access attempt")
		return msgNotAuthorized
	case errors.Is(err, report.ErrNotFound):
		logWithError.Warn("Report not found")
		return fmt.Sprintf("Report #%d not found.", reportID)
	case errors.Is(err, sla.ErrInvalidStartDay):
		logWithError.Warn("Invalid start day")
		return fmt.Sprintf("Error: start day must be between 1 and %d.", sla.MaxContractStartDay)
	default:
		logWithError.Error("Command failed")
		return fmt.Sprintf("An error occurred: %s", err.Error())
	}
}

func parseReportID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("report ID must be a positive number")
	}
	return id, nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected yes or no, got %q", s)
}

// parseFlagArgs parses "<id> yes|no".
func parseFlagArgs(args []string) (int64, bool, error) {
	reportID, err := parseReportID(args[0])
	if err != nil {
		return 0, false, err
	}
	value, err := parseYesNo(args[1])
	if err != nil {
		return 0, false, err
	}
	return reportID, value, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
