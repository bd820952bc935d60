// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// StartMessage is the /start reply for the given sender.
func StartMessage(senderID, adminTelegramID int64, firstName string) string {
	if senderID == adminTelegramID {
		return fmt.Sprintf("Hello, %s! I track bug bounty SLAs and send nags. Use /help for the list of commands.", firstName)
	}
	return "Hello! I send SLA reminders for bug bounty reports. Commands are available to the program admin only."
}

// HelpMessage is the /help reply for the given sender.
func HelpMessage(senderID, adminTelegramID int64) string {
	if senderID != adminTelegramID {
		return "No commands are available for you. Ask the program admin for access."
	}
	var helpText strings.Builder
	helpText.WriteString("Admin commands:\n\n")
	helpText.WriteString("`/stats [start_day]`\n - SLA stats per contract month. The start day defaults to the configured one.\n\n")
	helpText.WriteString("`/report <id>`\n - Show a report with its SLA figures.\n\n")
	helpText.WriteString("`/accurate <id> yes|no`\n - Record whether the triage was accurate.\n\n")
	helpText.WriteString("`/false_negative <id> yes|no`\n - Record whether the report was wrongly dismissed.\n\n")
	helpText.WriteString("`/due`\n - List nags due within the next week.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return helpText.String()
}

func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID).Info("Processing /start command")
		return c.Send(StartMessage(senderID, adminTelegramID, c.Sender().FirstName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID).Info("Processing /help command")
		return c.Send(HelpMessage(senderID, adminTelegramID), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
