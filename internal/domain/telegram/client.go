package telegram

import "gopkg.in/telebot.v3"

// Client sends messages to a Telegram chat. Chat IDs may be users or groups.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
