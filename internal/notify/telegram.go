package notify

import (
	"context"
	"fmt"
	"time"
)

// TelegramSender delivers notifications to a chat via the Telegram Bot API.
type TelegramSender struct {
	token  string
	chatID string
	http   *webhookClient
}

type telegramPayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewTelegramSender creates a TelegramSender for the given bot token and
// chat ID.
func NewTelegramSender(token, chatID string) *TelegramSender {
	return &TelegramSender{
		token:  token,
		chatID: chatID,
		http:   newWebhookClient(10 * time.Second),
	}
}

// Send posts the notification to the configured chat using sendMessage. The
// title is rendered bold via Markdown parse mode.
func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	payload := telegramPayload{
		ChatID:    t.chatID,
		Text:      fmt.Sprintf("*%s*\n%s", title, message),
		ParseMode: "Markdown",
	}
	return t.http.postJSON(ctx, "telegram", url, payload)
}

// Name returns the sender identifier.
func (t *TelegramSender) Name() string {
	return "telegram"
}
