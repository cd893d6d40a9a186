package notify

import (
	"context"
	"time"
)

// DiscordSender delivers notifications to a Discord channel webhook. Messages
// are sent as a single embed so titles render as a heading rather than inline
// markdown.
type DiscordSender struct {
	webhookURL string
	http       *webhookClient
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// NewDiscordSender creates a DiscordSender for the given webhook URL.
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		http:       newWebhookClient(10 * time.Second),
	}
}

// Send posts the notification to the webhook. Discord answers 204 No Content
// on success.
func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	payload := discordPayload{
		Embeds: []discordEmbed{{Title: title, Description: message}},
	}
	return d.http.postJSON(ctx, "discord", d.webhookURL, payload)
}

// Name returns the sender identifier.
func (d *DiscordSender) Name() string {
	return "discord"
}
