// Package notify pushes agent outcomes to operator channels (Telegram,
// Discord). Delivery is best effort: a failed or filtered notification is
// logged and never fails the run that produced it.
package notify

import (
	"context"
	"log/slog"
	"strings"
)

// Sender is one delivery channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Titles shown for the run outcomes the agent emits. Unknown events fall
// back to the raw event name.
var eventTitles = map[string]string{
	"trade_selected":  "Trade selected",
	"market_idea":     "New market idea",
	"pipeline_failed": "Pipeline failed",
}

// Notifier fans one outcome out to every configured sender. It holds a set
// of allowed event names; events outside the set are dropped. An empty set
// allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders, forwarding
// only the listed event names. An empty events list forwards all.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers message to every sender if the event is allowed. Sender
// failures are logged, not returned: notification is never load-bearing.
func (n *Notifier) Notify(ctx context.Context, event, message string) {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return
	}

	title, ok := eventTitles[event]
	if !ok {
		title = event
	}

	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("event", event),
		)
	}
}
