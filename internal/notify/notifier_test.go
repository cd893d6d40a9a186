package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSender struct {
	titles []string
	err    error
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingSender) Name() string { return "recording" }

func TestNotifierForwardsAllowedEvents(t *testing.T) {
	s := &recordingSender{}
	n := NewNotifier([]Sender{s}, []string{"trade_selected"}, slog.New(slog.DiscardHandler))

	n.Notify(context.Background(), "trade_selected", "YES @ 0.62")
	n.Notify(context.Background(), "market_idea", "dropped")

	assert.Equal(t, []string{"Trade selected"}, s.titles)
}

func TestNotifierEmptyFilterForwardsEverything(t *testing.T) {
	s := &recordingSender{}
	n := NewNotifier([]Sender{s}, nil, slog.New(slog.DiscardHandler))

	n.Notify(context.Background(), "pipeline_failed", "boom")
	n.Notify(context.Background(), "custom_event", "no canned title")

	assert.Equal(t, []string{"Pipeline failed", "custom_event"}, s.titles)
}

func TestNotifierSwallowsSenderErrors(t *testing.T) {
	bad := &recordingSender{err: errors.New("webhook down")}
	good := &recordingSender{}
	n := NewNotifier([]Sender{bad, good}, nil, slog.New(slog.DiscardHandler))

	n.Notify(context.Background(), "trade_selected", "msg")

	assert.Len(t, bad.titles, 1)
	assert.Len(t, good.titles, 1)
}
