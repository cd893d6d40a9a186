package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
)

// Creator runs one_best_market: survey what already trades and propose a
// single new market worth listing.
type Creator struct {
	events   EventSource
	agent    Reasoner
	history  *history.Recorder
	notifier Notifier // may be nil
	cfg      Config
	logger   *slog.Logger
}

// NewCreator creates a market-creation pipeline. notifier is optional.
func NewCreator(
	events EventSource,
	agent Reasoner,
	recorder *history.Recorder,
	notifier Notifier,
	cfg Config,
	logger *slog.Logger,
) *Creator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Creator{
		events:   events,
		agent:    agent,
		history:  recorder,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "creator")),
	}
}

// OneBestMarket runs the full pipeline and returns the proposed market
// description. Collaborator failures are recorded and restarted from the
// fetch stage, up to MaxAttempts times with doubling backoff. An empty
// candidate set is not terminal here: a proposal can still be formed from an
// empty coverage list.
func (c *Creator) OneBestMarket(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		idea, err := c.runOnce(ctx)
		if err == nil {
			return idea, nil
		}
		lastErr = err

		c.logger.Error("market creation run failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt == c.cfg.MaxAttempts {
			break
		}
		c.history.LogMarketCreation(ctx, history.MarketCreation{
			Success: false,
			Error:   err.Error(),
		})

		delay := backoffFor(c.cfg.RetryBackoff, attempt)
		c.logger.Info("retrying market creation run", slog.Duration("backoff", delay))
		if !wait(ctx, delay) {
			return "", ctx.Err()
		}
	}

	terminal := fmt.Sprintf("giving up after %d attempts: %s", c.cfg.MaxAttempts, lastErr)
	c.logger.Error("market creation run exhausted retries", slog.String("error", terminal))
	c.history.LogMarketCreation(ctx, history.MarketCreation{
		Success: false,
		Error:   terminal,
	})
	c.notify(ctx, "pipeline_failed", terminal)
	return "", nil
}

func (c *Creator) runOnce(ctx context.Context) (string, error) {
	events, err := c.events.GetAllTradeableEvents(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch events: %w", err)
	}
	counts := history.RunCounts{Events: len(events)}
	c.logger.Info("1. FOUND EVENTS", slog.Int("count", counts.Events))

	filteredEvents, err := c.agent.FilterEventsByRelevance(ctx, events)
	if err != nil {
		return "", fmt.Errorf("filter events: %w", err)
	}
	counts.FilteredEvents = len(filteredEvents)
	c.logger.Info("2. FILTERED EVENTS", slog.Int("count", counts.FilteredEvents))

	markets := c.agent.MapEventsToMarkets(filteredEvents)
	counts.Markets = len(markets)
	c.logger.Info("3. FOUND MARKETS", slog.Int("count", counts.Markets))

	filteredMarkets, err := c.agent.FilterMarketsByQuality(ctx, markets)
	if err != nil {
		return "", fmt.Errorf("filter markets: %w", err)
	}
	counts.FilteredMarkets = len(filteredMarkets)
	c.logger.Info("4. FILTERED MARKETS", slog.Int("count", counts.FilteredMarkets))

	idea, err := c.agent.SelectBestMarketIdea(ctx, filteredMarkets)
	if err != nil {
		return "", fmt.Errorf("select market idea: %w", err)
	}
	c.logger.Info("5. IDEA FOR NEW MARKET", slog.String("idea", idea))

	c.history.LogMarketCreation(ctx, history.MarketCreation{
		MarketDescription: idea,
		Counts:            &counts,
		Success:           true,
	})
	c.notify(ctx, "market_idea", idea)
	return idea, nil
}

func (c *Creator) notify(ctx context.Context, event, message string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, event, message)
}
