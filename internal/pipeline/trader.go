package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
)

const opOneBestTrade = "one_best_trade"

// Trader runs one_best_trade: evaluate every live event, narrow down to one
// market, and select a position in it.
type Trader struct {
	events   EventSource
	agent    Reasoner
	executor OrderExecutor
	index    CandidateIndex // may be nil when no local index is configured
	history  *history.Recorder
	notifier Notifier // may be nil
	cfg      Config
	logger   *slog.Logger
}

// NewTrader creates a trading pipeline. index and notifier are optional.
func NewTrader(
	events EventSource,
	agent Reasoner,
	executor OrderExecutor,
	index CandidateIndex,
	recorder *history.Recorder,
	notifier Notifier,
	cfg Config,
	logger *slog.Logger,
) *Trader {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Trader{
		events:   events,
		agent:    agent,
		executor: executor,
		index:    index,
		history:  recorder,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "trader")),
	}
}

// OneBestTrade runs the full pipeline. A run that ends with no candidate
// market is a terminal outcome, recorded once and not retried. A run that
// fails on a collaborator error is recorded and restarted from the fetch
// stage, up to MaxAttempts times with doubling backoff. The outcome is
// visible through the audit history; the return value only reports whether
// the run itself could proceed.
func (t *Trader) OneBestTrade(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= t.cfg.MaxAttempts; attempt++ {
		done, err := t.runOnce(ctx)
		if done {
			return nil
		}
		lastErr = err

		t.logger.Error("trade run failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt == t.cfg.MaxAttempts {
			break
		}
		t.history.LogTradeOperation(ctx, history.TradeOperation{
			OperationType: opOneBestTrade,
			Success:       false,
			Error:         err.Error(),
		})

		delay := backoffFor(t.cfg.RetryBackoff, attempt)
		t.logger.Info("retrying trade run", slog.Duration("backoff", delay))
		if !wait(ctx, delay) {
			return ctx.Err()
		}
	}

	terminal := fmt.Sprintf("giving up after %d attempts: %s", t.cfg.MaxAttempts, lastErr)
	t.logger.Error("trade run exhausted retries", slog.String("error", terminal))
	t.history.LogTradeOperation(ctx, history.TradeOperation{
		OperationType: opOneBestTrade,
		Success:       false,
		Error:         terminal,
	})
	t.notify(ctx, "pipeline_failed", terminal)
	return nil
}

// runOnce performs a single pass through the stages. It reports done=true
// for both terminal outcomes, a selected trade and an empty candidate set.
func (t *Trader) runOnce(ctx context.Context) (done bool, err error) {
	t.clearIndex(ctx)

	events, err := t.events.GetAllTradeableEvents(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch events: %w", err)
	}
	counts := history.RunCounts{Events: len(events)}
	t.logger.Info("1. FOUND EVENTS", slog.Int("count", counts.Events))

	filteredEvents, err := t.agent.FilterEventsByRelevance(ctx, events)
	if err != nil {
		return false, fmt.Errorf("filter events: %w", err)
	}
	counts.FilteredEvents = len(filteredEvents)
	t.logger.Info("2. FILTERED EVENTS", slog.Int("count", counts.FilteredEvents))

	markets := t.agent.MapEventsToMarkets(filteredEvents)
	counts.Markets = len(markets)
	t.logger.Info("3. FOUND MARKETS", slog.Int("count", counts.Markets))

	filteredMarkets, err := t.agent.FilterMarketsByQuality(ctx, markets)
	if err != nil {
		return false, fmt.Errorf("filter markets: %w", err)
	}
	counts.FilteredMarkets = len(filteredMarkets)
	t.logger.Info("4. FILTERED MARKETS", slog.Int("count", counts.FilteredMarkets))

	if len(filteredMarkets) == 0 {
		t.logger.Warn("no markets found after filtering")
		t.history.LogTradeOperation(ctx, history.TradeOperation{
			OperationType: opOneBestTrade,
			Counts:        &counts,
			Success:       false,
			Error:         "No markets found after filtering",
		})
		return true, nil
	}

	market := filteredMarkets[0]
	decision, err := t.agent.SelectBestTrade(ctx, market)
	if err != nil {
		return false, fmt.Errorf("select trade: %w", err)
	}
	t.logger.Info("5. CALCULATED TRADE",
		slog.String("market_id", market.ID),
		slog.String("outcome", decision.Outcome),
		slog.String("side", decision.Side),
		slog.Float64("price", decision.Price))

	amount := decision.Size * t.cfg.TradeSize

	if t.cfg.AutoExecute {
		fill, err := t.executor.Execute(ctx, market, decision, amount)
		if err != nil {
			return false, fmt.Errorf("execute trade: %w", err)
		}
		t.logger.Info("6. TRADED", slog.String("fill", fill))
	} else {
		t.logger.Info("auto-execute disabled, trade not placed")
	}

	t.history.LogTradeOperation(ctx, history.TradeOperation{
		OperationType: opOneBestTrade,
		MarketID:      market.ID,
		MarketData:    market,
		TradeData:     decision,
		Counts:        &counts,
		BestTrade:     fmt.Sprintf("%s %s @ %.3f", decision.Side, decision.Outcome, decision.Price),
		Amount:        amount,
		Success:       true,
	})
	t.notify(ctx, "trade_selected",
		fmt.Sprintf("%s: %s %s @ %.3f for %.2f USDC", market.Question,
			decision.Side, decision.Outcome, decision.Price, amount))
	return true, nil
}

// clearIndex drops the local candidate index so the run starts from a fresh
// snapshot. Failures are logged and ignored, the run can proceed without it.
func (t *Trader) clearIndex(ctx context.Context) {
	if t.index == nil {
		return
	}
	if err := t.index.Clear(ctx); err != nil {
		t.logger.Warn("failed to clear candidate index", slog.String("error", err.Error()))
		return
	}
	t.logger.Info("cleared candidate index")
}

func (t *Trader) notify(ctx context.Context, event, message string) {
	if t.notifier == nil {
		return
	}
	t.notifier.Notify(ctx, event, message)
}

var _ OrderExecutor = (DryRunExecutor{})

// DryRunExecutor logs the would-be order instead of placing it.
type DryRunExecutor struct {
	Logger *slog.Logger
}

// Execute reports a simulated fill without touching the venue.
func (e DryRunExecutor) Execute(ctx context.Context, market domain.Market, decision domain.TradeDecision, amount float64) (string, error) {
	fill := fmt.Sprintf("dry-run: %s %s @ %.3f for %.2f USDC on %s",
		decision.Side, decision.Outcome, decision.Price, amount, market.ID)
	if e.Logger != nil {
		e.Logger.Info("dry-run execution", slog.String("fill", fill))
	}
	return fill, nil
}
