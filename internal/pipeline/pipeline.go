// Package pipeline implements the agent's decision runs: one_best_trade
// evaluates the live venue and selects a single position, one_best_market
// proposes a single new market. Both runs move through the same stages,
// fetch, filter, map, filter, decide, and every run leaves a record in the
// audit history whether it succeeds, comes up empty, or fails.
package pipeline

import (
	"context"
	"time"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// EventSource supplies the live events a run starts from.
type EventSource interface {
	GetAllTradeableEvents(ctx context.Context) ([]domain.Event, error)
}

// Reasoner makes the judgement calls between stages.
type Reasoner interface {
	FilterEventsByRelevance(ctx context.Context, events []domain.Event) ([]domain.Event, error)
	MapEventsToMarkets(events []domain.Event) []domain.Market
	FilterMarketsByQuality(ctx context.Context, markets []domain.Market) ([]domain.Market, error)
	SelectBestTrade(ctx context.Context, market domain.Market) (domain.TradeDecision, error)
	SelectBestMarketIdea(ctx context.Context, markets []domain.Market) (string, error)
}

// OrderExecutor places the selected trade.
type OrderExecutor interface {
	Execute(ctx context.Context, market domain.Market, decision domain.TradeDecision, amount float64) (string, error)
}

// CandidateIndex is the local retrieval index cleared before a trading run.
type CandidateIndex interface {
	Clear(ctx context.Context) error
}

// Notifier pushes run outcomes to external channels. Implementations must
// tolerate being called with any event name.
type Notifier interface {
	Notify(ctx context.Context, event, message string)
}

// Config holds the run parameters shared by both pipelines.
type Config struct {
	// AutoExecute places the selected trade for real. Off by default, see
	// polymarket.com/tos before enabling.
	AutoExecute bool

	// TradeSize is the bankroll in USDC a full-size decision commits.
	TradeSize float64

	// MaxAttempts bounds how many times a run is restarted from the fetch
	// stage after a collaborator failure.
	MaxAttempts int

	// RetryBackoff is the wait before the second attempt. It doubles on
	// each further attempt.
	RetryBackoff time.Duration
}

// backoffFor returns the wait before the given retry. attempt is the number
// of the attempt that just failed, starting at 1.
func backoffFor(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// wait sleeps for d or until ctx is done, reporting false on cancellation.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
