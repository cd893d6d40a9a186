package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// Agent layers the agent's trading judgement on top of the chat client.
// Filter methods are tolerant of malformed model output: a reply that does
// not parse as a selection is treated as selecting nothing.
type Agent struct {
	llm    *Client
	logger *slog.Logger
}

// NewAgent creates a reasoning agent.
func NewAgent(llm *Client, logger *slog.Logger) *Agent {
	return &Agent{
		llm:    llm,
		logger: logger.With(slog.String("component", "reasoning")),
	}
}

// Model reports the underlying model name.
func (a *Agent) Model() string { return a.llm.Model() }

const filterEventsSystem = "You are a prediction market analyst. You will be shown " +
	"a list of live events. Reply with a JSON array containing the ids of the events " +
	"worth trading on, most promising first. Reply with the JSON array only."

// FilterEventsByRelevance asks the model which events are worth pursuing
// and returns the matching subset in input order.
func (a *Agent) FilterEventsByRelevance(ctx context.Context, events []domain.Event) ([]domain.Event, error) {
	if len(events) == 0 {
		return []domain.Event{}, nil
	}

	var sb strings.Builder
	for _, e := range events {
		fmt.Fprintf(&sb, "id=%s title=%q volume=%.0f\n", e.ID, e.Title, e.Volume)
	}

	reply, err := a.llm.Complete(ctx, filterEventsSystem, sb.String())
	if err != nil {
		return nil, fmt.Errorf("reasoning: filter events: %w", err)
	}

	ids := parseIDList(reply.Content)
	if ids == nil {
		a.logger.Warn("event filter reply did not parse as a selection, keeping none",
			slog.Int("events", len(events)))
		return []domain.Event{}, nil
	}

	kept := make([]domain.Event, 0, len(ids))
	for _, e := range events {
		if ids[e.ID] {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// MapEventsToMarkets expands events into their listed markets.
func (a *Agent) MapEventsToMarkets(events []domain.Event) []domain.Market {
	markets := make([]domain.Market, 0, len(events))
	for _, e := range events {
		markets = append(markets, e.Markets...)
	}
	return markets
}

const filterMarketsSystem = "You are a prediction market analyst. You will be shown " +
	"a list of markets. Reply with a JSON array containing the ids of the markets with " +
	"a plausible mispricing worth taking a position in. Reply with the JSON array only."

// FilterMarketsByQuality asks the model which markets look mispriced and
// returns the matching subset in input order.
func (a *Agent) FilterMarketsByQuality(ctx context.Context, markets []domain.Market) ([]domain.Market, error) {
	if len(markets) == 0 {
		return []domain.Market{}, nil
	}

	var sb strings.Builder
	for _, m := range markets {
		fmt.Fprintf(&sb, "id=%s question=%q outcomes=%v prices=%v spread=%.3f\n",
			m.ID, m.Question, m.Outcomes, m.OutcomePrices, m.Spread)
	}

	reply, err := a.llm.Complete(ctx, filterMarketsSystem, sb.String())
	if err != nil {
		return nil, fmt.Errorf("reasoning: filter markets: %w", err)
	}

	ids := parseIDList(reply.Content)
	if ids == nil {
		a.logger.Warn("market filter reply did not parse as a selection, keeping none",
			slog.Int("markets", len(markets)))
		return []domain.Market{}, nil
	}

	kept := make([]domain.Market, 0, len(ids))
	for _, m := range markets {
		if ids[m.ID] {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

const selectTradeSystem = "You are a prediction market trader. Given a single market, " +
	"decide the best position to take. Reply with a JSON object only, with keys " +
	"\"outcome\" (string), \"side\" (\"BUY\" or \"SELL\"), \"price\" (number between 0 and 1), " +
	"\"size\" (fraction of bankroll between 0 and 1), and \"rationale\" (string)."

// SelectBestTrade asks the model for a concrete position in the given market.
func (a *Agent) SelectBestTrade(ctx context.Context, market domain.Market) (domain.TradeDecision, error) {
	user := fmt.Sprintf("id=%s question=%q description=%q outcomes=%v prices=%v",
		market.ID, market.Question, market.Description, market.Outcomes, market.OutcomePrices)

	reply, err := a.llm.Complete(ctx, selectTradeSystem, user)
	if err != nil {
		return domain.TradeDecision{}, fmt.Errorf("reasoning: select trade: %w", err)
	}

	var decision domain.TradeDecision
	if err := json.Unmarshal([]byte(extractJSON(reply.Content, '{', '}')), &decision); err != nil {
		return domain.TradeDecision{}, fmt.Errorf("reasoning: parse trade decision: %w", err)
	}
	decision.MarketID = market.ID
	return decision, nil
}

const selectMarketIdeaSystem = "You are a prediction market designer. Given the markets " +
	"already listed, propose one new market that is not yet covered, with a clear " +
	"resolution criterion and date. Reply with the proposal as plain text."

// SelectBestMarketIdea asks the model for a new market proposal informed by
// what already trades.
func (a *Agent) SelectBestMarketIdea(ctx context.Context, markets []domain.Market) (string, error) {
	var sb strings.Builder
	for _, m := range markets {
		fmt.Fprintf(&sb, "question=%q\n", m.Question)
	}

	reply, err := a.llm.Complete(ctx, selectMarketIdeaSystem, sb.String())
	if err != nil {
		return "", fmt.Errorf("reasoning: select market idea: %w", err)
	}
	return strings.TrimSpace(reply.Content), nil
}

// Ask answers a free-form question with no market context.
func (a *Agent) Ask(ctx context.Context, question string) (Reply, error) {
	reply, err := a.llm.Complete(ctx,
		"You are a helpful assistant with expertise in prediction markets.", question)
	if err != nil {
		return Reply{}, fmt.Errorf("reasoning: ask: %w", err)
	}
	return reply, nil
}

// AskWithMarketContext answers a question grounded in the given markets.
func (a *Agent) AskWithMarketContext(ctx context.Context, question string, markets []domain.Market) (Reply, error) {
	var sb strings.Builder
	sb.WriteString("Current markets:\n")
	for _, m := range markets {
		fmt.Fprintf(&sb, "question=%q outcomes=%v prices=%v\n", m.Question, m.Outcomes, m.OutcomePrices)
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)

	reply, err := a.llm.Complete(ctx,
		"You are a prediction market analyst. Answer using the provided market data.", sb.String())
	if err != nil {
		return Reply{}, fmt.Errorf("reasoning: ask with market context: %w", err)
	}
	return reply, nil
}

// Superforecast produces a calibrated probability estimate for one outcome
// of one market.
func (a *Agent) Superforecast(ctx context.Context, event, market, outcome string) (Reply, error) {
	user := fmt.Sprintf("Event: %s\nMarket question: %s\nOutcome: %s\n\n"+
		"Give your probability estimate for this outcome and the reasoning behind it.",
		event, market, outcome)

	reply, err := a.llm.Complete(ctx,
		"You are a superforecaster. Reason step by step from base rates and current "+
			"evidence, then state a final probability.", user)
	if err != nil {
		return Reply{}, fmt.Errorf("reasoning: superforecast: %w", err)
	}
	return reply, nil
}

// parseIDList extracts a JSON array of ids from a model reply. Returns nil
// when the reply contains no parseable array. Numeric ids are accepted and
// rendered without an exponent.
func parseIDList(content string) map[string]bool {
	raw := extractJSON(content, '[', ']')
	if raw == "" {
		return nil
	}

	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}

	ids := make(map[string]bool, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			ids[v] = true
		case float64:
			ids[fmt.Sprintf("%.0f", v)] = true
		}
	}
	return ids
}

// extractJSON returns the outermost open..close span in content, or "" when
// absent. Handles replies that wrap JSON in prose or code fences.
func extractJSON(content string, open, close byte) string {
	start := strings.IndexByte(content, open)
	end := strings.LastIndexByte(content, close)
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}
