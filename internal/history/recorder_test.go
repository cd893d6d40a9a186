package history

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/store/memory"
)

func newTestRecorder() (*Recorder, *memory.Store) {
	store := memory.New()
	return NewRecorder(store, slog.New(slog.DiscardHandler)), store
}

func TestLogTradeOperationFailureShape(t *testing.T) {
	rec, store := newTestRecorder()
	ctx := context.Background()

	id := rec.LogTradeOperation(ctx, TradeOperation{
		OperationType: "one_best_trade",
		Counts: &RunCounts{
			Events:          10,
			FilteredEvents:  4,
			Markets:         9,
			FilteredMarkets: 0,
		},
		Success: false,
		Error:   "No markets found after filtering",
	})
	require.NotEmpty(t, id)

	docs := store.Find(ctx, CollectionTrades, nil, domain.QueryOpts{})
	require.Len(t, docs, 1)
	doc := docs[0]

	assert.Equal(t, "trade_operation", doc["type"])
	assert.Equal(t, "one_best_trade", doc["operation_type"])
	assert.Equal(t, false, doc["success"])
	assert.Equal(t, 10, doc["events_count"])
	assert.Equal(t, 4, doc["filtered_events_count"])
	assert.Equal(t, 9, doc["markets_count"])
	assert.Equal(t, 0, doc["filtered_markets_count"])
	assert.Equal(t, "No markets found after filtering", doc["error"])
	assert.Contains(t, doc, "timestamp")

	// Fields without values stay absent rather than being written as zero.
	assert.NotContains(t, doc, "market_id")
	assert.NotContains(t, doc, "best_trade")
	assert.NotContains(t, doc, "amount")
}

func TestLogTradeOperationSuccessNormalizesPayloads(t *testing.T) {
	rec, store := newTestRecorder()
	ctx := context.Background()

	market := domain.Market{ID: "m1", Question: "Will it rain?"}
	decision := domain.TradeDecision{MarketID: "m1", Outcome: "Yes", Side: "BUY", Price: 0.4, Size: 0.5}

	rec.LogTradeOperation(ctx, TradeOperation{
		OperationType: "one_best_trade",
		MarketID:      "m1",
		MarketData:    market,
		TradeData:     decision,
		Counts:        &RunCounts{Events: 1, FilteredEvents: 1, Markets: 1, FilteredMarkets: 1},
		BestTrade:     "BUY Yes @ 0.400",
		Amount:        2.5,
		Success:       true,
	})

	doc := store.FindOne(ctx, CollectionTrades, nil)
	require.NotNil(t, doc)
	assert.Equal(t, true, doc["success"])
	assert.Equal(t, "m1", doc["market_id"])
	assert.Equal(t, 2.5, doc["amount"])

	marketData, ok := doc["market_data"].(map[string]any)
	require.True(t, ok, "market_data should normalize to a map, got %T", doc["market_data"])
	assert.Equal(t, "Will it rain?", marketData["question"])

	tradeData, ok := doc["trade_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Yes", tradeData["outcome"])
}

func TestLogCLICommandErrorOnlyWhenPresent(t *testing.T) {
	rec, store := newTestRecorder()
	ctx := context.Background()

	rec.LogCLICommand(ctx, CLICommand{Command: "get-all-markets", Success: true})
	rec.LogCLICommand(ctx, CLICommand{Command: "get-all-markets", Success: false, Error: "boom"})

	docs := store.Find(ctx, CollectionCLI, nil, domain.QueryOpts{Sort: domain.SortTimestampAsc})
	require.Len(t, docs, 2)
	assert.NotContains(t, docs[0], "error")
	assert.Equal(t, "boom", docs[1]["error"])
	// Parameters default to an empty map, never nil.
	assert.Equal(t, map[string]any{}, docs[0]["parameters"])
}

func TestHistoryReturnsMostRecentFirst(t *testing.T) {
	rec, store := newTestRecorder()
	ctx := context.Background()

	t1 := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t2.Add(time.Minute)
	for i, ts := range []time.Time{t1, t2, t3} {
		_, ok := store.InsertOne(ctx, CollectionLLM, domain.Document{"n": i + 1, "timestamp": ts})
		require.True(t, ok)
	}

	docs := rec.History(ctx, CollectionLLM, 10, nil)
	require.Len(t, docs, 3)
	assert.Equal(t, 3, docs[0]["n"])
	assert.Equal(t, 2, docs[1]["n"])
	assert.Equal(t, 1, docs[2]["n"])

	limited := rec.History(ctx, CollectionLLM, 2, nil)
	require.Len(t, limited, 2)
	assert.Equal(t, 3, limited[0]["n"])
}

func TestRecorderOverDisabledStoreDropsSilently(t *testing.T) {
	rec, store := newTestRecorder()
	ctx := context.Background()
	store.SetDisabled(true)

	id := rec.LogNewsQuery(ctx, NewsQuery{Keywords: "rates", Success: true})
	assert.Empty(t, id)
	assert.False(t, rec.Connected(ctx))
	assert.Empty(t, rec.History(ctx, CollectionNewsQueries, 10, nil))
}

func TestMarketQuerySummaryCapped(t *testing.T) {
	rec, store := newTestRecorder()
	ctx := context.Background()

	markets := make([]domain.Market, 25)
	for i := range markets {
		markets[i] = domain.Market{ID: "m", Question: "q"}
	}
	rec.LogMarketQuery(ctx, MarketQuery{
		QueryType:    "get_all_markets",
		ResultsCount: len(markets),
		Markets:      markets,
		Success:      true,
	})

	doc := store.FindOne(ctx, CollectionMarketQueries, nil)
	require.NotNil(t, doc)
	assert.Equal(t, 25, doc["results_count"])
	summary, ok := doc["markets_summary"].([]map[string]any)
	require.True(t, ok, "markets_summary type %T", doc["markets_summary"])
	assert.Len(t, summary, 10)
}
