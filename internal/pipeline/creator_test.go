package pipeline

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/store/memory"
)

func newCreatorHarness(events EventSource, agent Reasoner, cfg Config) (*Creator, *memory.Store) {
	store := memory.New()
	rec := history.NewRecorder(store, slog.New(slog.DiscardHandler))
	cr := NewCreator(events, agent, rec, nil, cfg, slog.New(slog.DiscardHandler))
	return cr, store
}

func TestOneBestMarketRecordsCountsAndIdea(t *testing.T) {
	src := &stubEvents{events: events(6)}
	agent := &stubReasoner{
		keepEvents:      3,
		marketsPerEvent: 2,
		keepMarkets:     4,
		idea:            "Will the ECB cut rates before July 2027?",
	}
	cr, store := newCreatorHarness(src, agent, Config{MaxAttempts: 3})

	idea, err := cr.OneBestMarket(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Will the ECB cut rates before July 2027?", idea)

	docs := store.Find(context.Background(), history.CollectionMarketCreation, nil, domain.QueryOpts{})
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, "market_creation", doc["type"])
	assert.Equal(t, true, doc["success"])
	assert.Equal(t, idea, doc["market_description"])
	assert.Equal(t, 6, doc["events_count"])
	assert.Equal(t, 3, doc["filtered_events_count"])
	assert.Equal(t, 6, doc["markets_count"])
	assert.Equal(t, 4, doc["filtered_markets_count"])
}

func TestOneBestMarketRetriesFromFetch(t *testing.T) {
	src := &stubEvents{events: events(2), failFirst: 1}
	agent := &stubReasoner{keepEvents: 2, marketsPerEvent: 1, keepMarkets: 2, idea: "idea"}
	cr, store := newCreatorHarness(src, agent, Config{MaxAttempts: 3})

	idea, err := cr.OneBestMarket(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "idea", idea)
	assert.Equal(t, 2, src.calls)

	docs := store.Find(context.Background(), history.CollectionMarketCreation, nil, domain.QueryOpts{Sort: domain.SortTimestampAsc})
	require.Len(t, docs, 2)
	assert.Equal(t, false, docs[0]["success"])
	assert.Equal(t, true, docs[1]["success"])
}

func TestOneBestMarketExhaustionIsTerminal(t *testing.T) {
	src := &stubEvents{failFirst: 100}
	cr, store := newCreatorHarness(src, &stubReasoner{}, Config{MaxAttempts: 2})

	idea, err := cr.OneBestMarket(context.Background())
	require.NoError(t, err)
	assert.Empty(t, idea)
	assert.Equal(t, 2, src.calls)

	docs := store.Find(context.Background(), history.CollectionMarketCreation, nil, domain.QueryOpts{Sort: domain.SortTimestampAsc})
	require.Len(t, docs, 2)
	assert.Contains(t, docs[1]["error"], "giving up after 2 attempts")
}

func TestBackoffDoubles(t *testing.T) {
	base := backoffFor(100, 1)
	assert.Equal(t, base*2, backoffFor(100, 2))
	assert.Equal(t, base*4, backoffFor(100, 3))
}
