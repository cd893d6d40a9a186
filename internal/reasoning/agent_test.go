package reasoning

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// fakeBackend serves canned chat-completion replies.
func fakeBackend(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
			"usage": map[string]any{"total_tokens": 17},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestAgent(t *testing.T, reply string) *Agent {
	srv := fakeBackend(t, reply)
	t.Cleanup(srv.Close)
	llm := New(Config{BaseURL: srv.URL, ApiKey: "test-key", Model: "test-model", MaxTokens: 256})
	return NewAgent(llm, slog.New(slog.DiscardHandler))
}

func TestFilterEventsKeepsSelectedSubsetInOrder(t *testing.T) {
	agent := newTestAgent(t, `["e3","e1"]`)

	events := []domain.Event{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}
	kept, err := agent.FilterEventsByRelevance(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, "e1", kept[0].ID)
	assert.Equal(t, "e3", kept[1].ID)
}

func TestFilterToleratesMalformedReply(t *testing.T) {
	agent := newTestAgent(t, "I cannot answer that in the requested format.")

	events := []domain.Event{{ID: "e1"}, {ID: "e2"}}
	kept, err := agent.FilterEventsByRelevance(context.Background(), events)
	require.NoError(t, err)
	assert.Empty(t, kept)

	markets := []domain.Market{{ID: "m1"}}
	keptM, err := agent.FilterMarketsByQuality(context.Background(), markets)
	require.NoError(t, err)
	assert.Empty(t, keptM)
}

func TestFilterHandlesProseWrappedJSON(t *testing.T) {
	agent := newTestAgent(t, "Sure, here are the promising ones:\n```json\n[\"m2\"]\n```")

	markets := []domain.Market{{ID: "m1"}, {ID: "m2"}}
	kept, err := agent.FilterMarketsByQuality(context.Background(), markets)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "m2", kept[0].ID)
}

func TestFilterEmptyInputSkipsBackend(t *testing.T) {
	// No server: the call must not go out for empty input.
	llm := New(Config{BaseURL: "http://127.0.0.1:1", ApiKey: "k", Model: "m", MaxTokens: 1})
	agent := NewAgent(llm, slog.New(slog.DiscardHandler))

	kept, err := agent.FilterEventsByRelevance(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, kept)
}

func TestMapEventsToMarketsFlattens(t *testing.T) {
	agent := &Agent{}
	events := []domain.Event{
		{ID: "e1", Markets: []domain.Market{{ID: "m1"}, {ID: "m2"}}},
		{ID: "e2"},
		{ID: "e3", Markets: []domain.Market{{ID: "m3"}}},
	}
	markets := agent.MapEventsToMarkets(events)
	require.Len(t, markets, 3)
	assert.Equal(t, "m1", markets[0].ID)
	assert.Equal(t, "m3", markets[2].ID)
}

func TestSelectBestTradeParsesDecision(t *testing.T) {
	agent := newTestAgent(t, `{"outcome":"Yes","side":"BUY","price":0.42,"size":0.5,"rationale":"undervalued"}`)

	decision, err := agent.SelectBestTrade(context.Background(), domain.Market{ID: "m7", Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "m7", decision.MarketID)
	assert.Equal(t, "Yes", decision.Outcome)
	assert.Equal(t, "BUY", decision.Side)
	assert.Equal(t, 0.42, decision.Price)
	assert.Equal(t, 0.5, decision.Size)
}

func TestSelectBestTradeRejectsMalformedReply(t *testing.T) {
	agent := newTestAgent(t, "buy yes, trust me")

	_, err := agent.SelectBestTrade(context.Background(), domain.Market{ID: "m1"})
	require.Error(t, err)
}

func TestAskReturnsReplyAndUsage(t *testing.T) {
	agent := newTestAgent(t, "42")

	reply, err := agent.Ask(context.Background(), "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42", reply.Content)
	assert.Equal(t, 17, reply.TokensUsed)
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"plain array", `["a","b"]`, []string{"a", "b"}},
		{"numeric ids", `[101, 102]`, []string{"101", "102"}},
		{"wrapped in prose", "the ids are [\"x\"] as requested", []string{"x"}},
		{"no array", "none of these qualify", nil},
		{"not json", "[broken", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseIDList(tt.content)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			for _, id := range tt.want {
				assert.True(t, got[id], "missing id %s", id)
			}
			assert.Len(t, got, len(tt.want))
		})
	}
}
