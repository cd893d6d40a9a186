// Package history is the typed audit-log façade over the record store. Each
// pipeline-event category gets one logging method that assembles a
// normalized, timestamped document and appends it to a category-specific
// collection. Records are immutable once written; the store's update path is
// never applied to them.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// Logical collection names, one per event category. These are durable keys:
// renaming one orphans existing history.
const (
	CollectionCLI            = "cli_history"
	CollectionTrades         = "trade_history"
	CollectionMarketCreation = "market_creation_history"
	CollectionLLM            = "llm_history"
	CollectionMarketQueries  = "market_query_history"
	CollectionRAG            = "rag_history"
	CollectionNewsQueries    = "news_query_history"
)

// summaryLimit caps embedded result summaries so documents stay small.
const summaryLimit = 10

// RunCounts carries the per-stage counts of one pipeline run.
type RunCounts struct {
	Events          int
	FilteredEvents  int
	Markets         int
	FilteredMarkets int
}

// Recorder writes audit records through a domain.RecordStore. A Recorder
// over a disabled store silently drops records; logging must never fail the
// operation being logged.
type Recorder struct {
	store  domain.RecordStore
	logger *slog.Logger
}

// NewRecorder creates a Recorder over the given store.
func NewRecorder(store domain.RecordStore, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.With(slog.String("component", "history")),
	}
}

// CLICommand describes one command-surface invocation.
type CLICommand struct {
	Command    string
	Parameters map[string]any
	Result     any
	Success    bool
	Error      string
}

// LogCLICommand records a CLI command execution and returns the inserted
// record's ID, or empty when the record was not persisted.
func (r *Recorder) LogCLICommand(ctx context.Context, c CLICommand) string {
	params := c.Parameters
	if params == nil {
		params = map[string]any{}
	}
	doc := domain.Document{
		"type":       "cli_command",
		"command":    c.Command,
		"parameters": r.normalize(params),
		"success":    c.Success,
		"timestamp":  time.Now().UTC(),
	}
	if c.Result != nil {
		doc["result"] = r.normalize(c.Result)
	}
	if c.Error != "" {
		doc["error"] = c.Error
	}
	id, _ := r.store.InsertOne(ctx, CollectionCLI, doc)
	return id
}

// TradeOperation describes one trade-selection pipeline outcome.
type TradeOperation struct {
	OperationType string // e.g. "one_best_trade"
	MarketID      string
	MarketData    any
	TradeData     any
	Counts        *RunCounts
	BestTrade     string
	Amount        float64
	Success       bool
	Error         string
}

// LogTradeOperation records a trading operation.
func (r *Recorder) LogTradeOperation(ctx context.Context, op TradeOperation) string {
	doc := domain.Document{
		"type":           "trade_operation",
		"operation_type": op.OperationType,
		"success":        op.Success,
		"timestamp":      time.Now().UTC(),
	}
	if op.MarketID != "" {
		doc["market_id"] = op.MarketID
	}
	if op.Counts != nil {
		doc["events_count"] = op.Counts.Events
		doc["filtered_events_count"] = op.Counts.FilteredEvents
		doc["markets_count"] = op.Counts.Markets
		doc["filtered_markets_count"] = op.Counts.FilteredMarkets
	}
	if op.BestTrade != "" {
		doc["best_trade"] = op.BestTrade
	}
	if op.Amount != 0 {
		doc["amount"] = op.Amount
	}
	if op.MarketData != nil {
		doc["market_data"] = r.normalize(op.MarketData)
	}
	if op.TradeData != nil {
		doc["trade_data"] = r.normalize(op.TradeData)
	}
	if op.Error != "" {
		doc["error"] = op.Error
	}
	id, _ := r.store.InsertOne(ctx, CollectionTrades, doc)
	return id
}

// MarketCreation describes one market-creation pipeline outcome.
type MarketCreation struct {
	MarketDescription string
	Counts            *RunCounts
	Success           bool
	Error             string
}

// LogMarketCreation records a market creation attempt.
func (r *Recorder) LogMarketCreation(ctx context.Context, mc MarketCreation) string {
	doc := domain.Document{
		"type":      "market_creation",
		"success":   mc.Success,
		"timestamp": time.Now().UTC(),
	}
	if mc.MarketDescription != "" {
		doc["market_description"] = mc.MarketDescription
	}
	if mc.Counts != nil {
		doc["events_count"] = mc.Counts.Events
		doc["filtered_events_count"] = mc.Counts.FilteredEvents
		doc["markets_count"] = mc.Counts.Markets
		doc["filtered_markets_count"] = mc.Counts.FilteredMarkets
	}
	if mc.Error != "" {
		doc["error"] = mc.Error
	}
	id, _ := r.store.InsertOne(ctx, CollectionMarketCreation, doc)
	return id
}

// LLMQuery describes one reasoning-service call.
type LLMQuery struct {
	QueryType  string // e.g. "ask_llm", "ask_superforecaster"
	UserInput  string
	Response   string
	Model      string
	TokensUsed int
	Success    bool
	Error      string
}

// LogLLMQuery records a reasoning-service query.
func (r *Recorder) LogLLMQuery(ctx context.Context, q LLMQuery) string {
	doc := domain.Document{
		"type":       "llm_query",
		"query_type": q.QueryType,
		"user_input": q.UserInput,
		"success":    q.Success,
		"timestamp":  time.Now().UTC(),
	}
	if q.Response != "" {
		doc["response"] = q.Response
	}
	if q.Model != "" {
		doc["model"] = q.Model
	}
	if q.TokensUsed > 0 {
		doc["tokens_used"] = q.TokensUsed
	}
	if q.Error != "" {
		doc["error"] = q.Error
	}
	id, _ := r.store.InsertOne(ctx, CollectionLLM, doc)
	return id
}

// MarketQuery describes one data-feed query issued from the command surface.
type MarketQuery struct {
	QueryType    string // e.g. "get_all_markets", "get_trending_markets"
	Limit        int
	SortBy       string
	ResultsCount int
	Markets      []domain.Market
	Success      bool
	Error        string
}

// LogMarketQuery records a market query operation. Only a short summary of
// the returned markets is embedded to keep documents small.
func (r *Recorder) LogMarketQuery(ctx context.Context, q MarketQuery) string {
	doc := domain.Document{
		"type":       "market_query",
		"query_type": q.QueryType,
		"success":    q.Success,
		"timestamp":  time.Now().UTC(),
	}
	if q.Limit > 0 {
		doc["limit"] = q.Limit
	}
	if q.SortBy != "" {
		doc["sort_by"] = q.SortBy
	}
	doc["results_count"] = q.ResultsCount
	if len(q.Markets) > 0 {
		n := len(q.Markets)
		if n > summaryLimit {
			n = summaryLimit
		}
		summary := make([]map[string]any, 0, n)
		for _, m := range q.Markets[:n] {
			summary = append(summary, map[string]any{
				"id":       m.ID,
				"question": m.Question,
			})
		}
		doc["markets_summary"] = summary
	}
	if q.Error != "" {
		doc["error"] = q.Error
	}
	id, _ := r.store.InsertOne(ctx, CollectionMarketQueries, doc)
	return id
}

// RAGOperation describes one retrieval-index operation.
type RAGOperation struct {
	OperationType string // e.g. "build_local_index", "query_local_index"
	Query         string
	IndexName     string
	ResultsCount  int
	Success       bool
	Error         string
}

// LogRAGOperation records a retrieval-index operation.
func (r *Recorder) LogRAGOperation(ctx context.Context, op RAGOperation) string {
	doc := domain.Document{
		"type":           "rag_operation",
		"operation_type": op.OperationType,
		"success":        op.Success,
		"timestamp":      time.Now().UTC(),
	}
	if op.Query != "" {
		doc["query"] = op.Query
	}
	if op.IndexName != "" {
		doc["index_name"] = op.IndexName
	}
	doc["results_count"] = op.ResultsCount
	if op.Error != "" {
		doc["error"] = op.Error
	}
	id, _ := r.store.InsertOne(ctx, CollectionRAG, doc)
	return id
}

// NewsQuery describes one news-feed query.
type NewsQuery struct {
	Keywords      string
	ArticlesCount int
	Articles      []domain.Article
	Success       bool
	Error         string
}

// LogNewsQuery records a news query operation with a short article summary.
func (r *Recorder) LogNewsQuery(ctx context.Context, q NewsQuery) string {
	doc := domain.Document{
		"type":           "news_query",
		"keywords":       q.Keywords,
		"articles_count": q.ArticlesCount,
		"success":        q.Success,
		"timestamp":      time.Now().UTC(),
	}
	if len(q.Articles) > 0 {
		n := len(q.Articles)
		if n > summaryLimit {
			n = summaryLimit
		}
		summary := make([]map[string]any, 0, n)
		for _, a := range q.Articles[:n] {
			summary = append(summary, map[string]any{
				"title":  a.Title,
				"source": a.Source,
				"url":    a.URL,
			})
		}
		doc["articles_summary"] = summary
	}
	if q.Error != "" {
		doc["error"] = q.Error
	}
	id, _ := r.store.InsertOne(ctx, CollectionNewsQueries, doc)
	return id
}

// History retrieves up to limit records from a collection, most recent
// first. Most-recent-first is the only supported ordering.
func (r *Recorder) History(ctx context.Context, collection string, limit int, filter domain.Document) []domain.Document {
	return r.store.Find(ctx, collection, filter, domain.QueryOpts{
		Limit: limit,
		Sort:  domain.SortTimestampDesc,
	})
}

// Connected reports whether the underlying record store is reachable.
func (r *Recorder) Connected(ctx context.Context) bool {
	return r.store.IsConnected(ctx)
}

// Close releases the underlying record store.
func (r *Recorder) Close() {
	r.store.Close()
}

// normalize converts a payload to a storable form, falling back to the
// value's string representation if normalization panics on an exotic value.
func (r *Recorder) normalize(v any) (out any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("could not serialize payload, storing string form",
				slog.Any("panic", rec),
			)
			out = fmt.Sprint(v)
		}
	}()
	return Normalize(v)
}
