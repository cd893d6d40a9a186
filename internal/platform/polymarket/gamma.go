// Package polymarket provides the REST client for the Polymarket Gamma API,
// which is the agent's upstream data feed for event and market discovery.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// defaultPageSize is used when the caller does not configure one.
const defaultPageSize = 100

// GammaClient is the REST client for the Polymarket Gamma API.
type GammaClient struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string, pageSize int) *GammaClient {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return &GammaClient{
		baseURL:  baseURL,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetEvents returns one page of events.
func (g *GammaClient) GetEvents(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	body, err := g.doGet(ctx, "/events?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get events: %w", err)
	}

	var apiEvents []APIEvent
	if err := json.Unmarshal(body, &apiEvents); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode events: %w", err)
	}

	events := make([]domain.Event, 0, len(apiEvents))
	for i := range apiEvents {
		events = append(events, apiEvents[i].ToDomainEvent())
	}
	return events, nil
}

// GetAllEvents paginates through every event the Gamma API currently
// exposes.
func (g *GammaClient) GetAllEvents(ctx context.Context) ([]domain.Event, error) {
	var all []domain.Event
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("polymarket/gamma: %w", domain.ErrContextDone)
		}
		page, err := g.GetEvents(ctx, g.pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < g.pageSize {
			return all, nil
		}
		offset += g.pageSize
	}
}

// GetAllTradeableEvents returns every event currently open for trading. An
// empty result is valid and means there is simply nothing tradeable.
func (g *GammaClient) GetAllTradeableEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := g.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	return FilterEventsForTrading(events), nil
}

// GetMarkets returns one page of markets.
func (g *GammaClient) GetMarkets(ctx context.Context, limit, offset int) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		markets = append(markets, apiMarkets[i].ToDomainMarket())
	}
	return markets, nil
}

// GetAllMarkets paginates through every market the Gamma API currently
// exposes.
func (g *GammaClient) GetAllMarkets(ctx context.Context) ([]domain.Market, error) {
	var all []domain.Market
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("polymarket/gamma: %w", domain.ErrContextDone)
		}
		page, err := g.GetMarkets(ctx, g.pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < g.pageSize {
			return all, nil
		}
		offset += g.pageSize
	}
}

// GetTrendingMarkets returns up to limit tradeable markets sorted by
// 24-hour volume, highest first.
func (g *GammaClient) GetTrendingMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	markets, err := g.GetAllMarkets(ctx)
	if err != nil {
		return nil, err
	}
	markets = FilterMarketsForTrading(markets)
	sort.Slice(markets, func(i, j int) bool {
		return markets[i].Volume24h > markets[j].Volume24h
	})
	if limit > 0 && len(markets) > limit {
		markets = markets[:limit]
	}
	return markets, nil
}

// FilterEventsForTrading keeps only events that are open for trading.
func FilterEventsForTrading(events []domain.Event) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if e.Tradeable() {
			out = append(out, e)
		}
	}
	return out
}

// FilterMarketsForTrading keeps only markets that are open for trading.
func FilterMarketsForTrading(markets []domain.Market) []domain.Market {
	out := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if m.Tradeable() {
			out = append(out, m)
		}
	}
	return out
}

func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
