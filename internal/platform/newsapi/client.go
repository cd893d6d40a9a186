// Package newsapi provides a minimal NewsAPI client used to pull recent
// articles for a keyword query.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// Client is the REST client for NewsAPI (https://newsapi.org).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a NewsAPI client. baseURL is the API root, e.g.
// "https://newsapi.org/v2".
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type everythingResponse struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	Articles []apiArticle `json:"articles"`
}

// EverythingByKeywords queries the "everything" endpoint for articles
// matching the given keyword string, most recent first.
func (c *Client) EverythingByKeywords(ctx context.Context, keywords string, limit int) ([]domain.Article, error) {
	params := url.Values{}
	params.Set("q", keywords)
	params.Set("sortBy", "publishedAt")
	if limit > 0 {
		params.Set("pageSize", fmt.Sprintf("%d", limit))
	}

	endpoint := c.baseURL + "/everything?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi: create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("newsapi: read response: %w", err)
	}

	var decoded everythingResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("newsapi: decode response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("newsapi: %w: %s", domain.ErrUnauthorized, decoded.Message)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("newsapi: %w: %s", domain.ErrRateLimited, decoded.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decoded.Status != "ok" {
		return nil, fmt.Errorf("newsapi: HTTP %d: %s", resp.StatusCode, decoded.Message)
	}

	articles := make([]domain.Article, 0, len(decoded.Articles))
	for _, a := range decoded.Articles {
		articles = append(articles, domain.Article{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
