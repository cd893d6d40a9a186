package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

const docTTL = 24 * time.Hour

// Default index names used by the CLI and the trading pipeline.
const (
	EventsIndex  = "events"
	MarketsIndex = "markets"
)

// Doc is one indexed document.
type Doc struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Title string  `json:"title"`
	Text  string  `json:"text"`
	Score float64 `json:"score,omitempty"`
}

// Index is a keyword index over one logical collection of documents.
//
// Key schema:
//
//	rag:{name}:doc:{id} - hash with field "data" containing JSON
//	rag:{name}:ids      - set of document IDs in the index
type Index struct {
	rdb  *redis.Client
	name string
}

// NewIndex creates an index with the given name backed by the client.
func NewIndex(c *Client, name string) *Index {
	return &Index{rdb: c.rdb, name: name}
}

// Name reports the index name, for audit records.
func (ix *Index) Name() string { return ix.name }

func (ix *Index) docKey(id string) string { return "rag:" + ix.name + ":doc:" + id }
func (ix *Index) idsKey() string          { return "rag:" + ix.name + ":ids" }

// AddEvents indexes events by title and description.
func (ix *Index) AddEvents(ctx context.Context, events []domain.Event) (int, error) {
	docs := make([]Doc, 0, len(events))
	for _, e := range events {
		docs = append(docs, Doc{
			ID:    e.ID,
			Kind:  "event",
			Title: e.Title,
			Text:  strings.ToLower(e.Title + " " + e.Description),
		})
	}
	return len(docs), ix.add(ctx, docs)
}

// AddMarkets indexes markets by question and description.
func (ix *Index) AddMarkets(ctx context.Context, markets []domain.Market) (int, error) {
	docs := make([]Doc, 0, len(markets))
	for _, m := range markets {
		docs = append(docs, Doc{
			ID:    m.ID,
			Kind:  "market",
			Title: m.Question,
			Text:  strings.ToLower(m.Question + " " + m.Description),
		})
	}
	return len(docs), ix.add(ctx, docs)
}

func (ix *Index) add(ctx context.Context, docs []Doc) error {
	if len(docs) == 0 {
		return nil
	}

	pipe := ix.rdb.TxPipeline()
	for _, d := range docs {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("rag: marshal doc %s: %w", d.ID, err)
		}
		key := ix.docKey(d.ID)
		pipe.HSet(ctx, key, "data", data)
		pipe.Expire(ctx, key, docTTL)
		pipe.SAdd(ctx, ix.idsKey(), d.ID)
	}
	pipe.Expire(ctx, ix.idsKey(), docTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rag: index %s: add %d docs: %w", ix.name, len(docs), err)
	}
	return nil
}

// Query scores every indexed document against the query terms and returns
// the top limit matches, best first. Documents sharing no term with the
// query are omitted.
func (ix *Index) Query(ctx context.Context, query string, limit int) ([]Doc, error) {
	ids, err := ix.rdb.SMembers(ctx, ix.idsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("rag: index %s: list ids: %w", ix.name, err)
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || len(ids) == 0 {
		return []Doc{}, nil
	}

	matches := make([]Doc, 0, len(ids))
	for _, id := range ids {
		data, err := ix.rdb.HGet(ctx, ix.docKey(id), "data").Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // doc expired, set entry is stale
			}
			return nil, fmt.Errorf("rag: index %s: get doc %s: %w", ix.name, id, err)
		}

		var d Doc
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("rag: index %s: unmarshal doc %s: %w", ix.name, id, err)
		}

		hits := 0
		for _, t := range terms {
			if strings.Contains(d.Text, t) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		d.Score = float64(hits) / float64(len(terms))
		matches = append(matches, d)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Clear drops every document in the index. Used before a trading run so the
// run starts from a fresh snapshot of the venue.
func (ix *Index) Clear(ctx context.Context) error {
	ids, err := ix.rdb.SMembers(ctx, ix.idsKey()).Result()
	if err != nil {
		return fmt.Errorf("rag: index %s: list ids: %w", ix.name, err)
	}

	pipe := ix.rdb.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, ix.docKey(id))
	}
	pipe.Del(ctx, ix.idsKey())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rag: index %s: clear: %w", ix.name, err)
	}
	return nil
}

// Size reports the number of documents currently indexed.
func (ix *Index) Size(ctx context.Context) (int, error) {
	n, err := ix.rdb.SCard(ctx, ix.idsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("rag: index %s: size: %w", ix.name, err)
	}
	return int(n), nil
}
