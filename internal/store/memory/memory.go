// Package memory implements domain.RecordStore with an in-process map. It
// honors the same contract as the PostgreSQL-backed store (timestamp
// injection, timestamp ordering, silent degradation when disabled) and is
// used by tests and by hosts that run without a database.
package memory

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

type entry struct {
	id  string
	ts  time.Time
	doc domain.Document
}

// Store is an in-memory domain.RecordStore. The zero value is not usable;
// construct with New.
type Store struct {
	mu          sync.Mutex
	collections map[string][]entry
	disabled    bool
}

// New returns an empty connected Store.
func New() *Store {
	return &Store{collections: make(map[string][]entry)}
}

// SetDisabled toggles the disabled state, mimicking a lost database
// connection.
func (s *Store) SetDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled = disabled
}

// IsConnected reports whether the store accepts operations.
func (s *Store) IsConnected(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disabled
}

// InsertOne appends doc to the named collection, injecting a "timestamp"
// field if the caller omitted one.
func (s *Store) InsertOne(ctx context.Context, collection string, doc domain.Document) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return "", false
	}
	id := s.insertLocked(collection, doc)
	return id, true
}

// InsertMany appends all docs to the named collection.
func (s *Store) InsertMany(ctx context.Context, collection string, docs []domain.Document) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return nil, false
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, s.insertLocked(collection, doc))
	}
	return ids, true
}

func (s *Store) insertLocked(collection string, doc domain.Document) string {
	stored := make(domain.Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}

	ts := time.Now().UTC()
	if v, present := stored["timestamp"]; present {
		if t, isTime := v.(time.Time); isTime {
			ts = t.UTC()
		}
	} else {
		stored["timestamp"] = ts
	}

	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], entry{id: id, ts: ts, doc: stored})
	return id
}

// Find returns documents matching filter, ordered and limited per opts.
func (s *Store) Find(ctx context.Context, collection string, filter domain.Document, opts domain.QueryOpts) []domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return nil
	}

	var matched []entry
	for _, e := range s.collections[collection] {
		if matches(e.doc, filter) {
			matched = append(matched, e)
		}
	}

	switch opts.Sort {
	case domain.SortTimestampDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].ts.After(matched[j].ts) })
	case domain.SortTimestampAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].ts.Before(matched[j].ts) })
	}

	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	docs := make([]domain.Document, 0, len(matched))
	for _, e := range matched {
		docs = append(docs, e.doc)
	}
	return docs
}

// FindOne returns the first document matching filter, or nil.
func (s *Store) FindOne(ctx context.Context, collection string, filter domain.Document) domain.Document {
	docs := s.Find(ctx, collection, filter, domain.QueryOpts{Limit: 1})
	if len(docs) == 0 {
		return nil
	}
	return docs[0]
}

// UpdateOne merges update into the most recent matching document and stamps
// it with "updated_at".
func (s *Store) UpdateOne(ctx context.Context, collection string, filter domain.Document, update domain.Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return false
	}

	entries := s.collections[collection]
	best := -1
	for i, e := range entries {
		if !matches(e.doc, filter) {
			continue
		}
		if best < 0 || e.ts.After(entries[best].ts) {
			best = i
		}
	}
	if best < 0 {
		return false
	}

	for k, v := range update {
		entries[best].doc[k] = v
	}
	entries[best].doc["updated_at"] = time.Now().UTC()
	return true
}

// Close marks the store disabled.
func (s *Store) Close() {
	s.SetDisabled(true)
}

// Count returns the number of documents in a collection. Test helper.
func (s *Store) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

// matches reports whether every filter field equals the corresponding
// document field. A nil or empty filter matches everything.
func matches(doc, filter domain.Document) bool {
	for k, want := range filter {
		got, present := doc[k]
		if !present || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// Compile-time interface check.
var _ domain.RecordStore = (*Store)(nil)
