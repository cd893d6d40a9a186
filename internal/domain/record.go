package domain

import "context"

// Document is a single schemaless record as stored in a logical collection.
// Values must be JSON-serializable; the history recorder normalizes payloads
// before handing them to a RecordStore.
type Document map[string]any

// Sort selects the ordering applied to Find results.
type Sort int

const (
	SortNone Sort = iota
	SortTimestampDesc
	SortTimestampAsc
)

// QueryOpts provides limiting and ordering for Find queries.
type QueryOpts struct {
	Limit int
	Sort  Sort
}

// RecordStore is a document-oriented persistence abstraction over logical
// collections of JSON documents.
//
// Implementations degrade rather than fail: when the backing store is
// unreachable, writes report ok=false, reads return empty results, and no
// operation ever returns an error to the caller. Every inserted document
// receives a "timestamp" field at write time if the caller omitted one.
type RecordStore interface {
	// IsConnected reports whether the backing store is currently reachable.
	IsConnected(ctx context.Context) bool

	// InsertOne appends doc to the named collection and returns the new
	// document's ID. ok is false when the store is disabled or the write
	// failed; the ID is empty in that case.
	InsertOne(ctx context.Context, collection string, doc Document) (id string, ok bool)

	// InsertMany appends all docs to the named collection. ok is false and
	// ids is nil when the store is disabled or the write failed.
	InsertMany(ctx context.Context, collection string, docs []Document) (ids []string, ok bool)

	// Find returns documents matching filter (nil matches everything),
	// ordered and limited per opts. A disabled store returns an empty slice.
	Find(ctx context.Context, collection string, filter Document, opts QueryOpts) []Document

	// FindOne returns the first document matching filter, or nil when there
	// is no match or the store is disabled.
	FindOne(ctx context.Context, collection string, filter Document) Document

	// UpdateOne merges update into the first document matching filter and
	// stamps it with an "updated_at" field. It reports whether a document
	// was modified.
	UpdateOne(ctx context.Context, collection string, filter Document, update Document) bool

	// Close releases the underlying connection. Safe to call on a disabled
	// store.
	Close()
}
