package document

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// Store implements domain.RecordStore on a PostgreSQL JSONB table. A Store
// whose connection attempt failed stays usable in a disabled state: writes
// report ok=false and reads return empty results.
type Store struct {
	pool    *pgxpool.Pool // nil when disabled
	timeout time.Duration // liveness-check bound
	logger  *slog.Logger
}

// New eagerly connects to PostgreSQL and returns a Store. Connection failure
// does not produce an error; it is logged and the Store starts disabled so
// callers can proceed without persistence.
func New(ctx context.Context, cfg ClientConfig, logger *slog.Logger) *Store {
	logger = logger.With(slog.String("component", "record_store"))

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	s := &Store{timeout: timeout, logger: logger}

	pool, err := connect(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to record store", slog.String("error", err.Error()))
		logger.Warn("record store operations will be disabled")
		return s
	}

	if cfg.RunMigrations {
		if err := runMigrations(ctx, pool); err != nil {
			logger.Error("record store migrations failed", slog.String("error", err.Error()))
			logger.Warn("record store operations will be disabled")
			pool.Close()
			return s
		}
	}

	s.pool = pool
	logger.Info("connected to record store")
	return s
}

// IsConnected reports whether the backing database is currently reachable.
// Every write re-verifies liveness through this check before attempting the
// operation.
func (s *Store) IsConnected(ctx context.Context) bool {
	if s.pool == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.pool.Ping(ctx) == nil
}

// InsertOne appends doc to the named collection. The document receives a
// "timestamp" field if the caller omitted one. Returns the new document ID,
// or ok=false when the store is disabled or the write failed.
func (s *Store) InsertOne(ctx context.Context, collection string, doc domain.Document) (string, bool) {
	if !s.IsConnected(ctx) {
		logDisabled(s.logger, "insert_one", collection)
		return "", false
	}

	stamped, ts := withTimestamp(doc)

	data, err := json.Marshal(stamped)
	if err != nil {
		s.logger.Error("failed to serialize document",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return "", false
	}

	id := uuid.NewString()
	const query = `INSERT INTO history_documents (id, collection, doc, ts) VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, query, id, collection, data, ts); err != nil {
		s.logger.Error("failed to insert document",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return "", false
	}

	s.logger.Debug("inserted document",
		slog.String("collection", collection),
		slog.String("id", id),
	)
	return id, true
}

// InsertMany appends all docs to the named collection in one transaction.
// Each document receives a "timestamp" field if absent. Returns nil and
// ok=false when the store is disabled or any insert failed.
func (s *Store) InsertMany(ctx context.Context, collection string, docs []domain.Document) ([]string, bool) {
	if !s.IsConnected(ctx) {
		logDisabled(s.logger, "insert_many", collection)
		return nil, false
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.logger.Error("failed to begin insert transaction",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	const query = `INSERT INTO history_documents (id, collection, doc, ts) VALUES ($1, $2, $3, $4)`
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		stamped, ts := withTimestamp(doc)

		data, err := json.Marshal(stamped)
		if err != nil {
			_ = tx.Rollback(ctx)
			s.logger.Error("failed to serialize document",
				slog.String("collection", collection),
				slog.String("error", err.Error()),
			)
			return nil, false
		}

		id := uuid.NewString()
		if _, err := tx.Exec(ctx, query, id, collection, data, ts); err != nil {
			_ = tx.Rollback(ctx)
			s.logger.Error("failed to insert document",
				slog.String("collection", collection),
				slog.String("error", err.Error()),
			)
			return nil, false
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error("failed to commit inserts",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	s.logger.Debug("inserted documents",
		slog.String("collection", collection),
		slog.Int("count", len(ids)),
	)
	return ids, true
}

// Find returns documents matching filter (nil matches everything), ordered
// and limited per opts. A disabled store or a failed query returns an empty
// slice.
func (s *Store) Find(ctx context.Context, collection string, filter domain.Document, opts domain.QueryOpts) []domain.Document {
	if !s.IsConnected(ctx) {
		logDisabled(s.logger, "find", collection)
		return nil
	}

	filterJSON, err := json.Marshal(nonNil(filter))
	if err != nil {
		s.logger.Error("failed to serialize filter",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return nil
	}

	query := `SELECT doc FROM history_documents WHERE collection = $1 AND doc @> $2`
	switch opts.Sort {
	case domain.SortTimestampDesc:
		query += " ORDER BY ts DESC"
	case domain.SortTimestampAsc:
		query += " ORDER BY ts ASC"
	}
	args := []any{collection, filterJSON}
	if opts.Limit > 0 {
		query += " LIMIT $3"
		args = append(args, opts.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to query collection",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return nil
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			s.logger.Error("failed to scan document",
				slog.String("collection", collection),
				slog.String("error", err.Error()),
			)
			return nil
		}
		var doc domain.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.Error("failed to decode document",
				slog.String("collection", collection),
				slog.String("error", err.Error()),
			)
			return nil
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("failed to read query results",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return docs
}

// FindOne returns the first document matching filter, or nil when there is
// no match or the store is disabled.
func (s *Store) FindOne(ctx context.Context, collection string, filter domain.Document) domain.Document {
	docs := s.Find(ctx, collection, filter, domain.QueryOpts{Limit: 1})
	if len(docs) == 0 {
		return nil
	}
	return docs[0]
}

// UpdateOne merges update into the most recent document matching filter and
// stamps it with an "updated_at" field. It reports whether a document was
// modified.
func (s *Store) UpdateOne(ctx context.Context, collection string, filter domain.Document, update domain.Document) bool {
	if !s.IsConnected(ctx) {
		logDisabled(s.logger, "update_one", collection)
		return false
	}

	filterJSON, err := json.Marshal(nonNil(filter))
	if err != nil {
		s.logger.Error("failed to serialize filter",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return false
	}

	merged := make(domain.Document, len(update)+1)
	for k, v := range update {
		merged[k] = v
	}
	merged["updated_at"] = time.Now().UTC()

	updateJSON, err := json.Marshal(merged)
	if err != nil {
		s.logger.Error("failed to serialize update",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return false
	}

	const query = `
		UPDATE history_documents
		SET doc = doc || $3, updated_at = NOW()
		WHERE id = (
			SELECT id FROM history_documents
			WHERE collection = $1 AND doc @> $2
			ORDER BY ts DESC
			LIMIT 1
		)`
	tag, err := s.pool.Exec(ctx, query, collection, filterJSON, updateJSON)
	if err != nil {
		s.logger.Error("failed to update document",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		return false
	}
	return tag.RowsAffected() > 0
}

// Close shuts down the connection pool. Safe to call on a disabled store.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
		s.logger.Info("record store connection closed")
	}
}

// withTimestamp returns a shallow copy of doc carrying a "timestamp" field
// (added as now-UTC if the caller omitted one) together with the timestamp
// used for the indexed ts column.
func withTimestamp(doc domain.Document) (domain.Document, time.Time) {
	out := make(domain.Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}

	ts := time.Now().UTC()
	switch v := out["timestamp"].(type) {
	case time.Time:
		ts = v.UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			ts = t.UTC()
		}
	case nil:
		out["timestamp"] = ts
	}
	return out, ts
}

// nonNil substitutes an empty filter for nil so the containment query
// matches everything.
func nonNil(filter domain.Document) domain.Document {
	if filter == nil {
		return domain.Document{}
	}
	return filter
}

// Compile-time interface check.
var _ domain.RecordStore = (*Store)(nil)
