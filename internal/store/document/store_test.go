package document

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// newDisabledStore builds a store against an address nothing listens on.
// Construction must survive the failed connection.
func newDisabledStore(t *testing.T) *Store {
	t.Helper()
	return New(context.Background(), ClientConfig{
		Host:           "127.0.0.1",
		Port:           1,
		Database:       "test",
		User:           "test",
		ConnectTimeout: 500 * time.Millisecond,
	}, slog.New(slog.DiscardHandler))
}

func TestUnreachableDatabaseYieldsDisabledStore(t *testing.T) {
	s := newDisabledStore(t)
	require.NotNil(t, s)
	defer s.Close()

	ctx := context.Background()
	assert.False(t, s.IsConnected(ctx))
}

func TestDisabledStoreOperationsDegrade(t *testing.T) {
	s := newDisabledStore(t)
	defer s.Close()
	ctx := context.Background()

	id, ok := s.InsertOne(ctx, "trade_history", domain.Document{"type": "trade_operation"})
	assert.False(t, ok)
	assert.Empty(t, id)

	ids, ok := s.InsertMany(ctx, "trade_history", []domain.Document{{"a": 1}, {"b": 2}})
	assert.False(t, ok)
	assert.Empty(t, ids)

	assert.Empty(t, s.Find(ctx, "trade_history", nil, domain.QueryOpts{Limit: 10}))
	assert.Nil(t, s.FindOne(ctx, "trade_history", domain.Document{"type": "trade_operation"}))
	assert.False(t, s.UpdateOne(ctx, "trade_history", domain.Document{"a": 1}, domain.Document{"b": 2}))
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newDisabledStore(t)
	s.Close()
	s.Close()
}

func TestDSNBuilder(t *testing.T) {
	cfg := ClientConfig{
		Host:     "db.internal",
		Port:     5433,
		Database: "agent",
		User:     "u",
		Password: "p",
		SSLMode:  "require",
	}
	assert.Equal(t, "postgres://u:p@db.internal:5433/agent?sslmode=require", DSN(cfg))

	// Explicit DSN wins over discrete fields.
	cfg.DSN = "postgres://other"
	assert.Equal(t, "postgres://other", DSN(cfg))

	// Defaults fill in port and ssl mode.
	short := ClientConfig{Host: "h", Database: "d", User: "u"}
	assert.Equal(t, "postgres://u:@h:5432/d?sslmode=disable", DSN(short))
}
