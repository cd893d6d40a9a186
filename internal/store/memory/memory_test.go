package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

func TestInsertInjectsTimestamp(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, ok := s.InsertOne(ctx, "c", domain.Document{"k": "v"})
	require.True(t, ok)
	require.NotEmpty(t, id)

	doc := s.FindOne(ctx, "c", domain.Document{"k": "v"})
	require.NotNil(t, doc)
	_, present := doc["timestamp"]
	assert.True(t, present)
}

func TestInsertKeepsCallerTimestamp(t *testing.T) {
	s := New()
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, ok := s.InsertOne(ctx, "c", domain.Document{"k": "v", "timestamp": ts})
	require.True(t, ok)

	doc := s.FindOne(ctx, "c", nil)
	assert.Equal(t, ts, doc["timestamp"])
}

func TestFindSortsByTimestamp(t *testing.T) {
	s := New()
	ctx := context.Background()

	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)
	for _, ts := range []time.Time{t1, t2, t3} {
		_, ok := s.InsertOne(ctx, "c", domain.Document{"timestamp": ts})
		require.True(t, ok)
	}

	desc := s.Find(ctx, "c", nil, domain.QueryOpts{Sort: domain.SortTimestampDesc})
	require.Len(t, desc, 3)
	assert.Equal(t, t3, desc[0]["timestamp"])
	assert.Equal(t, t2, desc[1]["timestamp"])
	assert.Equal(t, t1, desc[2]["timestamp"])

	asc := s.Find(ctx, "c", nil, domain.QueryOpts{Sort: domain.SortTimestampAsc, Limit: 2})
	require.Len(t, asc, 2)
	assert.Equal(t, t1, asc[0]["timestamp"])
}

func TestFindFiltersByEquality(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.InsertOne(ctx, "c", domain.Document{"type": "a", "n": 1})
	s.InsertOne(ctx, "c", domain.Document{"type": "b", "n": 2})

	docs := s.Find(ctx, "c", domain.Document{"type": "b"}, domain.QueryOpts{})
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0]["n"])
}

func TestUpdateOneMergesAndStamps(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.InsertOne(ctx, "c", domain.Document{"type": "a", "v": 1})
	ok := s.UpdateOne(ctx, "c", domain.Document{"type": "a"}, domain.Document{"v": 2})
	require.True(t, ok)

	doc := s.FindOne(ctx, "c", domain.Document{"type": "a"})
	assert.Equal(t, 2, doc["v"])
	_, stamped := doc["updated_at"]
	assert.True(t, stamped)

	assert.False(t, s.UpdateOne(ctx, "c", domain.Document{"type": "missing"}, domain.Document{"v": 3}))
}

func TestDisabledStoreDegradesSilently(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SetDisabled(true)

	assert.False(t, s.IsConnected(ctx))

	id, ok := s.InsertOne(ctx, "c", domain.Document{"k": "v"})
	assert.False(t, ok)
	assert.Empty(t, id)

	ids, ok := s.InsertMany(ctx, "c", []domain.Document{{"k": "v"}})
	assert.False(t, ok)
	assert.Empty(t, ids)

	assert.Empty(t, s.Find(ctx, "c", nil, domain.QueryOpts{}))
	assert.Nil(t, s.FindOne(ctx, "c", nil))
	assert.False(t, s.UpdateOne(ctx, "c", nil, domain.Document{"k": "v"}))

	// Re-enabling restores writes.
	s.SetDisabled(false)
	_, ok = s.InsertOne(ctx, "c", domain.Document{"k": "v"})
	assert.True(t, ok)
}
