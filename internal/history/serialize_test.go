package history

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

type payload struct {
	ID      string   `json:"id"`
	Price   float64  `json:"price,omitempty"`
	Note    string   // no tag, keyed by field name
	hidden  int
	Tags    []string `json:"tags"`
	Nested  *payload `json:"nested"`
	Skipped string   `json:"-"`
}

func TestNormalizePrimitives(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.Equal(t, "s", Normalize("s"))
	assert.Equal(t, 42, Normalize(42))
	assert.Equal(t, 1.5, Normalize(1.5))
	assert.Equal(t, true, Normalize(true))

	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, ts, Normalize(ts))

	assert.Equal(t, "raw", Normalize([]byte("raw")))
}

func TestNormalizeStructUsesJSONTags(t *testing.T) {
	p := payload{
		ID:    "m1",
		Price: 0.42,
		Note:  "n",
		Tags:  []string{"a", "b"},
		Nested: &payload{
			ID: "m2",
		},
	}

	got, ok := Normalize(p).(map[string]any)
	if !ok {
		t.Fatalf("Normalize(struct) = %T, want map", Normalize(p))
	}

	assert.Equal(t, "m1", got["id"])
	assert.Equal(t, 0.42, got["price"])
	assert.Equal(t, "n", got["Note"])
	assert.Equal(t, []any{"a", "b"}, got["tags"])
	assert.NotContains(t, got, "hidden")
	assert.NotContains(t, got, "Skipped")

	nested, ok := got["nested"].(map[string]any)
	if !ok {
		t.Fatalf("nested = %T, want map", got["nested"])
	}
	assert.Equal(t, "m2", nested["id"])
}

func TestNormalizeMapsRecurse(t *testing.T) {
	in := domain.Document{
		"outer": map[string]any{
			"err": errors.New("boom"),
		},
	}
	got := Normalize(in).(map[string]any)
	outer := got["outer"].(map[string]any)
	assert.Equal(t, "boom", outer["err"])
}

func TestNormalizeOpaqueValuesBecomeStrings(t *testing.T) {
	// error values use Error().
	assert.Equal(t, "kaput", Normalize(errors.New("kaput")))

	// Stringers use String().
	ip := net.IPv4(127, 0, 0, 1)
	assert.Equal(t, "127.0.0.1", Normalize(ip))

	// Non-string-keyed maps fall back to fmt.
	weird := map[int]string{1: "a"}
	assert.IsType(t, "", Normalize(weird))

	// Channels fall back to fmt.
	ch := make(chan int)
	assert.IsType(t, "", Normalize(ch))

	// Nil pointers collapse to nil.
	var p *payload
	assert.Nil(t, Normalize(p))
}
