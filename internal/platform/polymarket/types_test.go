package polymarket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIMarketDecodesStringlyTypedFields(t *testing.T) {
	raw := `{
		"id": "512",
		"question": "Will BTC close above 100k this year?",
		"active": "true",
		"closed": false,
		"outcomes": "[\"Yes\",\"No\"]",
		"outcomePrices": "[\"0.62\",\"0.38\"]",
		"spread": "0.015",
		"volume24hr": 120500.5,
		"createdAt": "2025-02-01T10:00:00Z"
	}`

	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	mkt := m.ToDomainMarket()
	assert.Equal(t, "512", mkt.ID)
	assert.True(t, mkt.Active)
	assert.Equal(t, []string{"Yes", "No"}, mkt.Outcomes)
	assert.Equal(t, []float64{0.62, 0.38}, mkt.OutcomePrices)
	assert.Equal(t, 0.015, mkt.Spread)
	assert.Equal(t, 120500.5, mkt.Volume24h)
	assert.Equal(t, 2025, mkt.CreatedAt.Year())
	assert.True(t, mkt.Tradeable())
}

func TestAPIEventFillsEventIDOnNestedMarkets(t *testing.T) {
	raw := `{
		"id": "e9",
		"title": "US Election",
		"active": true,
		"closed": false,
		"volume": "2500000",
		"markets": [
			{"id": "m1", "question": "q1", "active": true},
			{"id": "m2", "question": "q2", "active": true, "eventId": "other"}
		]
	}`

	var e APIEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	ev := e.ToDomainEvent()
	assert.Equal(t, "e9", ev.ID)
	assert.Equal(t, 2500000.0, ev.Volume)
	require.Len(t, ev.Markets, 2)
	assert.Equal(t, "e9", ev.Markets[0].EventID)
	assert.Equal(t, "other", ev.Markets[1].EventID)
}

func TestFlexFieldsToleratedForms(t *testing.T) {
	var b flexBool
	require.NoError(t, json.Unmarshal([]byte(`true`), &b))
	assert.True(t, bool(b))
	require.NoError(t, json.Unmarshal([]byte(`"false"`), &b))
	assert.False(t, bool(b))
	require.NoError(t, json.Unmarshal([]byte(`"1"`), &b))
	assert.True(t, bool(b))

	var f flexFloat
	require.NoError(t, json.Unmarshal([]byte(`1.25`), &f))
	assert.Equal(t, 1.25, float64(f))
	require.NoError(t, json.Unmarshal([]byte(`"3.5"`), &f))
	assert.Equal(t, 3.5, float64(f))
	require.NoError(t, json.Unmarshal([]byte(`""`), &f))
	assert.Equal(t, 0.0, float64(f))
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &f))
}

func TestDecodeStringListMalformedYieldsNil(t *testing.T) {
	assert.Nil(t, decodeStringList(""))
	assert.Nil(t, decodeStringList("not json"))
	assert.Equal(t, []string{"Yes"}, decodeStringList(`["Yes"]`))
}
