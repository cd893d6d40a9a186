package domain

import "time"

// Market represents a single Polymarket prediction market.
type Market struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id,omitempty"`
	Question      string    `json:"question"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	Outcomes      []string  `json:"outcomes"`       // e.g. ["Yes","No"]
	OutcomePrices []float64 `json:"outcome_prices"` // aligned with Outcomes
	Spread        float64   `json:"spread"`
	Volume24h     float64   `json:"volume_24h"`
	Active        bool      `json:"active"`
	Closed        bool      `json:"closed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Tradeable reports whether the market is open for trading.
func (m Market) Tradeable() bool {
	return m.Active && !m.Closed
}
