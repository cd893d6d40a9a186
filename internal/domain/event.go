// Package domain defines the core types shared across the agent: events and
// markets sourced from the upstream feed, trade decisions produced by the
// reasoning service, and the record-store contracts used for history
// persistence.
package domain

import "time"

// Event represents a Polymarket event: a named grouping of one or more
// related prediction markets.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	Closed      bool      `json:"closed"`
	Volume      float64   `json:"volume"`
	Markets     []Market  `json:"markets,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tradeable reports whether the event is open for trading.
func (e Event) Tradeable() bool {
	return e.Active && !e.Closed
}
