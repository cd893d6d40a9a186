package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string, both of which
// appear in Gamma volume and price fields.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

// APIEvent represents an event as returned by the Polymarket Gamma API.
// An event groups one or more related markets.
type APIEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Active      flexBool    `json:"active"`
	Closed      bool        `json:"closed"`
	Volume      flexFloat   `json:"volume"`
	Markets     []APIMarket `json:"markets"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

// ToDomainEvent converts an APIEvent to a domain.Event, including its nested
// markets.
func (e *APIEvent) ToDomainEvent() domain.Event {
	ev := domain.Event{
		ID:          e.ID,
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		Active:      bool(e.Active),
		Closed:      e.Closed,
		Volume:      float64(e.Volume),
	}
	if t, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
		ev.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, e.UpdatedAt); err == nil {
		ev.UpdatedAt = t
	}
	for i := range e.Markets {
		m := e.Markets[i].ToDomainMarket()
		if m.EventID == "" {
			m.EventID = e.ID
		}
		ev.Markets = append(ev.Markets, m)
	}
	return ev
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID            string    `json:"id"`
	EventID       string    `json:"eventId"`
	Question      string    `json:"question"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Active        flexBool  `json:"active"`
	Closed        bool      `json:"closed"`
	Outcomes      string    `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	OutcomePrices string    `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.5\",\"0.5\"]"
	Spread        flexFloat `json:"spread"`
	Volume24hr    flexFloat `json:"volume24hr"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

// ToDomainMarket converts an APIMarket to a domain.Market, decoding the
// JSON-string-encoded outcome and price lists.
func (m *APIMarket) ToDomainMarket() domain.Market {
	mkt := domain.Market{
		ID:          m.ID,
		EventID:     m.EventID,
		Question:    m.Question,
		Slug:        m.Slug,
		Description: m.Description,
		Active:      bool(m.Active),
		Closed:      m.Closed,
		Spread:      float64(m.Spread),
		Volume24h:   float64(m.Volume24hr),
	}
	mkt.Outcomes = decodeStringList(m.Outcomes)
	for _, p := range decodeStringList(m.OutcomePrices) {
		if f, err := strconv.ParseFloat(p, 64); err == nil {
			mkt.OutcomePrices = append(mkt.OutcomePrices, f)
		}
	}
	if t, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil {
		mkt.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, m.UpdatedAt); err == nil {
		mkt.UpdatedAt = t
	}
	return mkt
}

// decodeStringList decodes a JSON-string-encoded list like
// "[\"Yes\",\"No\"]". Malformed input yields nil.
func decodeStringList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
