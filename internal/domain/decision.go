package domain

// TradeDecision is the single trade selected by the reasoning service at the
// end of a trade-selection pipeline run.
type TradeDecision struct {
	MarketID  string  `json:"market_id"`
	Outcome   string  `json:"outcome"`   // outcome label, e.g. "Yes"
	Side      string  `json:"side"`      // "BUY" or "SELL"
	Price     float64 `json:"price"`     // limit price in [0,1]
	Size      float64 `json:"size"`      // fraction of the trade budget to commit
	Rationale string  `json:"rationale"` // free-form reasoning from the model
}

// Article is a news article returned by the news feed.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}
