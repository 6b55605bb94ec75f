package model

import "time"

// StockRecord is the canonical quote shape shared by all data sources.
// Dividend yield is always a fraction (0.035 == 3.5%), regardless of how
// the upstream source reports it.
type StockRecord struct {
	Ticker           string     `json:"ticker"`
	Name             string     `json:"name"`
	Price            float64    `json:"price"`
	Currency         string     `json:"currency"`
	AnnualDividend   float64    `json:"annual_dividend"`
	DividendYield    float64    `json:"dividend_yield"`
	Sector           string     `json:"sector"`
	Industry         string     `json:"industry"`
	MarketCap        float64    `json:"market_cap"`
	ExDividendDate   *time.Time `json:"ex_dividend_date,omitempty"`
	NextDividendDate *time.Time `json:"next_dividend_date,omitempty"`
	Change           float64    `json:"change"`
	ChangePercent    float64    `json:"change_percent"`
}

// Valid reports whether the record is admissible for analytics.
// A zero or missing price marks a row the upstream could not quote.
func (r *StockRecord) Valid() bool { return r.Price > 0 }

// CacheEntry is the persisted snapshot of one successful fetch.
// Key is the fingerprint of the ticker list the data was fetched for.
type CacheEntry struct {
	Key       string        `json:"key"`
	Data      []StockRecord `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
}
