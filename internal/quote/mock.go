package quote

import (
	"context"
	"fmt"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Kind        Schema
	Quotes      map[string]RawQuote // per ticker; synthesized when nil
	Err         error               // returned on every call when set
	FailFirst   int                 // fail this many initial calls, then succeed
	FailTickers map[string]bool     // any batch containing one of these fails
	Batches     [][]string          // every batch the source was asked for
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Schema() Schema {
	if m.Kind == "" {
		return SchemaFunction
	}
	return m.Kind
}

func (m *MockSource) Fetch(ctx context.Context, tickers []string) ([]RawQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	batch := make([]string, len(tickers))
	copy(batch, tickers)
	m.Batches = append(m.Batches, batch)

	if m.FailFirst > 0 {
		m.FailFirst--
		return nil, fmt.Errorf("mock: simulated transient failure")
	}
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range tickers {
		if m.FailTickers[t] {
			return nil, fmt.Errorf("mock: simulated failure for batch containing %s", t)
		}
	}

	quotes := make([]RawQuote, 0, len(tickers))
	for _, t := range tickers {
		if m.Quotes != nil {
			if q, ok := m.Quotes[t]; ok {
				quotes = append(quotes, q)
			}
			continue
		}
		quotes = append(quotes, RawQuote{
			"ticker":         t,
			"name":           t + " Inc.",
			"price":          100.0,
			"currency":       "USD",
			"annualDividend": 4.0,
			"dividendYield":  4.0, // percent, per the function schema
			"sector":         "Technology",
			"industry":       "Software",
		})
	}
	return quotes, nil
}
