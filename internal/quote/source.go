package quote

import (
	"context"
	"errors"
	"fmt"
)

// Schema identifies which upstream field layout a RawQuote uses.
type Schema string

const (
	SchemaYahoo    Schema = "yahoo"
	SchemaFunction Schema = "function"
	SchemaSheet    Schema = "sheet"
	SchemaFMP      Schema = "fmp"
)

// RawQuote is one upstream quote payload before normalization. Key names
// and yield scale differ per schema; only the normalizer interprets them.
type RawQuote map[string]any

// Source fetches raw quotes for one batch of tickers.
type Source interface {
	Fetch(ctx context.Context, tickers []string) ([]RawQuote, error)
	Schema() Schema
	Name() string
}

var (
	// ErrRateLimited marks an upstream 429. Retried like any transient failure.
	ErrRateLimited = errors.New("quote: rate limited by upstream")
	// ErrAllBatchesFailed means every batch failed and no usable cache exists.
	ErrAllBatchesFailed = errors.New("quote: all batches failed and no cached data available")
)

// UpstreamError reports a non-OK upstream response.
type UpstreamError struct {
	Source string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Source, e.Status, e.Body)
}
