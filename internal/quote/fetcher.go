package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"DividendDash/internal/cache"
	"DividendDash/internal/model"
)

// FetchOptions controls one fetch run.
type FetchOptions struct {
	BatchSize    int
	MaxRetries   int
	ForceRefresh bool
}

// Fetcher pulls a ticker list through a Source in bounded batches, with
// retry and backoff per batch, tolerating partial failure. Batches run
// strictly sequentially; pacing the upstream matters more than wall-clock
// speed here.
type Fetcher struct {
	Source Source
	Cache  *cache.Store

	// BaseDelay is the backoff unit: attempt n waits n*BaseDelay.
	// BatchDelay paces consecutive batches.
	BaseDelay  time.Duration
	BatchDelay time.Duration

	log zerolog.Logger
}

// NewFetcher creates a fetcher over source, consulting store first.
// store may be nil to disable caching entirely.
func NewFetcher(source Source, store *cache.Store, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		Source:     source,
		Cache:      store,
		BaseDelay:  time.Second,
		BatchDelay: 500 * time.Millisecond,
		log:        log.With().Str("component", "fetcher").Str("source", source.Name()).Logger(),
	}
}

// Fetch returns normalized records for tickers, in the original order of the
// successful batches. A fresh cache entry short-circuits the network unless
// ForceRefresh is set. Any non-empty result is written back to the cache,
// even a partial one: it becomes the new cached truth. An error is returned
// only for invalid options or when every batch failed and no usable cache
// exists.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string, opts FetchOptions) ([]model.StockRecord, error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("quote: batch size must be positive, got %d", opts.BatchSize)
	}
	if len(tickers) == 0 {
		return []model.StockRecord{}, nil
	}

	key := cache.Fingerprint(tickers)
	if !opts.ForceRefresh && f.Cache != nil {
		if entry, ok := f.Cache.Read(key); ok {
			f.log.Debug().Int("records", len(entry.Data)).Msg("serving cached dataset")
			return entry.Data, nil
		}
	}

	chunks := partition(tickers, opts.BatchSize)
	records := make([]model.StockRecord, 0, len(tickers))
	failed := 0

	for i, chunk := range chunks {
		if i > 0 {
			if err := sleepCtx(ctx, f.BatchDelay); err != nil {
				return nil, err
			}
		}
		raws, err := f.fetchWithRetry(ctx, chunk, opts.MaxRetries)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			f.log.Warn().Err(err).Strs("tickers", chunk).Msg("batch dropped after exhausting retries")
			continue
		}
		for _, raw := range raws {
			records = append(records, Normalize(raw, f.Source.Schema()))
		}
	}

	if len(records) > 0 && f.Cache != nil {
		if err := f.Cache.Write(key, records); err != nil {
			f.log.Warn().Err(err).Msg("cache write failed")
		}
	}

	if failed == len(chunks) {
		// Total failure. A still-fresh cache entry beats an error, even on a
		// forced refresh.
		if f.Cache != nil {
			if entry, ok := f.Cache.Read(key); ok {
				f.log.Warn().Msg("all batches failed, falling back to cached dataset")
				return entry.Data, nil
			}
		}
		return nil, fmt.Errorf("%w: source %s, %d batches", ErrAllBatchesFailed, f.Source.Name(), len(chunks))
	}

	return records, nil
}

// fetchWithRetry attempts one batch up to maxRetries times with a linearly
// growing backoff between attempts.
func (f *Fetcher) fetchWithRetry(ctx context.Context, chunk []string, maxRetries int) ([]RawQuote, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		raws, err := f.Source.Fetch(ctx, chunk)
		if err == nil {
			return raws, nil
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}
		backoff := time.Duration(attempt) * f.BaseDelay
		f.log.Warn().Err(err).
			Int("attempt", attempt).
			Int("max", maxRetries).
			Dur("backoff", backoff).
			Msg("batch fetch failed, retrying")
		if err := sleepCtx(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("all %d attempts exhausted: %w", maxRetries, lastErr)
}

// partition splits tickers into consecutive chunks of at most size,
// preserving order within and across chunks.
func partition(tickers []string, size int) [][]string {
	chunks := make([][]string, 0, (len(tickers)+size-1)/size)
	for start := 0; start < len(tickers); start += size {
		end := start + size
		if end > len(tickers) {
			end = len(tickers)
		}
		chunks = append(chunks, tickers[start:end])
	}
	return chunks
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
