package quote

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SheetSource fetches quotes from a published spreadsheet CSV export.
// The sheet holds the whole maintained universe; rows outside the requested
// batch are dropped here so the fetcher sees a per-batch payload like with
// any other source.
type SheetSource struct {
	ExportURL string
	Client    *http.Client
}

// NewSheetSource creates a source reading the given CSV export URL.
func NewSheetSource(exportURL string) *SheetSource {
	return &SheetSource{
		ExportURL: exportURL,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SheetSource) Name() string   { return "sheet" }
func (s *SheetSource) Schema() Schema { return SchemaSheet }

func (s *SheetSource) Fetch(ctx context.Context, tickers []string) ([]RawQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ExportURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("sheet: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{Source: "sheet", Status: resp.StatusCode, Body: string(body)}
	}

	reader := csv.NewReader(resp.Body)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheet parse csv: %w", err)
	}
	if len(rows) < 1 {
		return []RawQuote{}, nil
	}

	header := rows[0]
	wanted := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		wanted[strings.ToUpper(strings.TrimSpace(t))] = true
	}

	// Preserve the order of the requested batch, not the sheet's row order.
	byTicker := make(map[string]RawQuote, len(rows)-1)
	for _, row := range rows[1:] {
		q := make(RawQuote, len(header))
		for i, col := range header {
			if i < len(row) {
				q[strings.TrimSpace(col)] = row[i]
			}
		}
		ticker := strings.ToUpper(strings.TrimSpace(asString(q["Ticker"])))
		if ticker != "" && wanted[ticker] {
			byTicker[ticker] = q
		}
	}

	quotes := make([]RawQuote, 0, len(tickers))
	for _, t := range tickers {
		if q, ok := byTicker[strings.ToUpper(strings.TrimSpace(t))]; ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}
