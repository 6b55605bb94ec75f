package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FMPSource fetches company profiles from the Financial Modeling Prep API.
// The profile endpoint carries price, dividend, sector and market cap in a
// single call. The API key comes from configuration; there is no
// interactive credential entry.
type FMPSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewFMPSource creates a commercial-API source. baseURL may be empty to use
// the public endpoint.
func NewFMPSource(baseURL, apiKey string) *FMPSource {
	if baseURL == "" {
		baseURL = "https://financialmodelingprep.com"
	}
	return &FMPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *FMPSource) Name() string   { return "fmp" }
func (s *FMPSource) Schema() Schema { return SchemaFMP }

func (s *FMPSource) Fetch(ctx context.Context, tickers []string) ([]RawQuote, error) {
	endpoint := fmt.Sprintf("%s/api/v3/profile/%s?apikey=%s",
		s.BaseURL,
		url.PathEscape(strings.Join(tickers, ",")),
		url.QueryEscape(s.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fmp fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("fmp: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{Source: "fmp", Status: resp.StatusCode, Body: string(body)}
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("fmp decode: %w", err)
	}

	quotes := make([]RawQuote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, RawQuote(row))
	}
	return quotes, nil
}
