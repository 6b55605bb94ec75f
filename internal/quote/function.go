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

// FunctionSource fetches quotes from a serverless function that wraps a
// finance data library and re-exposes it as a simple JSON endpoint.
type FunctionSource struct {
	BaseURL string
	Client  *http.Client
}

// NewFunctionSource creates a source for the given function base URL.
func NewFunctionSource(baseURL string) *FunctionSource {
	return &FunctionSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *FunctionSource) Name() string   { return "function" }
func (s *FunctionSource) Schema() Schema { return SchemaFunction }

func (s *FunctionSource) Fetch(ctx context.Context, tickers []string) ([]RawQuote, error) {
	endpoint := fmt.Sprintf("%s/api/quotes?symbols=%s",
		s.BaseURL, url.QueryEscape(strings.Join(tickers, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("function fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("function: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{Source: "function", Status: resp.StatusCode, Body: string(body)}
	}

	var decoded struct {
		Quotes []map[string]any `json:"quotes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("function decode: %w", err)
	}

	quotes := make([]RawQuote, 0, len(decoded.Quotes))
	for _, row := range decoded.Quotes {
		quotes = append(quotes, RawQuote(row))
	}
	return quotes, nil
}
