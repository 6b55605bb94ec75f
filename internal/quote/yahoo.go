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

// YahooSource fetches batch quotes from the Yahoo Finance public quote API.
// The API does not send CORS headers, so deployments that cannot reach it
// directly route the request through a proxy that prefixes the target URL
// (e.g. "https://api.allorigins.win/raw?url=").
type YahooSource struct {
	ProxyPrefix string
	Client      *http.Client
}

// NewYahooSource creates a Yahoo quote source. proxyPrefix may be empty for
// direct access.
func NewYahooSource(proxyPrefix string) *YahooSource {
	return &YahooSource{
		ProxyPrefix: proxyPrefix,
		Client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *YahooSource) Name() string   { return "yahoo" }
func (s *YahooSource) Schema() Schema { return SchemaYahoo }

// yahooQuoteResponse is the envelope of the v7 quote endpoint. Result rows
// are kept loose: field presence varies by security type.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []map[string]any `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

func (s *YahooSource) Fetch(ctx context.Context, tickers []string) ([]RawQuote, error) {
	target := fmt.Sprintf("https://query1.finance.yahoo.com/v7/finance/quote?symbols=%s",
		url.QueryEscape(strings.Join(tickers, ",")))
	u := target
	if s.ProxyPrefix != "" {
		u = s.ProxyPrefix + url.QueryEscape(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("yahoo: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Source: "yahoo", Status: resp.StatusCode, Body: string(body)}
	}

	var decoded yahooQuoteResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if decoded.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", decoded.QuoteResponse.Error.Description)
	}

	// An empty result set is a valid (if useless) payload, not a failure.
	quotes := make([]RawQuote, 0, len(decoded.QuoteResponse.Result))
	for _, row := range decoded.QuoteResponse.Result {
		quotes = append(quotes, RawQuote(row))
	}
	return quotes, nil
}
