package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DividendDash/internal/cache"
	"DividendDash/internal/config"
	"DividendDash/internal/model"
	"DividendDash/internal/quote"
	"DividendDash/internal/recorder"
)

func newTestServer(t *testing.T, src quote.Source) (*Server, http.Handler) {
	t.Helper()
	store := cache.NewStore(filepath.Join(t.TempDir(), "cache.json"), time.Hour)
	f := quote.NewFetcher(src, store, zerolog.Nop())
	f.BaseDelay = 0
	f.BatchDelay = 0

	scenarios := []config.Scenario{
		{Name: "pessimistic", PriceGrowth: 0.03, DividendGrowth: 0.02},
		{Name: "optimistic", PriceGrowth: 0.10, DividendGrowth: 0.08},
	}
	srv := New(f, store, recorder.NewNoopRecorder(),
		[]string{"KO", "PEP", "JNJ"},
		quote.FetchOptions{BatchSize: 2, MaxRetries: 1},
		scenarios, zerolog.Nop())
	return srv, srv.Router()
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	_, h := newTestServer(t, &quote.MockSource{})
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleQuotes(t *testing.T) {
	_, h := newTestServer(t, &quote.MockSource{})
	rec := doJSON(t, h, http.MethodGet, "/api/quotes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Records []model.StockRecord `json:"records"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 3, payload.Count)
	assert.Equal(t, "KO", payload.Records[0].Ticker)
}

func TestHandleQuotes_TotalFailure(t *testing.T) {
	_, h := newTestServer(t, &quote.MockSource{Err: errors.New("upstream down")})
	rec := doJSON(t, h, http.MethodGet, "/api/quotes", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleStats(t *testing.T) {
	_, h := newTestServer(t, &quote.MockSource{})
	rec := doJSON(t, h, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats model.PortfolioStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalStocks)
	assert.InDelta(t, 0.04, stats.AvgYield, 1e-9)
}

func TestHandleCacheLifecycle(t *testing.T) {
	_, h := newTestServer(t, &quote.MockSource{})

	rec := doJSON(t, h, http.MethodGet, "/api/cache", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cached":false`)

	// A fetch populates the slot.
	doJSON(t, h, http.MethodGet, "/api/quotes", nil)
	rec = doJSON(t, h, http.MethodGet, "/api/cache", nil)
	assert.Contains(t, rec.Body.String(), `"cached":true`)

	rec = doJSON(t, h, http.MethodDelete, "/api/cache", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/api/cache", nil)
	assert.Contains(t, rec.Body.String(), `"cached":false`)
}

func TestHandleSimulate(t *testing.T) {
	_, h := newTestServer(t, &quote.MockSource{})
	params := model.DCAParameters{
		InitialInvestment:   10000,
		MonthlyContribution: 500,
		Years:               10,
		StartPrice:          100,
		StartYield:          0.04,
		PriceGrowth:         0.07,
		DividendGrowth:      0.05,
	}
	rec := doJSON(t, h, http.MethodPost, "/api/simulate", params)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SimulationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Years, 10)
	assert.Greater(t, result.Totals.PortfolioValue, result.Totals.Invested)
}

func TestHandleSimulate_InvalidParams(t *testing.T) {
	_, h := newTestServer(t, &quote.MockSource{})
	rec := doJSON(t, h, http.MethodPost, "/api/simulate", model.DCAParameters{Years: 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "zero start price must be rejected")
}

func TestHandleSimulate_MalformedBody(t *testing.T) {
	_, h := newTestServer(t, &quote.MockSource{})
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSimulateScenarios(t *testing.T) {
	_, h := newTestServer(t, &quote.MockSource{})
	params := model.DCAParameters{
		InitialInvestment: 10000,
		Years:             5,
		StartPrice:        100,
		StartYield:        0.04,
	}
	rec := doJSON(t, h, http.MethodPost, "/api/simulate/scenarios", params)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Results []struct {
			Scenario string                  `json:"scenario"`
			Result   *model.SimulationResult `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Results, 2)
	assert.Equal(t, "pessimistic", payload.Results[0].Scenario)

	// The optimistic growth pair must strictly beat the pessimistic one.
	assert.Greater(t,
		payload.Results[1].Result.Totals.PortfolioValue,
		payload.Results[0].Result.Totals.PortfolioValue)
}
