package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"DividendDash/internal/analytics"
	"DividendDash/internal/cache"
	"DividendDash/internal/model"
	"DividendDash/internal/quote"
	"DividendDash/internal/recorder"
	"DividendDash/internal/simulator"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	opts := s.opts
	opts.ForceRefresh = r.URL.Query().Get("refresh") == "true"

	fromCache := false
	if !opts.ForceRefresh && s.store != nil {
		_, fromCache = s.store.TimeRemaining(cache.Fingerprint(s.tickers))
	}

	started := time.Now()
	records, err := s.fetchRecords(r, opts)
	if err != nil {
		s.respondFetchError(w, err)
		return
	}

	stats := analytics.Compute(records)
	if err := s.recorder.RecordFetch(&recorder.FetchRun{
		Source:    s.fetcher.Source.Name(),
		Requested: len(s.tickers),
		Returned:  len(records),
		FromCache: fromCache,
		AvgYield:  stats.AvgYield,
		AvgPrice:  stats.AvgPrice,
		Elapsed:   time.Since(started),
	}); err != nil {
		s.log.Error().Err(err).Msg("record fetch run")
	}

	s.respond(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records, err := s.fetchRecords(r, s.opts)
	if err != nil {
		s.respondFetchError(w, err)
		return
	}
	s.respond(w, http.StatusOK, analytics.Compute(records))
}

func (s *Server) handleCacheInfo(w http.ResponseWriter, _ *http.Request) {
	info := map[string]any{"cached": false}
	if s.store != nil {
		if remaining, ok := s.store.TimeRemaining(cache.Fingerprint(s.tickers)); ok {
			info["cached"] = true
			info["remaining_seconds"] = int(remaining.Seconds())
		}
	}
	s.respond(w, http.StatusOK, info)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to clear cache")
			return
		}
	}
	s.respond(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var params model.DCAParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := simulator.Simulate(params)
	if err != nil {
		if errors.Is(err, simulator.ErrInvalidParameters) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, "simulation failed")
		return
	}

	if err := s.recorder.RecordSimulation(&recorder.SimulationRun{
		Params: params,
		Totals: result.Totals,
	}); err != nil {
		s.log.Error().Err(err).Msg("record simulation run")
	}
	s.respond(w, http.StatusOK, result)
}

// handleSimulateScenarios runs the configured named growth scenarios over
// one base parameter set. Scenario selection is a caller concern; the engine
// itself stays scenario-agnostic.
func (s *Server) handleSimulateScenarios(w http.ResponseWriter, r *http.Request) {
	var params model.DCAParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	type scenarioResult struct {
		Scenario string                  `json:"scenario"`
		Result   *model.SimulationResult `json:"result"`
	}
	results := make([]scenarioResult, 0, len(s.scenarios))
	for _, sc := range s.scenarios {
		p := params
		p.PriceGrowth = sc.PriceGrowth
		p.DividendGrowth = sc.DividendGrowth

		result, err := simulator.Simulate(p)
		if err != nil {
			if errors.Is(err, simulator.ErrInvalidParameters) {
				s.respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.respondError(w, http.StatusInternalServerError, "simulation failed")
			return
		}
		results = append(results, scenarioResult{Scenario: sc.Name, Result: result})

		if err := s.recorder.RecordSimulation(&recorder.SimulationRun{
			Scenario: sc.Name,
			Params:   p,
			Totals:   result.Totals,
		}); err != nil {
			s.log.Error().Err(err).Msg("record simulation run")
		}
	}
	s.respond(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) fetchRecords(r *http.Request, opts quote.FetchOptions) ([]model.StockRecord, error) {
	return s.fetcher.Fetch(r.Context(), s.tickers, opts)
}

func (s *Server) respondFetchError(w http.ResponseWriter, err error) {
	if errors.Is(err, quote.ErrAllBatchesFailed) {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, map[string]string{"error": msg})
}
