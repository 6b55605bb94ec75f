package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"DividendDash/internal/cache"
	"DividendDash/internal/config"
	"DividendDash/internal/quote"
	"DividendDash/internal/recorder"
	"DividendDash/internal/scheduler"
	"DividendDash/internal/server"
	"DividendDash/pkg/logger"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := logger.New(logger.Config{})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	log.Info().Str("config", cfgPath).Msg("DividendDash starting")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Quote source: the backend variant is a composition-time decision; the
	// fetcher never branches on which one is active.
	var source quote.Source
	switch cfg.Source.Kind {
	case "yahoo":
		source = quote.NewYahooSource(cfg.Source.ProxyPrefix)
	case "function":
		source = quote.NewFunctionSource(cfg.Source.BaseURL)
	case "sheet":
		source = quote.NewSheetSource(cfg.Source.SheetURL)
	case "fmp":
		source = quote.NewFMPSource(cfg.Source.BaseURL, cfg.Source.APIKey)
	case "mock":
		source = &quote.MockSource{}
	}
	log.Info().Str("source", source.Name()).Msg("quote source initialized")

	store := cache.NewStore(cfg.Cache.Path, time.Duration(cfg.Cache.Duration))
	fetcher := quote.NewFetcher(source, store, log)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := quote.FetchOptions{
		BatchSize:  cfg.Portfolio.BatchSize,
		MaxRetries: cfg.Portfolio.MaxRetries,
	}

	sched := scheduler.New(ctx, fetcher, store, rec,
		cfg.Portfolio.Tickers, opts, time.Duration(cfg.Refresh.Margin), log)
	if err := sched.Register(cfg.Refresh.Cron); err != nil {
		log.Fatal().Err(err).Msg("register refresh task")
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, warming cache now")
		go sched.RunNow()
	}

	api := server.New(fetcher, store, rec,
		cfg.Portfolio.Tickers, opts, cfg.Scenarios, log)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Router(),
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("DividendDash stopped")
}
