package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-trading-bot/internal/api"
	"crypto-trading-bot/internal/engine"
	"crypto-trading-bot/internal/eod"
	"crypto-trading-bot/internal/executor"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/marketdata"
	"crypto-trading-bot/internal/metrics"
	"crypto-trading-bot/internal/notify"
	"crypto-trading-bot/internal/store"
	"crypto-trading-bot/internal/trace"
)

const version = "1.0.0"

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	compressOldLogs(ctx)

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open store", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}
	defer db.Close()

	ex, err := initializeExchange(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize exchange", err)
		os.Exit(1)
	}

	md := marketdata.New(ex, cfg.Exchange.CandleInterval, cfg.Exchange.CandleLimit)
	exec := executor.New(cfg, ex)
	bus := notify.NewBus()

	eng, err := engine.New(ctx, cfg, md, exec, db, bus, initializeStrategies(ctx, cfg))
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build engine", err)
		os.Exit(1)
	}

	hub := notify.NewHub(bus)
	go hub.Run(ctx)

	metricsSrv := metrics.Serve(cfg.MetricsAddr)

	srv := api.NewServer(ctx, eng, db, hub, api.SystemMeta{
		Mode:    cfg.Mode,
		Venue:   cfg.Venue,
		Symbol:  cfg.Symbol,
		Version: version,
	})
	go func() {
		if err := srv.Start(cfg.ListenAddr); err != nil {
			logger.ErrorWithErr(ctx, "API server stopped", err)
		}
	}()

	if err := eng.Start(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Failed to start engine", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Trader started",
		"symbol", cfg.Symbol,
		"mode", cfg.Mode,
		"venue", cfg.Venue,
		"listen", cfg.ListenAddr,
		"metrics", cfg.MetricsAddr,
	)

	eodTick := time.NewTicker(60 * time.Second)
	defer eodTick.Stop()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-eodTick.C:
			if ok, _ := eod.ShouldRunNow(); ok {
				_, _ = eod.SummarizePrevious()
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			cancel()

			// Capture the partial day before exit.
			_, _ = eod.SummarizeDay(time.Now().UTC())

			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			_ = metricsSrv.Shutdown(shutdownCtx)
			_ = trace.Shutdown(shutdownCtx)
			done()
			return
		}
	}
}
