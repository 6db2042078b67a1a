package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"crypto-trading-bot/internal/eod"
	"crypto-trading-bot/internal/eod/eodobs"
	"crypto-trading-bot/internal/exchange/binance"
	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/news"
	"crypto-trading-bot/internal/store"
	"crypto-trading-bot/internal/strategy"
	"crypto-trading-bot/internal/trace"
	"crypto-trading-bot/internal/tradelog"
)

// initializeSystem sets up env, logging, tracing and the EOD summarizer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(version); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	initializeEOD()
	return nil
}

// loadConfig loads and validates the configuration file.
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("TRADER_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs gzips old trade logs if retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeExchange builds the venue client. Market data comes from the
// exchange in every mode; the public endpoints need no credentials, so
// PAPER runs fine with empty keys.
func initializeExchange(ctx context.Context, cfg *store.Config) (interfaces.Exchange, error) {
	if cfg.Mode == "LIVE" && cfg.Venue == "okx" {
		return nil, fmt.Errorf("venue okx has no live order client; use binance or binanceus")
	}

	client := binance.NewClient(binance.Params{
		APIKey:        os.Getenv("BINANCE_API_KEY"),
		APISecret:     os.Getenv("BINANCE_API_SECRET"),
		Venue:         cfg.Venue,
		Testnet:       cfg.Exchange.Testnet,
		RatePerSecond: cfg.Exchange.RatePerSecond,
	})

	if cfg.Mode == "PAPER" {
		logger.Warn(ctx, "Running in PAPER mode - orders will be simulated")
	}
	if cfg.Venue == "okx" {
		logger.Warn(ctx, "Venue okx has no native data client; candle feed served from binance")
	}
	if cfg.Exchange.Testnet {
		logger.Info(ctx, "Using Binance testnet endpoints")
	}
	return client, nil
}

// initializeStrategies builds the enabled signal sources. The technical
// strategy is always on; sentiment and LLM follow their config switches.
func initializeStrategies(ctx context.Context, cfg *store.Config) []interfaces.Strategy {
	strategies := []interfaces.Strategy{strategy.NewTechnical(cfg)}

	if cfg.News.Enabled {
		svcCfg := news.DefaultServiceConfig()
		svcCfg.MaxArticles = cfg.News.MaxArticles
		svcCfg.CacheDuration = time.Duration(cfg.News.CacheMinutes) * time.Minute
		strategies = append(strategies, strategy.NewSentiment(news.NewService(svcCfg)))
	} else {
		logger.Info(ctx, "News sentiment strategy disabled")
	}

	if cfg.LLM.Enabled {
		strategies = append(strategies, strategy.NewLLM(cfg))
	} else {
		logger.Info(ctx, "LLM strategy disabled")
	}

	return strategies
}

// initializeEOD wraps the default EOD summarizer with observability.
func initializeEOD() {
	eod.SetDefaultSummarizer(eodobs.Wrap(eod.NewSummarizer()))
}
