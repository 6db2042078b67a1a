package marketdata

import (
	"context"
	"fmt"
	"time"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

// provider assembles market snapshots from the exchange capability. One
// snapshot is one ticker read plus one candle series read.
type provider struct {
	ex       interfaces.Exchange
	interval string
	limit    int
}

var _ interfaces.MarketData = (*provider)(nil)

// New returns a market data provider reading from ex. Interval and limit
// control the candle series; zero values fall back to 1h candles and a
// 100-candle window.
func New(ex interfaces.Exchange, interval string, limit int) interfaces.MarketData {
	if interval == "" {
		interval = "1h"
	}
	if limit <= 0 {
		limit = 100
	}
	return &provider{ex: ex, interval: interval, limit: limit}
}

func (p *provider) FetchSnapshot(ctx context.Context, symbol string) (types.MarketSnapshot, error) {
	price, err := p.ex.FetchTicker(ctx, symbol)
	if err != nil {
		return types.MarketSnapshot{}, fmt.Errorf("fetch ticker: %w", err)
	}

	candles, err := p.ex.FetchCandles(ctx, symbol, p.interval, p.limit)
	if err != nil {
		return types.MarketSnapshot{}, fmt.Errorf("fetch candles: %w", err)
	}

	logger.Debug(ctx, "Market snapshot fetched",
		"symbol", symbol,
		"price", price,
		"candles", len(candles),
	)

	return types.MarketSnapshot{
		Symbol:    symbol,
		Price:     price,
		Candles:   candles,
		FetchedAt: time.Now().UTC(),
	}, nil
}
