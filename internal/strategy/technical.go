package strategy

import (
	"context"
	"fmt"
	"math"
	"strings"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/store"
	"crypto-trading-bot/internal/ta"
	"crypto-trading-bot/internal/types"
)

// technical votes on indicator readings over the snapshot's candle series.
// Each indicator contributes a fixed-weight vote to one side; the heavier
// side wins. An indicator that cannot be computed from the available
// series simply does not vote.
type technical struct {
	rsiPeriod  int
	maShort    int
	maLong     int
	macdFast   int
	macdSlow   int
	macdSignal int
}

func NewTechnical(cfg *store.Config) interfaces.Strategy {
	return &technical{
		rsiPeriod:  cfg.Indicators.RSIPeriod,
		maShort:    cfg.Indicators.MAShort,
		maLong:     cfg.Indicators.MALong,
		macdFast:   cfg.Indicators.MACDFast,
		macdSlow:   cfg.Indicators.MACDSlow,
		macdSignal: cfg.Indicators.MACDSignal,
	}
}

func (t *technical) Name() string { return "technical" }

func (t *technical) Evaluate(ctx context.Context, snap types.MarketSnapshot) (types.Signal, error) {
	closes := make([]float64, len(snap.Candles))
	for i, c := range snap.Candles {
		closes[i] = c.Close
	}

	var buyVotes, sellVotes float64
	var buyReasons, sellReasons []string

	if rsi := ta.RSI(closes, t.rsiPeriod); !math.IsNaN(rsi) {
		if rsi < 30 {
			buyVotes += 30
			buyReasons = append(buyReasons, fmt.Sprintf("RSI oversold (%.1f)", rsi))
		} else if rsi > 70 {
			sellVotes += 30
			sellReasons = append(sellReasons, fmt.Sprintf("RSI overbought (%.1f)", rsi))
		}
	}

	short, long := ta.SMA(closes, t.maShort), ta.SMA(closes, t.maLong)
	if !math.IsNaN(short) && !math.IsNaN(long) {
		if short > long {
			buyVotes += 25
			buyReasons = append(buyReasons, "MA bullish crossover")
		} else {
			sellVotes += 25
			sellReasons = append(sellReasons, "MA bearish crossover")
		}
	}

	line, sig, _ := ta.MACD(closes, t.macdFast, t.macdSlow, t.macdSignal)
	if !math.IsNaN(line) && !math.IsNaN(sig) {
		if line > sig {
			buyVotes += 20
			buyReasons = append(buyReasons, "MACD bullish")
		} else {
			sellVotes += 20
			sellReasons = append(sellReasons, "MACD bearish")
		}
	}

	switch {
	case buyVotes > sellVotes:
		return types.Signal{
			Direction:  types.DirectionBuy,
			Confidence: math.Min(100, buyVotes),
			Rationale:  strings.Join(buyReasons, "; "),
		}, nil
	case sellVotes > buyVotes:
		return types.Signal{
			Direction:  types.DirectionSell,
			Confidence: math.Min(100, sellVotes),
			Rationale:  strings.Join(sellReasons, "; "),
		}, nil
	default:
		return types.Signal{
			Direction:  types.DirectionHold,
			Confidence: 50,
			Rationale:  "no clear technical signal",
		}, nil
	}
}
