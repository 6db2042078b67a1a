package executor

import (
	"context"
	"fmt"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

// venueProfile captures how a venue expects stop orders to be phrased.
// The profile is chosen once at construction; callers never see venue
// parameter names.
type venueProfile struct {
	id         string
	stopParams func(stopPrice float64) map[string]any
}

func profileFor(venue string) venueProfile {
	switch venue {
	case "okx":
		// OKX places stops through the algo order endpoint as conditional
		// orders with separate trigger and order prices.
		return venueProfile{
			id: "okx",
			stopParams: func(stopPrice float64) map[string]any {
				return map[string]any{
					"ordType":     "conditional",
					"slTriggerPx": stopPrice,
					"slOrdPx":     stopPrice,
				}
			},
		}
	default:
		// binance and binanceus share the STOP_LOSS order type.
		return venueProfile{
			id: venue,
			stopParams: func(stopPrice float64) map[string]any {
				return map[string]any{
					"type":      "STOP_LOSS",
					"stopPrice": stopPrice,
				}
			},
		}
	}
}

// liveExecutor routes orders to a real venue through the Exchange
// abstraction. It adds no execution logic of its own beyond translating
// stop orders into the venue's dialect.
type liveExecutor struct {
	ex      interfaces.Exchange
	profile venueProfile
}

var _ interfaces.Executor = (*liveExecutor)(nil)

func newLiveExecutor(ex interfaces.Exchange, venue string) *liveExecutor {
	return &liveExecutor{ex: ex, profile: profileFor(venue)}
}

func (l *liveExecutor) Buy(ctx context.Context, symbol string, amount float64) (types.OrderResult, error) {
	order, err := l.ex.CreateMarketOrder(ctx, symbol, types.DirectionBuy, amount)
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("live buy %s: %w", symbol, err)
	}
	return order, nil
}

func (l *liveExecutor) Sell(ctx context.Context, symbol string, amount float64) (types.OrderResult, error) {
	order, err := l.ex.CreateMarketOrder(ctx, symbol, types.DirectionSell, amount)
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("live sell %s: %w", symbol, err)
	}
	return order, nil
}

func (l *liveExecutor) PlaceStopLoss(ctx context.Context, symbol string, amount, stopPrice float64) (types.OrderResult, error) {
	params := l.profile.stopParams(stopPrice)
	logger.Debug(ctx, "Placing venue stop order",
		"symbol", symbol,
		"venue", l.profile.id,
		"amount", amount,
		"stop_price", stopPrice,
	)
	order, err := l.ex.CreateStopOrder(ctx, symbol, types.DirectionSell, amount, stopPrice, params)
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("live stop-loss %s: %w", symbol, err)
	}
	return order, nil
}

func (l *liveExecutor) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	price, err := l.ex.FetchTicker(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("live ticker %s: %w", symbol, err)
	}
	return price, nil
}
