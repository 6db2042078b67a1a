package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// Exchange is the unified venue capability consumed by the live executor
// and the market data provider. Venue-specific stop-order parameter shapes
// travel in params; building them is the executor's concern.
type Exchange interface {
	FetchTicker(ctx context.Context, symbol string) (float64, error)
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error)
	CreateMarketOrder(ctx context.Context, symbol string, side types.Direction, amount float64) (types.OrderResult, error)
	CreateStopOrder(ctx context.Context, symbol string, side types.Direction, amount, stopPrice float64, params map[string]any) (types.OrderResult, error)
}
