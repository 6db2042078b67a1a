package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

type MarketData interface {
	FetchSnapshot(ctx context.Context, symbol string) (types.MarketSnapshot, error)
}
