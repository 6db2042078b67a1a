package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, snapshot types.MarketSnapshot) (types.Signal, error)
}
