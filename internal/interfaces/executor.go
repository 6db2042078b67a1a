package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// Executor places orders and reads prices. The paper variant fills
// synthetically; the live variant delegates to an Exchange. Failures are
// returned to the caller, never swallowed.
type Executor interface {
	Buy(ctx context.Context, symbol string, amount float64) (types.OrderResult, error)
	Sell(ctx context.Context, symbol string, amount float64) (types.OrderResult, error)
	PlaceStopLoss(ctx context.Context, symbol string, amount, stopPrice float64) (types.OrderResult, error)
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}
