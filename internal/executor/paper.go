package executor

import (
	"context"
	"fmt"
	"sync/atomic"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

// paperExecutor simulates order execution without touching any venue.
// Every order fills immediately at the configured reference price, so paper
// P&L is deterministic and reproducible across runs.
type paperExecutor struct {
	referencePrice float64
	seq            atomic.Int64
}

var _ interfaces.Executor = (*paperExecutor)(nil)

func newPaperExecutor(referencePrice float64) *paperExecutor {
	return &paperExecutor{referencePrice: referencePrice}
}

func (p *paperExecutor) nextID() string {
	return fmt.Sprintf("PAPER-%d", p.seq.Add(1))
}

func (p *paperExecutor) Buy(ctx context.Context, symbol string, amount float64) (types.OrderResult, error) {
	order := types.OrderResult{
		ID:        p.nextID(),
		Symbol:    symbol,
		Side:      types.DirectionBuy,
		Amount:    amount,
		FillPrice: p.referencePrice,
		Status:    "FILLED",
		Simulated: true,
	}
	logger.Debug(ctx, "Paper BUY filled", "symbol", symbol, "amount", amount, "price", order.FillPrice, "order_id", order.ID)
	return order, nil
}

func (p *paperExecutor) Sell(ctx context.Context, symbol string, amount float64) (types.OrderResult, error) {
	order := types.OrderResult{
		ID:        p.nextID(),
		Symbol:    symbol,
		Side:      types.DirectionSell,
		Amount:    amount,
		FillPrice: p.referencePrice,
		Status:    "FILLED",
		Simulated: true,
	}
	logger.Debug(ctx, "Paper SELL filled", "symbol", symbol, "amount", amount, "price", order.FillPrice, "order_id", order.ID)
	return order, nil
}

// PlaceStopLoss records a resting stop order. Paper stops never fill here;
// the engine's breach check is what exits paper positions.
func (p *paperExecutor) PlaceStopLoss(ctx context.Context, symbol string, amount, stopPrice float64) (types.OrderResult, error) {
	order := types.OrderResult{
		ID:        p.nextID(),
		Symbol:    symbol,
		Side:      types.DirectionSell,
		Amount:    amount,
		FillPrice: 0,
		Status:    "ACCEPTED",
		Simulated: true,
	}
	logger.Debug(ctx, "Paper stop-loss accepted", "symbol", symbol, "amount", amount, "stop_price", stopPrice, "order_id", order.ID)
	return order, nil
}

func (p *paperExecutor) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	return p.referencePrice, nil
}
