package execobs

import (
	"context"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

// observableExecutor wraps an executor with spans and operation timing so
// every order attempt shows up in the trace regardless of which variant is
// behind it.
type observableExecutor struct {
	inner interfaces.Executor
}

var _ interfaces.Executor = (*observableExecutor)(nil)

func Wrap(inner interfaces.Executor) interfaces.Executor {
	return &observableExecutor{inner: inner}
}

func (oe *observableExecutor) Buy(ctx context.Context, symbol string, amount float64) (types.OrderResult, error) {
	timer := logger.StartOperation(ctx, "executor.Buy",
		"symbol", symbol,
		"amount", amount,
	)
	order, err := oe.inner.Buy(timer.GetContext(), symbol, amount)
	if err != nil {
		timer.EndWithError(err)
		return types.OrderResult{}, err
	}
	timer.End("order_id", order.ID, "fill_price", order.FillPrice, "status", order.Status)
	return order, nil
}

func (oe *observableExecutor) Sell(ctx context.Context, symbol string, amount float64) (types.OrderResult, error) {
	timer := logger.StartOperation(ctx, "executor.Sell",
		"symbol", symbol,
		"amount", amount,
	)
	order, err := oe.inner.Sell(timer.GetContext(), symbol, amount)
	if err != nil {
		timer.EndWithError(err)
		return types.OrderResult{}, err
	}
	timer.End("order_id", order.ID, "fill_price", order.FillPrice, "status", order.Status)
	return order, nil
}

func (oe *observableExecutor) PlaceStopLoss(ctx context.Context, symbol string, amount, stopPrice float64) (types.OrderResult, error) {
	timer := logger.StartOperation(ctx, "executor.PlaceStopLoss",
		"symbol", symbol,
		"amount", amount,
		"stop_price", stopPrice,
	)
	order, err := oe.inner.PlaceStopLoss(timer.GetContext(), symbol, amount, stopPrice)
	if err != nil {
		timer.EndWithError(err)
		return types.OrderResult{}, err
	}
	timer.End("order_id", order.ID, "status", order.Status)
	return order, nil
}

func (oe *observableExecutor) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	timer := logger.StartOperation(ctx, "executor.CurrentPrice", "symbol", symbol)
	price, err := oe.inner.CurrentPrice(timer.GetContext(), symbol)
	if err != nil {
		timer.EndWithError(err)
		return 0, err
	}
	timer.End("price", price)
	return price, nil
}
