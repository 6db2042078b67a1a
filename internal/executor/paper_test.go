package executor

import (
	"context"
	"testing"

	"crypto-trading-bot/internal/types"
)

func TestPaperBuyFillsAtReferencePrice(t *testing.T) {
	p := newPaperExecutor(50000)
	ctx := context.Background()

	order, err := p.Buy(ctx, "BTC/USDT", 0.01)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if order.FillPrice != 50000 {
		t.Errorf("Expected fill price 50000, got %.2f", order.FillPrice)
	}
	if order.Side != types.DirectionBuy {
		t.Errorf("Expected BUY side, got %s", order.Side)
	}
	if !order.Simulated {
		t.Error("Expected simulated order")
	}
	if order.Status != "FILLED" {
		t.Errorf("Expected FILLED status, got %s", order.Status)
	}
}

func TestPaperOrderIDsIncrement(t *testing.T) {
	p := newPaperExecutor(50000)
	ctx := context.Background()

	first, _ := p.Buy(ctx, "BTC/USDT", 0.01)
	second, _ := p.Sell(ctx, "BTC/USDT", 0.01)

	if first.ID != "PAPER-1" {
		t.Errorf("Expected first order ID PAPER-1, got %s", first.ID)
	}
	if second.ID != "PAPER-2" {
		t.Errorf("Expected second order ID PAPER-2, got %s", second.ID)
	}
}

func TestPaperStopLossIsAcceptedNotFilled(t *testing.T) {
	p := newPaperExecutor(50000)

	order, err := p.PlaceStopLoss(context.Background(), "BTC/USDT", 0.01, 47500)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if order.Status != "ACCEPTED" {
		t.Errorf("Expected ACCEPTED status, got %s", order.Status)
	}
	if order.FillPrice != 0 {
		t.Errorf("Expected no fill price on a resting stop, got %.2f", order.FillPrice)
	}
}

func TestPaperCurrentPrice(t *testing.T) {
	p := newPaperExecutor(42000)

	price, err := p.CurrentPrice(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if price != 42000 {
		t.Errorf("Expected reference price 42000, got %.2f", price)
	}
}
