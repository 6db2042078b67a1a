package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/types"
)

func openTestStore(t *testing.T) interfaces.Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trader.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEngineStateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	row, err := s.LoadEngineState(ctx)
	if err != nil {
		t.Fatalf("Unexpected error loading empty state: %v", err)
	}
	if row != nil {
		t.Fatalf("Expected nil state before first save, got %+v", row)
	}

	want := types.EngineStateRow{
		StartingCapital: 10000,
		Balance:         9500,
		DailyPnL:        -120.5,
		TotalPnL:        -500,
		Locked:          true,
		AnchorDate:      "2026-03-10",
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.SaveEngineState(ctx, want); err != nil {
		t.Fatalf("Failed to save state: %v", err)
	}

	got, err := s.LoadEngineState(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if got == nil {
		t.Fatal("Expected state row, got nil")
	}
	if got.StartingCapital != 10000 || got.Balance != 9500 {
		t.Errorf("Expected balances 10000/9500, got %.2f/%.2f", got.StartingCapital, got.Balance)
	}
	if got.DailyPnL != -120.5 || got.TotalPnL != -500 {
		t.Errorf("Expected PnL -120.5/-500, got %.2f/%.2f", got.DailyPnL, got.TotalPnL)
	}
	if !got.Locked {
		t.Error("Expected locked latch to survive the round trip")
	}
	if got.AnchorDate != "2026-03-10" {
		t.Errorf("Expected anchor date 2026-03-10, got %s", got.AnchorDate)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Expected updated_at to be set")
	}
}

func TestEngineStateUpsertKeepsSingleRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, locked := range []bool{false, true, false} {
		row := types.EngineStateRow{
			StartingCapital: 10000,
			Balance:         10000 - float64(i)*100,
			AnchorDate:      "2026-03-10",
			Locked:          locked,
			UpdatedAt:       time.Now().UTC(),
		}
		if err := s.SaveEngineState(ctx, row); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	got, err := s.LoadEngineState(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if got.Balance != 9800 {
		t.Errorf("Expected last write to win with balance 9800, got %.2f", got.Balance)
	}
	if got.Locked {
		t.Error("Expected latch cleared by last write")
	}
}

func TestPositionLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := types.Position{
		ID:            "pos-1",
		Symbol:        "BTC/USDT",
		EntryPrice:    50000,
		Amount:        0.01,
		StopLossPrice: 47500,
		CurrentPrice:  50000,
		Status:        types.PositionOpen,
		OpenedAt:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if err := s.SavePosition(ctx, p); err != nil {
		t.Fatalf("Failed to save position: %v", err)
	}

	open, err := s.LoadOpenPositions(ctx)
	if err != nil {
		t.Fatalf("Failed to load open positions: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("Expected 1 open position, got %d", len(open))
	}
	if open[0].ID != "pos-1" || open[0].EntryPrice != 50000 || open[0].StopLossPrice != 47500 {
		t.Errorf("Position fields did not round trip: %+v", open[0])
	}
	if !open[0].ClosedAt.IsZero() {
		t.Errorf("Expected zero ClosedAt on open position, got %v", open[0].ClosedAt)
	}

	p.CurrentPrice = 52000
	p.UnrealizedPnL = 20
	if err := s.SavePosition(ctx, p); err != nil {
		t.Fatalf("Failed to update position: %v", err)
	}
	open, err = s.LoadOpenPositions(ctx)
	if err != nil {
		t.Fatalf("Failed to reload open positions: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("Expected upsert to keep 1 row, got %d", len(open))
	}
	if open[0].CurrentPrice != 52000 || open[0].UnrealizedPnL != 20 {
		t.Errorf("Expected updated mark 52000/20, got %.2f/%.2f", open[0].CurrentPrice, open[0].UnrealizedPnL)
	}

	p.Status = types.PositionClosed
	p.ExitPrice = 52000
	p.UnrealizedPnL = 0
	p.ClosedAt = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	if err := s.SavePosition(ctx, p); err != nil {
		t.Fatalf("Failed to close position: %v", err)
	}

	open, err = s.LoadOpenPositions(ctx)
	if err != nil {
		t.Fatalf("Failed to load after close: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("Expected no open positions after close, got %d", len(open))
	}
}

func TestLoadOpenPositionsOrderedByOpenedAt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"pos-b", "pos-a", "pos-c"} {
		p := types.Position{
			ID:         id,
			Symbol:     "BTC/USDT",
			EntryPrice: 50000,
			Amount:     0.01,
			Status:     types.PositionOpen,
			OpenedAt:   base.Add(time.Duration(2-i) * time.Hour),
		}
		if err := s.SavePosition(ctx, p); err != nil {
			t.Fatalf("Failed to save %s: %v", id, err)
		}
	}

	open, err := s.LoadOpenPositions(ctx)
	if err != nil {
		t.Fatalf("Failed to load open positions: %v", err)
	}
	if len(open) != 3 {
		t.Fatalf("Expected 3 open positions, got %d", len(open))
	}
	if open[0].ID != "pos-c" || open[1].ID != "pos-a" || open[2].ID != "pos-b" {
		t.Errorf("Expected oldest-first order pos-c, pos-a, pos-b, got %s, %s, %s",
			open[0].ID, open[1].ID, open[2].ID)
	}
}

func TestRecentTradesNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"t-1", "t-2", "t-3"} {
		tr := types.Trade{
			ID:        id,
			Symbol:    "BTC/USDT",
			Side:      types.DirectionBuy,
			Amount:    0.01,
			Price:     50000,
			Reason:    "signal",
			Simulated: true,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveTrade(ctx, tr); err != nil {
			t.Fatalf("Failed to save trade %s: %v", id, err)
		}
	}

	trades, err := s.RecentTrades(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to load trades: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("Expected limit of 2 trades, got %d", len(trades))
	}
	if trades[0].ID != "t-3" || trades[1].ID != "t-2" {
		t.Errorf("Expected newest-first order t-3, t-2, got %s, %s", trades[0].ID, trades[1].ID)
	}
	if trades[0].Side != types.DirectionBuy {
		t.Errorf("Expected side BUY, got %s", trades[0].Side)
	}
	if !trades[0].Simulated {
		t.Error("Expected simulated flag to round trip")
	}
}

func TestTradeFieldsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tr := types.Trade{
		ID:             "t-sell",
		Symbol:         "BTC/USDT",
		Side:           types.DirectionSell,
		Amount:         0.01,
		Price:          50000,
		ExitPrice:      52000,
		RealizedPnL:    20,
		SignalSnapshot: `[{"source":"technical"}]`,
		Rationale:      "technical: RSI oversold",
		Reason:         "stop-loss",
		Timestamp:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if err := s.SaveTrade(ctx, tr); err != nil {
		t.Fatalf("Failed to save trade: %v", err)
	}

	trades, err := s.RecentTrades(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to load trades: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(trades))
	}
	got := trades[0]
	if got.ExitPrice != 52000 || got.RealizedPnL != 20 {
		t.Errorf("Expected exit 52000 pnl 20, got %.2f/%.2f", got.ExitPrice, got.RealizedPnL)
	}
	if got.SignalSnapshot != tr.SignalSnapshot {
		t.Errorf("Signal snapshot did not round trip: %s", got.SignalSnapshot)
	}
	if got.Reason != "stop-loss" {
		t.Errorf("Expected reason stop-loss, got %s", got.Reason)
	}
}

func TestDailyStatAccumulates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, pnl := range []float64{20, -10, 5} {
		if err := s.UpsertDailyStat(ctx, "2026-03-10", pnl); err != nil {
			t.Fatalf("Failed to upsert stat: %v", err)
		}
	}
	if err := s.UpsertDailyStat(ctx, "2026-03-11", -3); err != nil {
		t.Fatalf("Failed to upsert second day: %v", err)
	}

	stats, err := s.DailyStats(ctx, 30)
	if err != nil {
		t.Fatalf("Failed to load daily stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected 2 days of stats, got %d", len(stats))
	}
	if stats[0].Date != "2026-03-11" {
		t.Errorf("Expected newest day first, got %s", stats[0].Date)
	}

	day := stats[1]
	if day.Trades != 3 {
		t.Errorf("Expected 3 trades, got %d", day.Trades)
	}
	if day.Wins != 2 || day.Losses != 1 {
		t.Errorf("Expected 2 wins and 1 loss, got %d/%d", day.Wins, day.Losses)
	}
	if day.RealizedPnL != 15 {
		t.Errorf("Expected realized PnL 15, got %.2f", day.RealizedPnL)
	}
}
