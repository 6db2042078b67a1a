package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// Store is the persistence collaborator. Trades are append-only; positions
// are upserted; engine state carries the risk latch across restarts.
// LoadEngineState returns nil when no state has been saved yet.
type Store interface {
	SaveTrade(ctx context.Context, t types.Trade) error
	SavePosition(ctx context.Context, p types.Position) error
	LoadOpenPositions(ctx context.Context) ([]types.Position, error)
	RecentTrades(ctx context.Context, limit int) ([]types.Trade, error)
	SaveEngineState(ctx context.Context, row types.EngineStateRow) error
	LoadEngineState(ctx context.Context) (*types.EngineStateRow, error)
	UpsertDailyStat(ctx context.Context, date string, realizedPnL float64) error
	DailyStats(ctx context.Context, days int) ([]types.DailyStat, error)
	Close() error
}
