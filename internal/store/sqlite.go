package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/types"
)

// sqliteStore keeps the bot restartable: trades and positions survive a
// crash and the engine state row carries the kill switch latch across runs.
type sqliteStore struct {
	db *sql.DB
}

var _ interfaces.Store = (*sqliteStore)(nil)

// Open creates (or reopens) the SQLite database at path and applies the
// schema. SQLite prefers a single writer, so the pool is capped at one
// connection.
//
// Parameters:
//   - path: database file path, parent directories are created as needed
//
// Returns:
//   - interfaces.Store: ready-to-use store
//   - error: directory, open or schema failure
func Open(path string) (interfaces.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) SaveTrade(ctx context.Context, t types.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (id, symbol, side, amount, price, exit_price, realized_pnl, signal_snapshot, rationale, reason, simulated, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, string(t.Side), t.Amount, t.Price, t.ExitPrice,
		t.RealizedPnL, t.SignalSnapshot, t.Rationale, t.Reason, t.Simulated, t.Timestamp)
	if err != nil {
		return fmt.Errorf("save trade: %w", err)
	}
	return nil
}

func (s *sqliteStore) SavePosition(ctx context.Context, p types.Position) error {
	closedAt := sql.NullTime{Time: p.ClosedAt, Valid: !p.ClosedAt.IsZero()}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (id, symbol, entry_price, amount, stop_loss_price, current_price, unrealized_pnl, exit_price, status, opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_price = excluded.current_price,
			unrealized_pnl = excluded.unrealized_pnl,
			exit_price = excluded.exit_price,
			status = excluded.status,
			closed_at = excluded.closed_at`,
		p.ID, p.Symbol, p.EntryPrice, p.Amount, p.StopLossPrice,
		p.CurrentPrice, p.UnrealizedPnL, p.ExitPrice, string(p.Status), p.OpenedAt, closedAt)
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

func (s *sqliteStore) LoadOpenPositions(ctx context.Context) ([]types.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, entry_price, amount, stop_loss_price, current_price, unrealized_pnl, exit_price, status, opened_at, closed_at
		FROM positions
		WHERE status = ?
		ORDER BY opened_at`, string(types.PositionOpen))
	if err != nil {
		return nil, fmt.Errorf("query open positions: %w", err)
	}
	defer rows.Close()

	var positions []types.Position
	for rows.Next() {
		var (
			p        types.Position
			status   string
			closedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Symbol, &p.EntryPrice, &p.Amount, &p.StopLossPrice,
			&p.CurrentPrice, &p.UnrealizedPnL, &p.ExitPrice, &status, &p.OpenedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		p.Status = types.PositionStatus(status)
		if closedAt.Valid {
			p.ClosedAt = closedAt.Time
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (s *sqliteStore) RecentTrades(ctx context.Context, limit int) ([]types.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, side, amount, price, exit_price, realized_pnl, signal_snapshot, rationale, reason, simulated, ts
		FROM trades
		ORDER BY ts DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var (
			t    types.Trade
			side string
		)
		if err := rows.Scan(&t.ID, &t.Symbol, &side, &t.Amount, &t.Price, &t.ExitPrice,
			&t.RealizedPnL, &t.SignalSnapshot, &t.Rationale, &t.Reason, &t.Simulated, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Side = types.Direction(side)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (s *sqliteStore) SaveEngineState(ctx context.Context, row types.EngineStateRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO engine_state (id, starting_capital, balance, daily_pnl, total_pnl, locked, anchor_date, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			starting_capital = excluded.starting_capital,
			balance = excluded.balance,
			daily_pnl = excluded.daily_pnl,
			total_pnl = excluded.total_pnl,
			locked = excluded.locked,
			anchor_date = excluded.anchor_date,
			updated_at = excluded.updated_at`,
		row.StartingCapital, row.Balance, row.DailyPnL, row.TotalPnL,
		row.Locked, row.AnchorDate, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save engine state: %w", err)
	}
	return nil
}

func (s *sqliteStore) LoadEngineState(ctx context.Context) (*types.EngineStateRow, error) {
	var row types.EngineStateRow
	err := s.db.QueryRowContext(ctx, `
		SELECT starting_capital, balance, daily_pnl, total_pnl, locked, anchor_date, updated_at
		FROM engine_state
		WHERE id = 1`).Scan(&row.StartingCapital, &row.Balance, &row.DailyPnL,
		&row.TotalPnL, &row.Locked, &row.AnchorDate, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load engine state: %w", err)
	}
	return &row, nil
}

func (s *sqliteStore) UpsertDailyStat(ctx context.Context, date string, realizedPnL float64) error {
	win, loss := 0, 0
	switch {
	case realizedPnL > 0:
		win = 1
	case realizedPnL < 0:
		loss = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_stats (date, trades, wins, losses, realized_pnl)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			trades = trades + 1,
			wins = wins + excluded.wins,
			losses = losses + excluded.losses,
			realized_pnl = realized_pnl + excluded.realized_pnl`,
		date, win, loss, realizedPnL)
	if err != nil {
		return fmt.Errorf("upsert daily stat: %w", err)
	}
	return nil
}

func (s *sqliteStore) DailyStats(ctx context.Context, days int) ([]types.DailyStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, trades, wins, losses, realized_pnl
		FROM daily_stats
		ORDER BY date DESC
		LIMIT ?`, days)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []types.DailyStat
	for rows.Next() {
		var d types.DailyStat
		if err := rows.Scan(&d.Date, &d.Trades, &d.Wins, &d.Losses, &d.RealizedPnL); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		stats = append(stats, d)
	}
	return stats, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
