package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"crypto-trading-bot/internal/types"
)

var (
	// ErrPositionExists is returned when opening a symbol that already has
	// an open position.
	ErrPositionExists = errors.New("open position already exists for symbol")

	// ErrPositionClosed is returned when closing a position that was
	// already closed.
	ErrPositionClosed = errors.New("position already closed")
)

// ledger tracks positions in memory. The engine goroutine is the only
// writer; API readers get defensive copies via snapshot accessors. Long
// positions only.
type ledger struct {
	mu        sync.RWMutex
	positions map[string]*types.Position // keyed by position ID
}

func newLedger() *ledger {
	return &ledger{positions: make(map[string]*types.Position)}
}

// open creates a new OPEN position for the symbol. At most one open
// position per symbol is allowed.
func (l *ledger) open(symbol string, entryPrice, amount, stopLossPrice float64) (*types.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.positions {
		if p.Symbol == symbol && p.Status == types.PositionOpen {
			return nil, fmt.Errorf("%w: %s", ErrPositionExists, symbol)
		}
	}

	p := &types.Position{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		EntryPrice:    entryPrice,
		Amount:        amount,
		StopLossPrice: stopLossPrice,
		CurrentPrice:  entryPrice,
		Status:        types.PositionOpen,
		OpenedAt:      time.Now().UTC(),
	}
	l.positions[p.ID] = p
	return p, nil
}

// revalue marks the position to the given price and returns the updated
// unrealized P&L: (current - entry) * amount.
func (l *ledger) revalue(p *types.Position, currentPrice float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	p.CurrentPrice = currentPrice
	p.UnrealizedPnL = (currentPrice - p.EntryPrice) * p.Amount
	return p.UnrealizedPnL
}

// close transitions the position to CLOSED exactly once and returns the
// realized P&L: (exit - entry) * amount. The position keeps that value as
// its final P&L so persisted rows and events report what the trade made.
// Closing an already closed position returns ErrPositionClosed without
// touching P&L.
func (l *ledger) close(p *types.Position, exitPrice float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p.Status == types.PositionClosed {
		return 0, fmt.Errorf("%w: %s", ErrPositionClosed, p.ID)
	}

	realized := (exitPrice - p.EntryPrice) * p.Amount
	p.Status = types.PositionClosed
	p.ExitPrice = exitPrice
	p.CurrentPrice = exitPrice
	p.UnrealizedPnL = realized
	p.ClosedAt = time.Now().UTC()
	return realized, nil
}

// openPositions returns the engine-side open positions, oldest first.
// Callers on the engine goroutine may mutate them through revalue/close.
func (l *ledger) openPositions() []*types.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*types.Position
	for _, p := range l.positions {
		if p.Status == types.PositionOpen {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

// openFor returns the open position for a symbol, or nil.
func (l *ledger) openFor(symbol string) *types.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, p := range l.positions {
		if p.Symbol == symbol && p.Status == types.PositionOpen {
			return p
		}
	}
	return nil
}

// checkStopLossBreaches returns every open position whose stop has been
// breached by the symbol's current price. The check is price <= stop:
// long positions exit when the market trades at or through the stop.
func (l *ledger) checkStopLossBreaches(priceBySymbol map[string]float64) []*types.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*types.Position
	for _, p := range l.positions {
		if p.Status != types.PositionOpen || p.StopLossPrice <= 0 {
			continue
		}
		price, ok := priceBySymbol[p.Symbol]
		if !ok {
			continue
		}
		if price <= p.StopLossPrice {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

// snapshot returns reader-side copies of all open positions, oldest first.
func (l *ledger) snapshot() []types.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []types.Position
	for _, p := range l.positions {
		if p.Status == types.PositionOpen {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

// load rehydrates open positions from persistence on restart.
func (l *ledger) load(positions []types.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range positions {
		p := positions[i]
		if p.Status != types.PositionOpen {
			continue
		}
		l.positions[p.ID] = &p
	}
}

// totalUnrealized sums unrealized P&L across open positions.
func (l *ledger) totalUnrealized() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var sum float64
	for _, p := range l.positions {
		if p.Status == types.PositionOpen {
			sum += p.UnrealizedPnL
		}
	}
	return sum
}
