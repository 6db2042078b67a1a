package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

// governorParams are the risk limits the governor enforces. All percents
// are expressed as 0-100.
type governorParams struct {
	startingCapital float64
	positionSizePct float64
	dailyLimitPct   float64
	killSwitchPct   float64
	minPositionUSD  float64
}

// governor is the risk gate in front of every order. It owns the kill
// switch latch and the daily anchor date. The daily loss limit self-heals
// at rollover; the kill switch never does.
type governor struct {
	mu     sync.Mutex
	params governorParams

	locked     bool
	anchorDate string // YYYY-MM-DD, UTC

	// Last observed loss percents, kept for status snapshots.
	dailyLossPct float64
	totalLossPct float64
}

// newGovernor creates a governor anchored to the given time's UTC date.
func newGovernor(p governorParams, now time.Time) *governor {
	return &governor{
		params:     p,
		anchorDate: now.UTC().Format("2006-01-02"),
	}
}

// sizePosition returns the position size in quote currency for the given
// balance. The formula is unconditional; limits are enforced by validate.
func (g *governor) sizePosition(balance float64) float64 {
	return balance * g.params.positionSizePct / 100.0
}

// validate decides whether a new order may be placed right now.
//
// Checks run in precedence order: kill switch latch, daily loss limit,
// minimum position size floor. The first failure wins.
//
// Parameters:
//   - ctx: Context for logging
//   - symbol: Trading symbol, for the rejection log
//   - balance: Current account balance
//   - dailyLossPercent: Today's realized loss as a percent of starting capital
//
// Returns:
//   - approved: true if the order may proceed
//   - reason: "approved", or the rejection reason
func (g *governor) validate(ctx context.Context, symbol string, balance, dailyLossPercent float64) (approved bool, reason string) {
	g.mu.Lock()
	g.dailyLossPct = dailyLossPercent
	locked := g.locked
	limit := g.params.dailyLimitPct
	floor := g.params.minPositionUSD
	size := g.sizePosition(balance)
	g.mu.Unlock()

	switch {
	case locked:
		reason = "trading locked by kill switch"
	case dailyLossPercent >= limit:
		reason = fmt.Sprintf("daily loss limit reached (%.1f%% >= %.1f%%)", dailyLossPercent, limit)
	case size < floor:
		reason = "insufficient balance for minimum position size"
	default:
		return true, "approved"
	}

	logger.Risk(ctx, symbol, "trade_rejected",
		"reason", reason,
		"balance", balance,
		"daily_loss_pct", dailyLossPercent,
	)
	return false, reason
}

// checkKillSwitch latches the kill switch when the total loss percent
// crosses the configured threshold and reports whether trading is locked.
// The latch is one-way: once set it survives rollovers and can only be
// cleared by an explicit reset. Calling it again after the trip is a no-op
// that still reports locked.
func (g *governor) checkKillSwitch(ctx context.Context, symbol string, totalLossPercent float64) bool {
	g.mu.Lock()
	g.totalLossPct = totalLossPercent
	already := g.locked
	tripped := !already && totalLossPercent >= g.params.killSwitchPct
	if tripped {
		g.locked = true
	}
	threshold := g.params.killSwitchPct
	g.mu.Unlock()

	if tripped {
		logger.Risk(ctx, symbol, "kill_switch",
			"total_loss_pct", totalLossPercent,
			"threshold_pct", threshold,
		)
	}
	return tripped || already
}

// rolloverIfNewDay resets the daily tracking when the UTC date has changed
// since the anchor. The kill switch latch is never touched here.
func (g *governor) rolloverIfNewDay(now time.Time) bool {
	today := now.UTC().Format("2006-01-02")

	g.mu.Lock()
	defer g.mu.Unlock()

	if today == g.anchorDate {
		return false
	}
	g.anchorDate = today
	g.dailyLossPct = 0
	return true
}

// reset clears the kill switch latch. Only an explicit operator action
// reaches this. The observed loss percentages are left alone: they track
// the account, not the latch, and the next check re-trips if the loss is
// still over the threshold.
func (g *governor) reset(ctx context.Context) {
	g.mu.Lock()
	was := g.locked
	g.locked = false
	g.mu.Unlock()

	if was {
		logger.Warn(ctx, "Kill switch latch cleared by operator", "event", "KILL_SWITCH_RESET")
	}
}

// isLocked reports the latch state.
func (g *governor) isLocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked
}

// snapshot returns a copy of the governor's risk state.
func (g *governor) snapshot() types.RiskState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return types.RiskState{
		StartingCapital:  g.params.startingCapital,
		DailyLossPercent: g.dailyLossPct,
		TotalLossPercent: g.totalLossPct,
		Locked:           g.locked,
		AnchorDate:       g.anchorDate,
	}
}

// restore rehydrates the latch and anchor from persisted state.
func (g *governor) restore(locked bool, anchorDate string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locked = locked
	if anchorDate != "" {
		g.anchorDate = anchorDate
	}
}
