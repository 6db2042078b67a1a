package engine

import "time"

// EngineContext carries the engine's mutable account state. One instance
// per engine, owned and mutated only by the cycle goroutine under the
// engine mutex; there is no package-level state.
type EngineContext struct {
	StartingCapital float64
	Balance         float64
	DailyPnL        float64
	TotalPnL        float64

	CycleCount  int64
	LastCycleAt time.Time
	LastError   string
}

// DailyLossPercent converts today's realized P&L into a loss percent of
// starting capital. Profits never count toward the loss limits, so a
// positive P&L yields 0.
func (ec *EngineContext) DailyLossPercent() float64 {
	return lossPercent(ec.DailyPnL, ec.StartingCapital)
}

// TotalLossPercent converts lifetime realized P&L into a loss percent of
// starting capital.
func (ec *EngineContext) TotalLossPercent() float64 {
	return lossPercent(ec.TotalPnL, ec.StartingCapital)
}

func lossPercent(pnl, startingCapital float64) float64 {
	if startingCapital <= 0 {
		return 0
	}
	loss := -pnl
	if loss < 0 {
		loss = 0
	}
	return loss / startingCapital * 100.0
}

// realize applies a realized P&L delta to the daily and lifetime totals.
func (ec *EngineContext) realize(pnl float64) {
	ec.DailyPnL += pnl
	ec.TotalPnL += pnl
}
