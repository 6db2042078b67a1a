package engine

import (
	"context"
	"time"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/notify"
	"crypto-trading-bot/internal/store"
	"crypto-trading-bot/internal/types"
)

// New wires the aggregator, governor and ledger into a runnable engine,
// registers the strategies with their configured weights, and rehydrates
// persisted state from the store.
func New(ctx context.Context, cfg *store.Config, md interfaces.MarketData, exc interfaces.Executor, db interfaces.Store, bus *notify.Bus, strategies []interfaces.Strategy) (interfaces.Engine, error) {
	e := &engine{
		cfg:   cfg,
		md:    md,
		exc:   exc,
		db:    db,
		bus:   bus,
		state: types.EngineIdle,
		agg:   newAggregator(cfg.Signals.ConfidenceThreshold),
		gov: newGovernor(governorParams{
			startingCapital: cfg.Risk.StartingCapital,
			positionSizePct: cfg.Risk.PositionSizePercent,
			dailyLimitPct:   cfg.Risk.DailyLossLimitPercent,
			killSwitchPct:   cfg.Risk.KillSwitchPercent,
			minPositionUSD:  cfg.Risk.MinPositionUSD,
		}, time.Now()),
		led: newLedger(),
	}

	for _, s := range strategies {
		weight, enabled := 0.0, false
		for _, src := range cfg.Signals.Sources {
			if src.Name == s.Name() {
				weight, enabled = src.Weight, src.Enabled
				break
			}
		}
		e.agg.register(s, weight, enabled)
	}

	if err := e.restore(ctx); err != nil {
		return nil, err
	}
	return e, nil
}
