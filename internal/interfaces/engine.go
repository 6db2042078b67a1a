package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// Engine runs the trading loop and exposes the operator control surface.
// Control commands are cooperative: they take effect at the next cycle
// boundary, never mid-cycle.
type Engine interface {
	Run(ctx context.Context) error
	Start(ctx context.Context) error
	RunCycle(ctx context.Context) (*types.CycleResult, error)

	Pause()
	Resume()
	RequestCloseAll()
	ResetKillSwitch() error
	SetStrategyWeight(name string, weight float64) error
	EnableStrategy(name string) error
	DisableStrategy(name string) error

	Status() types.EngineStatus
	Strategies() []types.StrategyInfo
	Positions() []types.Position
}
