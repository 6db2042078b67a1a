package executor

import (
	"crypto-trading-bot/internal/executor/execobs"
	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/store"
)

// New returns the executor for the configured mode, wrapped with
// observability. LIVE requires a connected exchange; PAPER ignores it.
func New(cfg *store.Config, ex interfaces.Exchange) interfaces.Executor {
	var inner interfaces.Executor
	if cfg.Mode == "LIVE" {
		inner = newLiveExecutor(ex, cfg.Venue)
	} else {
		inner = newPaperExecutor(cfg.Paper.ReferencePrice)
	}
	return execobs.Wrap(inner)
}
