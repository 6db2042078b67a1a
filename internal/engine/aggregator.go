package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/tradelog"
	"crypto-trading-bot/internal/types"
)

// ErrUnknownStrategy is returned when a control call names a strategy
// that was never registered.
var ErrUnknownStrategy = errors.New("unknown strategy")

// source pairs a strategy with its operator-tunable weight and enabled flag.
type source struct {
	strategy interfaces.Strategy
	weight   float64
	enabled  bool
}

// aggregator collects weighted opinions from the registered strategies and
// combines them into a single decision. Registration order is preserved so
// rationales and tie-breaks are deterministic.
type aggregator struct {
	mu        sync.Mutex
	order     []string
	sources   map[string]*source
	threshold float64
}

// newAggregator creates an empty aggregator with the given confidence
// threshold for the combined decision.
func newAggregator(threshold float64) *aggregator {
	return &aggregator{
		sources:   make(map[string]*source),
		threshold: threshold,
	}
}

// register adds a strategy under its own name. Registering the same name
// twice replaces the previous entry but keeps its position in the order.
func (a *aggregator) register(s interfaces.Strategy, weight float64, enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := s.Name()
	if _, ok := a.sources[name]; !ok {
		a.order = append(a.order, name)
	}
	a.sources[name] = &source{strategy: s, weight: weight, enabled: enabled}
}

// setWeight updates the weight of a registered strategy.
func (a *aggregator) setWeight(name string, weight float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	src, ok := a.sources[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	src.weight = weight
	return nil
}

// setEnabled toggles a registered strategy on or off.
func (a *aggregator) setEnabled(name string, enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	src, ok := a.sources[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	src.enabled = enabled
	return nil
}

// list returns the registered strategies in registration order.
func (a *aggregator) list() []types.StrategyInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]types.StrategyInfo, 0, len(a.order))
	for _, name := range a.order {
		src := a.sources[name]
		out = append(out, types.StrategyInfo{Name: name, Weight: src.weight, Enabled: src.enabled})
	}
	return out
}

// collect evaluates every enabled strategy against the snapshot and returns
// one weighted opinion per registered source, in registration order.
//
// A strategy that returns an error is treated as disabled for this cycle
// only: its opinion is carried through with Enabled=false so the combine
// step and the audit trail still see it, and a warning is logged. Errors
// never propagate to the caller.
func (a *aggregator) collect(ctx context.Context, snapshot types.MarketSnapshot) []types.WeightedOpinion {
	// Snapshot the registry under the lock, evaluate outside it so a slow
	// strategy cannot block operator weight changes.
	a.mu.Lock()
	names := make([]string, len(a.order))
	copy(names, a.order)
	entries := make(map[string]source, len(a.sources))
	for name, src := range a.sources {
		entries[name] = *src
	}
	a.mu.Unlock()

	opinions := make([]types.WeightedOpinion, 0, len(names))
	for _, name := range names {
		entry := entries[name]
		op := types.WeightedOpinion{
			Source:  name,
			Weight:  entry.weight,
			Enabled: entry.enabled,
		}

		if entry.enabled {
			sig, err := entry.strategy.Evaluate(ctx, snapshot)
			if err != nil {
				logger.Warn(ctx, "Strategy evaluation failed, excluding from this cycle",
					"strategy", name,
					"symbol", snapshot.Symbol,
					"error", err.Error(),
				)
				op.Enabled = false
			} else {
				op.Signal = sig
				logger.Debug(ctx, "Strategy opinion",
					"strategy", name,
					"direction", string(sig.Direction),
					"confidence", sig.Confidence,
					"weight", entry.weight,
				)
			}
		}

		opinions = append(opinions, op)
	}
	return opinions
}

// combine folds weighted opinions into a single signal.
//
// Each enabled opinion contributes confidence*weight to its direction's
// score. The strictly largest score wins; any tie yields HOLD. A non-HOLD
// winner whose score is below the threshold is downgraded to HOLD with the
// winning score as confidence.
//
// Returns the combined signal and the per-direction scores for logging.
func combine(opinions []types.WeightedOpinion, threshold float64) (types.Signal, map[string]float64) {
	scores := map[string]float64{
		string(types.DirectionBuy):  0,
		string(types.DirectionSell): 0,
		string(types.DirectionHold): 0,
	}

	var parts []string
	active := 0
	for _, op := range opinions {
		if !op.Enabled {
			continue
		}
		active++
		scores[string(op.Signal.Direction)] += op.Signal.Confidence * op.Weight
		if op.Signal.Rationale != "" {
			parts = append(parts, op.Source+": "+op.Signal.Rationale)
		}
	}

	if active == 0 {
		return types.Signal{
			Direction:  types.DirectionHold,
			Confidence: 0,
			Rationale:  "no active sources",
		}, scores
	}

	winner := types.DirectionHold
	best := scores[string(types.DirectionHold)]
	tie := false
	for _, dir := range []types.Direction{types.DirectionBuy, types.DirectionSell} {
		s := scores[string(dir)]
		if s > best {
			winner = dir
			best = s
			tie = false
		} else if s == best {
			tie = true
		}
	}

	rationale := strings.Join(parts, " | ")
	if tie {
		winner = types.DirectionHold
	}

	if winner != types.DirectionHold && best < threshold {
		return types.Signal{
			Direction:  types.DirectionHold,
			Confidence: best,
			Rationale:  fmt.Sprintf("%s downgraded to HOLD: score %.1f below threshold %.1f | %s", winner, best, threshold, rationale),
		}, scores
	}

	return types.Signal{
		Direction:  winner,
		Confidence: best,
		Rationale:  rationale,
	}, scores
}

// decide runs collect and combine against the snapshot and logs the final
// decision with its per-direction scores.
func (a *aggregator) decide(ctx context.Context, snapshot types.MarketSnapshot) (types.Signal, []types.WeightedOpinion) {
	opinions := a.collect(ctx, snapshot)

	a.mu.Lock()
	threshold := a.threshold
	a.mu.Unlock()

	sig, scores := combine(opinions, threshold)

	logger.Decision(ctx, snapshot.Symbol, string(sig.Direction), sig.Confidence, sig.Rationale,
		"score_buy", scores[string(types.DirectionBuy)],
		"score_sell", scores[string(types.DirectionSell)],
		"score_hold", scores[string(types.DirectionHold)],
		"sources", len(opinions),
	)
	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		Symbol:     snapshot.Symbol,
		Direction:  string(sig.Direction),
		Confidence: sig.Confidence,
		Rationale:  sig.Rationale,
		Price:      snapshot.Price,
		Scores:     scores,
	})

	return sig, opinions
}
