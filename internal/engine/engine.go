package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/metrics"
	"crypto-trading-bot/internal/notify"
	"crypto-trading-bot/internal/store"
	"crypto-trading-bot/internal/tradelog"
	"crypto-trading-bot/internal/types"
)

var (
	// ErrHalted is returned by Run when the kill switch has latched. The
	// engine stays halted until an explicit reset.
	ErrHalted = errors.New("engine halted by kill switch")

	// ErrAlreadyRunning is returned when Run is called while the loop is
	// active.
	ErrAlreadyRunning = errors.New("engine already running")
)

// engine is the single-writer cycle orchestrator. One goroutine runs the
// trading loop; control calls from the API flip flags that the loop reads
// at cycle boundaries. Nothing preempts a cycle in flight.
type engine struct {
	cfg *store.Config
	md  interfaces.MarketData
	exc interfaces.Executor
	db  interfaces.Store
	bus *notify.Bus

	agg *aggregator
	gov *governor
	led *ledger

	mu       sync.Mutex
	ectx     EngineContext
	state    types.EngineState
	paused   bool
	closeAll bool
	running  bool
}

// Run executes the trading loop until the context is cancelled or the kill
// switch halts the engine. A cycle error shortens the next sleep to the
// backoff interval; it never stops the loop.
func (e *engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	if e.state == types.EngineHalted {
		e.mu.Unlock()
		return ErrHalted
	}
	e.running = true
	e.state = types.EngineRunning
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		if e.state == types.EngineRunning {
			e.state = types.EngineIdle
		}
		e.mu.Unlock()
		e.publishState()
	}()

	logger.Info(ctx, "Engine started",
		"symbol", e.cfg.Symbol,
		"mode", e.cfg.Mode,
		"venue", e.cfg.Venue,
		"poll_seconds", e.cfg.PollSeconds,
	)
	e.publishState()

	poll := time.Duration(e.cfg.PollSeconds) * time.Second
	backoff := time.Duration(e.cfg.BackoffSeconds) * time.Second

	for {
		res, err := e.RunCycle(ctx)

		wait := poll
		if err != nil {
			wait = backoff
			logger.ErrorWithErr(ctx, "Cycle failed", err, "symbol", e.cfg.Symbol, "retry_in", wait.String())
			e.bus.Publish(notify.Event{Type: notify.EventCycleError, Payload: map[string]any{
				"symbol": e.cfg.Symbol,
				"error":  err.Error(),
			}})
		} else if res != nil {
			logger.Debug(ctx, "Cycle complete", "symbol", res.Symbol, "action", res.Action, "reason", res.Reason)
		}

		if e.currentState() == types.EngineHalted {
			logger.Warn(ctx, "Engine halted, loop exiting", "event", "ENGINE_HALTED", "symbol", e.cfg.Symbol)
			return ErrHalted
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Engine stopping", "reason", "context cancelled")
			return nil
		case <-time.After(wait):
		}
	}
}

// Start launches Run on its own goroutine if the engine is startable. It
// exists for the API, which must be able to relaunch the loop after a
// halt + reset without blocking the request.
func (e *engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	if e.state == types.EngineHalted {
		e.mu.Unlock()
		return ErrHalted
	}
	e.mu.Unlock()

	go func() {
		if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorWithErr(context.Background(), "Engine run ended", err, "symbol", e.cfg.Symbol)
		}
	}()
	return nil
}

// RunCycle performs one full trading cycle. A panic anywhere inside is
// recovered into the returned error so a bad cycle cannot take down the
// loop.
func (e *engine) RunCycle(ctx context.Context) (res *types.CycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
			logger.Error(ctx, "Cycle panicked", "symbol", e.cfg.Symbol, "panic", fmt.Sprint(r))
		}
		e.mu.Lock()
		e.ectx.CycleCount++
		e.ectx.LastCycleAt = time.Now().UTC()
		if err != nil {
			e.ectx.LastError = err.Error()
		} else {
			e.ectx.LastError = ""
		}
		e.mu.Unlock()
		metrics.CyclesTotal.Inc()
		if err != nil {
			metrics.CycleErrorsTotal.Inc()
		}
	}()

	now := time.Now().UTC()
	symbol := e.cfg.Symbol
	res = &types.CycleResult{Symbol: symbol, Time: now, Action: "hold"}

	logger.Debug(ctx, "Starting cycle", "symbol", symbol)

	// Day rollover first so a stale daily limit cannot block today's
	// trading. The kill switch latch is never touched here.
	if e.gov.rolloverIfNewDay(now) {
		e.mu.Lock()
		e.ectx.DailyPnL = 0
		e.mu.Unlock()
		res.RolledDay = true
		logger.Info(ctx, "Daily rollover", "symbol", symbol, "date", now.Format("2006-01-02"))
		if perr := e.persistState(ctx); perr != nil {
			logger.Warn(ctx, "Failed to persist state after rollover", "error", perr.Error())
		}
	}

	// Honor a pending close-all before anything else trades.
	if e.takeCloseAll() {
		open := e.led.openPositions()
		logger.Warn(ctx, "Close-all requested, flattening positions",
			"symbol", symbol,
			"event", "CLOSE_ALL",
			"open_positions", len(open),
		)
		if cerr := e.closeAllPositions(ctx, "manual"); cerr != nil {
			return res, fmt.Errorf("close all: %w", cerr)
		}
		res.Action = "close_all"
		res.Reason = "manual close-all request"
	}

	snap, err := e.md.FetchSnapshot(ctx, symbol)
	if err != nil {
		return res, fmt.Errorf("fetch snapshot: %w", err)
	}
	res.Price = snap.Price
	logger.Debug(ctx, "Snapshot fetched", "symbol", symbol, "price", snap.Price, "candles", len(snap.Candles))

	// Mark every open position to the snapshot price.
	for _, p := range e.led.openPositions() {
		pnl := e.led.revalue(p, snap.Price)
		logger.Debug(ctx, "Position revalued",
			"symbol", p.Symbol,
			"position_id", p.ID,
			"entry_price", p.EntryPrice,
			"current_price", snap.Price,
			"unrealized_pnl", pnl,
		)
		if serr := e.db.SavePosition(ctx, *p); serr != nil {
			logger.Warn(ctx, "Failed to persist revalued position", "position_id", p.ID, "error", serr.Error())
		}
		e.bus.Publish(notify.Event{Type: notify.EventPositionUpdate, Payload: *p})
	}

	// Stop-loss breaches close unconditionally, before any pause or risk
	// gate gets a say.
	breached := e.led.checkStopLossBreaches(map[string]float64{symbol: snap.Price})
	for _, p := range breached {
		logger.Warn(ctx, "Stop loss breached",
			"symbol", p.Symbol,
			"event", "STOP_LOSS_TRIGGERED",
			"current_price", snap.Price,
			"stop_price", p.StopLossPrice,
			"entry_price", p.EntryPrice,
			"amount", p.Amount,
		)
		if cerr := e.closePosition(ctx, p, snap.Price, "stop-loss", "", nil); cerr != nil {
			logger.ErrorWithErr(ctx, "Failed to close breached position", cerr, "position_id", p.ID)
		}
	}
	if len(breached) > 0 {
		res.Action = "stop_loss"
		res.Reason = "stop loss breached"
	}

	// Kill switch on total drawdown. Trip closes everything and halts.
	e.mu.Lock()
	totalLossPct := e.ectx.TotalLossPercent()
	e.mu.Unlock()
	if e.gov.checkKillSwitch(ctx, symbol, totalLossPct) {
		e.tripKillSwitch(ctx, snap.Price, totalLossPct)
		res.Action = "halted"
		res.Reason = "kill switch tripped"
		return res, nil
	}

	if e.isPaused() {
		logger.Debug(ctx, "Engine paused, skipping decision", "symbol", symbol)
		res.Action = "skipped"
		res.Reason = "paused"
	} else {
		sig, opinions := e.agg.decide(ctx, snap)
		res.Signal = sig

		switch sig.Direction {
		case types.DirectionBuy:
			e.handleBuy(ctx, snap, sig, opinions, res)
		case types.DirectionSell:
			e.handleSell(ctx, snap, sig, opinions, res)
		default:
			res.Action = "hold"
			res.Reason = sig.Rationale
		}
	}

	if perr := e.persistState(ctx); perr != nil {
		logger.Warn(ctx, "Failed to persist engine state", "error", perr.Error())
	}
	e.updateGauges()

	return res, nil
}

// handleBuy opens a new position when the governor approves and there is
// no open position for the symbol yet.
func (e *engine) handleBuy(ctx context.Context, snap types.MarketSnapshot, sig types.Signal, opinions []types.WeightedOpinion, res *types.CycleResult) {
	if p := e.led.openFor(snap.Symbol); p != nil {
		logger.Debug(ctx, "BUY signal with position already open, holding", "symbol", snap.Symbol, "position_id", p.ID)
		res.Action = "hold"
		res.Reason = "position already open"
		return
	}

	e.mu.Lock()
	balance := e.ectx.Balance
	dailyLossPct := e.ectx.DailyLossPercent()
	e.mu.Unlock()

	approved, reason := e.gov.validate(ctx, snap.Symbol, balance, dailyLossPct)
	if !approved {
		e.reject(ctx, snap.Symbol, types.DirectionBuy, reason, res)
		return
	}

	size := e.gov.sizePosition(balance)
	amount := size / snap.Price

	order, err := e.exc.Buy(ctx, snap.Symbol, amount)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to place BUY order", err, "symbol", snap.Symbol, "amount", amount)
		res.Action = "error"
		res.Reason = "buy order failed: " + err.Error()
		return
	}

	fill := order.FillPrice
	if fill <= 0 {
		fill = snap.Price
	}
	stop := fill * (1.0 - e.cfg.Risk.StopLossPercent/100.0)

	// The venue-side stop is belt and braces; the ledger breach check
	// protects the position even if this fails.
	if _, serr := e.exc.PlaceStopLoss(ctx, snap.Symbol, amount, stop); serr != nil {
		logger.Warn(ctx, "Failed to place stop-loss order",
			"symbol", snap.Symbol,
			"stop_price", stop,
			"error", serr.Error(),
		)
	}

	pos, perr := e.led.open(snap.Symbol, fill, amount, stop)
	if perr != nil {
		logger.ErrorWithErr(ctx, "Failed to open ledger position", perr, "symbol", snap.Symbol)
		res.Action = "error"
		res.Reason = perr.Error()
		return
	}

	e.mu.Lock()
	e.ectx.Balance -= fill * amount
	e.mu.Unlock()

	logger.Trade(ctx, snap.Symbol, string(types.DirectionBuy), amount, fill, order.ID,
		"confidence", sig.Confidence,
		"stop_price", stop,
		"simulated", order.Simulated,
	)
	_ = tradelog.Append(tradelog.Entry{
		Symbol:     snap.Symbol,
		Side:       string(types.DirectionBuy),
		Amount:     amount,
		Price:      fill,
		OrderID:    order.ID,
		Reason:     "signal",
		Confidence: sig.Confidence,
		Simulated:  order.Simulated,
	})

	trade := types.Trade{
		ID:             uuid.NewString(),
		Symbol:         snap.Symbol,
		Side:           types.DirectionBuy,
		Amount:         amount,
		Price:          fill,
		SignalSnapshot: marshalOpinions(opinions),
		Rationale:      sig.Rationale,
		Reason:         "signal",
		Simulated:      order.Simulated,
		Timestamp:      time.Now().UTC(),
	}
	if serr := e.db.SaveTrade(ctx, trade); serr != nil {
		logger.Warn(ctx, "Failed to persist trade", "trade_id", trade.ID, "error", serr.Error())
	}
	if serr := e.db.SavePosition(ctx, *pos); serr != nil {
		logger.Warn(ctx, "Failed to persist position", "position_id", pos.ID, "error", serr.Error())
	}

	metrics.TradesTotal.WithLabelValues(string(types.DirectionBuy), "signal").Inc()
	e.bus.Publish(notify.Event{Type: notify.EventTradeExecuted, Payload: trade})
	e.bus.Publish(notify.Event{Type: notify.EventPositionUpdate, Payload: *pos})

	res.Action = "buy"
	res.Reason = sig.Rationale
	res.Orders = append(res.Orders, order)
}

// handleSell closes the open position when the governor approves. A SELL
// with nothing open is a hold.
func (e *engine) handleSell(ctx context.Context, snap types.MarketSnapshot, sig types.Signal, opinions []types.WeightedOpinion, res *types.CycleResult) {
	p := e.led.openFor(snap.Symbol)
	if p == nil {
		logger.Debug(ctx, "SELL signal with no open position, holding", "symbol", snap.Symbol)
		res.Action = "hold"
		res.Reason = "no position to sell"
		return
	}

	e.mu.Lock()
	balance := e.ectx.Balance
	dailyLossPct := e.ectx.DailyLossPercent()
	e.mu.Unlock()

	approved, reason := e.gov.validate(ctx, snap.Symbol, balance, dailyLossPct)
	if !approved {
		e.reject(ctx, snap.Symbol, types.DirectionSell, reason, res)
		return
	}

	if err := e.closePosition(ctx, p, snap.Price, "signal", sig.Rationale, opinions); err != nil {
		logger.ErrorWithErr(ctx, "Failed to close position on SELL signal", err, "position_id", p.ID)
		res.Action = "error"
		res.Reason = "sell order failed: " + err.Error()
		return
	}

	res.Action = "sell"
	res.Reason = sig.Rationale
}

// closePosition sells the full position and settles the ledger and account.
// The sell order goes out first: if it fails the position stays open and
// the caller decides what to do next cycle. fallbackPrice is used as the
// exit when the executor reports no fill price.
func (e *engine) closePosition(ctx context.Context, p *types.Position, fallbackPrice float64, reason, rationale string, opinions []types.WeightedOpinion) error {
	order, err := e.exc.Sell(ctx, p.Symbol, p.Amount)
	if err != nil {
		return fmt.Errorf("sell order: %w", err)
	}

	exit := order.FillPrice
	if exit <= 0 {
		exit = fallbackPrice
	}

	realized, cerr := e.led.close(p, exit)
	if cerr != nil {
		return cerr
	}

	e.mu.Lock()
	e.ectx.Balance += exit * p.Amount
	e.ectx.realize(realized)
	e.mu.Unlock()

	logger.Trade(ctx, p.Symbol, string(types.DirectionSell), p.Amount, exit, order.ID,
		"reason", reason,
		"entry_price", p.EntryPrice,
		"realized_pnl", realized,
		"simulated", order.Simulated,
	)
	_ = tradelog.Append(tradelog.Entry{
		Symbol:    p.Symbol,
		Side:      string(types.DirectionSell),
		Amount:    p.Amount,
		Price:     exit,
		OrderID:   order.ID,
		Reason:    reason,
		PnL:       realized,
		Simulated: order.Simulated,
	})

	trade := types.Trade{
		ID:             uuid.NewString(),
		Symbol:         p.Symbol,
		Side:           types.DirectionSell,
		Amount:         p.Amount,
		Price:          exit,
		ExitPrice:      exit,
		RealizedPnL:    realized,
		SignalSnapshot: marshalOpinions(opinions),
		Rationale:      rationale,
		Reason:         reason,
		Simulated:      order.Simulated,
		Timestamp:      time.Now().UTC(),
	}
	if serr := e.db.SaveTrade(ctx, trade); serr != nil {
		logger.Warn(ctx, "Failed to persist trade", "trade_id", trade.ID, "error", serr.Error())
	}
	if serr := e.db.SavePosition(ctx, *p); serr != nil {
		logger.Warn(ctx, "Failed to persist closed position", "position_id", p.ID, "error", serr.Error())
	}
	date := time.Now().UTC().Format("2006-01-02")
	if serr := e.db.UpsertDailyStat(ctx, date, realized); serr != nil {
		logger.Warn(ctx, "Failed to update daily stats", "date", date, "error", serr.Error())
	}

	metrics.TradesTotal.WithLabelValues(string(types.DirectionSell), reason).Inc()
	e.bus.Publish(notify.Event{Type: notify.EventTradeExecuted, Payload: trade})
	e.bus.Publish(notify.Event{Type: notify.EventPositionUpdate, Payload: *p})

	return nil
}

// closeAllPositions flattens every open position. Failures are logged and
// the remaining positions are still attempted; the first error is returned.
func (e *engine) closeAllPositions(ctx context.Context, reason string) error {
	var firstErr error
	for _, p := range e.led.openPositions() {
		if err := e.closePosition(ctx, p, p.CurrentPrice, reason, "", nil); err != nil {
			logger.ErrorWithErr(ctx, "Failed to close position", err, "position_id", p.ID, "reason", reason)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	e.updateGauges()
	return firstErr
}

// tripKillSwitch flattens whatever is still open and halts the engine.
// The governor latch is already set by the time this runs.
func (e *engine) tripKillSwitch(ctx context.Context, price, totalLossPct float64) {
	e.mu.Lock()
	balance := e.ectx.Balance
	e.mu.Unlock()

	logger.Error(ctx, "Kill switch tripped, halting engine",
		"symbol", e.cfg.Symbol,
		"event", "KILL_SWITCH",
		"total_loss_pct", totalLossPct,
		"threshold_pct", e.cfg.Risk.KillSwitchPercent,
		"balance", balance,
		"price", price,
		"open_positions", len(e.led.openPositions()),
	)

	if err := e.closeAllPositions(ctx, "kill-switch"); err != nil {
		logger.ErrorWithErr(ctx, "Failed to flatten positions on kill switch", err, "symbol", e.cfg.Symbol)
	}

	e.mu.Lock()
	e.state = types.EngineHalted
	e.mu.Unlock()

	if err := e.persistState(ctx); err != nil {
		logger.Warn(ctx, "Failed to persist state after kill switch", "error", err.Error())
	}

	metrics.KillSwitchTripsTotal.Inc()
	e.bus.Publish(notify.Event{Type: notify.EventKillSwitch, Payload: e.gov.snapshot()})
	e.publishState()
}

// reject records a governor rejection without taking any action.
func (e *engine) reject(ctx context.Context, symbol string, side types.Direction, reason string, res *types.CycleResult) {
	res.Action = "rejected"
	res.Reason = reason

	metrics.RiskRejectionsTotal.WithLabelValues(rejectionCode(reason)).Inc()
	e.bus.Publish(notify.Event{Type: notify.EventRiskRejection, Payload: map[string]any{
		"symbol": symbol,
		"side":   string(side),
		"reason": reason,
	}})
}

// rejectionCode maps a free-form rejection reason onto a bounded metric
// label.
func rejectionCode(reason string) string {
	switch {
	case strings.Contains(reason, "kill switch"):
		return "kill_switch"
	case strings.Contains(reason, "daily loss"):
		return "daily_loss_limit"
	case strings.Contains(reason, "minimum position"):
		return "min_position"
	default:
		return "other"
	}
}

func marshalOpinions(opinions []types.WeightedOpinion) string {
	if len(opinions) == 0 {
		return ""
	}
	b, err := json.Marshal(opinions)
	if err != nil {
		return ""
	}
	return string(b)
}

// persistState writes the engine/risk state row so the latch and balances
// survive a restart.
func (e *engine) persistState(ctx context.Context) error {
	rs := e.gov.snapshot()

	e.mu.Lock()
	row := types.EngineStateRow{
		StartingCapital: e.ectx.StartingCapital,
		Balance:         e.ectx.Balance,
		DailyPnL:        e.ectx.DailyPnL,
		TotalPnL:        e.ectx.TotalPnL,
		Locked:          rs.Locked,
		AnchorDate:      rs.AnchorDate,
		UpdatedAt:       time.Now().UTC(),
	}
	e.mu.Unlock()

	return e.db.SaveEngineState(ctx, row)
}

// restore rehydrates account state, the risk latch and open positions from
// the store. Called once at construction.
func (e *engine) restore(ctx context.Context) error {
	row, err := e.db.LoadEngineState(ctx)
	if err != nil {
		return fmt.Errorf("load engine state: %w", err)
	}
	if row != nil {
		starting := row.StartingCapital
		if starting <= 0 {
			starting = e.cfg.Risk.StartingCapital
		}
		e.ectx = EngineContext{
			StartingCapital: starting,
			Balance:         row.Balance,
			DailyPnL:        row.DailyPnL,
			TotalPnL:        row.TotalPnL,
		}
		e.gov.restore(row.Locked, row.AnchorDate)
		if row.Locked {
			e.state = types.EngineHalted
		}
	} else {
		e.ectx = EngineContext{
			StartingCapital: e.cfg.Risk.StartingCapital,
			Balance:         e.cfg.Risk.StartingCapital,
		}
	}

	positions, err := e.db.LoadOpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("load open positions: %w", err)
	}
	e.led.load(positions)

	logger.Info(ctx, "Engine state restored",
		"balance", e.ectx.Balance,
		"daily_pnl", e.ectx.DailyPnL,
		"total_pnl", e.ectx.TotalPnL,
		"locked", e.gov.isLocked(),
		"open_positions", len(positions),
	)
	return nil
}

func (e *engine) updateGauges() {
	metrics.OpenPositions.Set(float64(len(e.led.openPositions())))
	e.mu.Lock()
	metrics.AccountBalance.Set(e.ectx.Balance)
	e.mu.Unlock()
}

func (e *engine) publishState() {
	e.bus.Publish(notify.Event{Type: notify.EventEngineState, Payload: e.Status()})
}

func (e *engine) currentState() types.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *engine) isPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *engine) takeCloseAll() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closeAll {
		return false
	}
	e.closeAll = false
	return true
}

// Pause suspends decision making from the next cycle on. Revaluation and
// stop-loss monitoring keep running while paused.
func (e *engine) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
	logger.Info(context.Background(), "Engine paused", "symbol", e.cfg.Symbol)
	e.publishState()
}

// Resume lifts a pause.
func (e *engine) Resume() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
	logger.Info(context.Background(), "Engine resumed", "symbol", e.cfg.Symbol)
	e.publishState()
}

// RequestCloseAll asks the loop to flatten everything at the start of the
// next cycle.
func (e *engine) RequestCloseAll() {
	e.mu.Lock()
	e.closeAll = true
	e.mu.Unlock()
	logger.Warn(context.Background(), "Close-all requested", "symbol", e.cfg.Symbol, "event", "CLOSE_ALL_REQUESTED")
}

// ResetKillSwitch clears the latch and returns a halted engine to IDLE so
// it can be started again. Allowed in any state.
func (e *engine) ResetKillSwitch() error {
	ctx := context.Background()
	e.gov.reset(ctx)

	e.mu.Lock()
	if e.state == types.EngineHalted {
		e.state = types.EngineIdle
	}
	e.ectx.LastError = ""
	e.mu.Unlock()

	if err := e.persistState(ctx); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	e.publishState()
	return nil
}

// SetStrategyWeight changes a strategy's voting weight.
func (e *engine) SetStrategyWeight(name string, weight float64) error {
	if weight < 0 || weight > 1 {
		return fmt.Errorf("weight must be between 0-1, got %.2f", weight)
	}
	if err := e.agg.setWeight(name, weight); err != nil {
		return err
	}
	logger.Info(context.Background(), "Strategy weight updated", "strategy", name, "weight", weight)
	return nil
}

// EnableStrategy turns a strategy's vote back on.
func (e *engine) EnableStrategy(name string) error {
	if err := e.agg.setEnabled(name, true); err != nil {
		return err
	}
	logger.Info(context.Background(), "Strategy enabled", "strategy", name)
	return nil
}

// DisableStrategy excludes a strategy from voting.
func (e *engine) DisableStrategy(name string) error {
	if err := e.agg.setEnabled(name, false); err != nil {
		return err
	}
	logger.Info(context.Background(), "Strategy disabled", "strategy", name)
	return nil
}

// Status reports a consistent snapshot for the API and dashboard.
func (e *engine) Status() types.EngineStatus {
	rs := e.gov.snapshot()
	open := e.led.snapshot()
	unrealized := e.led.totalUnrealized()

	e.mu.Lock()
	defer e.mu.Unlock()
	return types.EngineStatus{
		State:            e.state,
		Paused:           e.paused,
		Mode:             e.cfg.Mode,
		Symbol:           e.cfg.Symbol,
		Balance:          e.ectx.Balance,
		DailyPnL:         e.ectx.DailyPnL,
		TotalPnL:         e.ectx.TotalPnL,
		UnrealizedPnL:    unrealized,
		DailyLossPercent: e.ectx.DailyLossPercent(),
		TotalLossPercent: e.ectx.TotalLossPercent(),
		Locked:           rs.Locked,
		OpenPositions:    len(open),
		CycleCount:       e.ectx.CycleCount,
		LastCycleAt:      e.ectx.LastCycleAt,
		LastError:        e.ectx.LastError,
	}
}

// Strategies lists the registered strategies in registration order.
func (e *engine) Strategies() []types.StrategyInfo {
	return e.agg.list()
}

// Positions returns copies of the open positions.
func (e *engine) Positions() []types.Position {
	return e.led.snapshot()
}
