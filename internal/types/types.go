package types

import "time"

type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

type Signal struct {
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	Rationale  string    `json:"rationale"`
}

type WeightedOpinion struct {
	Source  string  `json:"source"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
	Signal  Signal  `json:"signal"`
}

type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

type MarketSnapshot struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Candles   []Candle  `json:"-"`
	FetchedAt time.Time `json:"fetched_at"`
}

type PositionStatus string

const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
)

type Position struct {
	ID            string         `json:"id"`
	Symbol        string         `json:"symbol"`
	EntryPrice    float64        `json:"entry_price"`
	Amount        float64        `json:"amount"`
	StopLossPrice float64        `json:"stop_loss_price"`
	CurrentPrice  float64        `json:"current_price"`
	UnrealizedPnL float64        `json:"unrealized_pnl"`
	ExitPrice     float64        `json:"exit_price,omitempty"`
	Status        PositionStatus `json:"status"`
	OpenedAt      time.Time      `json:"opened_at"`
	ClosedAt      time.Time      `json:"closed_at,omitempty"`
}

// Trade is the append-only audit record, one row per executed order.
// Reason tags the execution path: signal, stop-loss, kill-switch, manual.
type Trade struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	Side           Direction `json:"side"`
	Amount         float64   `json:"amount"`
	Price          float64   `json:"price"`
	ExitPrice      float64   `json:"exit_price,omitempty"`
	RealizedPnL    float64   `json:"realized_pnl,omitempty"`
	SignalSnapshot string    `json:"signal_snapshot,omitempty"`
	Rationale      string    `json:"rationale,omitempty"`
	Reason         string    `json:"reason"`
	Simulated      bool      `json:"simulated"`
	Timestamp      time.Time `json:"timestamp"`
}

type OrderResult struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      Direction `json:"side"`
	Amount    float64   `json:"amount"`
	FillPrice float64   `json:"fill_price"`
	Status    string    `json:"status"`
	Simulated bool      `json:"simulated"`
}

// RiskState is the governor's persistent snapshot. Locked is a one-way
// latch cleared only by an explicit reset; AnchorDate is YYYY-MM-DD (UTC).
type RiskState struct {
	StartingCapital  float64 `json:"starting_capital"`
	DailyLossPercent float64 `json:"daily_loss_percent"`
	TotalLossPercent float64 `json:"total_loss_percent"`
	Locked           bool    `json:"locked"`
	AnchorDate       string  `json:"anchor_date"`
}

type EngineState string

const (
	EngineIdle    EngineState = "IDLE"
	EngineRunning EngineState = "RUNNING"
	EngineHalted  EngineState = "HALTED"
)

type EngineStatus struct {
	State            EngineState `json:"state"`
	Paused           bool        `json:"paused"`
	Mode             string      `json:"mode"`
	Symbol           string      `json:"symbol"`
	Balance          float64     `json:"balance"`
	DailyPnL         float64     `json:"daily_pnl"`
	TotalPnL         float64     `json:"total_pnl"`
	UnrealizedPnL    float64     `json:"unrealized_pnl"`
	DailyLossPercent float64     `json:"daily_loss_percent"`
	TotalLossPercent float64     `json:"total_loss_percent"`
	Locked           bool        `json:"locked"`
	OpenPositions    int         `json:"open_positions"`
	CycleCount       int64       `json:"cycle_count"`
	LastCycleAt      time.Time   `json:"last_cycle_at,omitempty"`
	LastError        string      `json:"last_error,omitempty"`
}

// EngineStateRow is what the store persists between restarts: the risk
// latch plus the balances the loss percents derive from.
type EngineStateRow struct {
	StartingCapital float64
	Balance         float64
	DailyPnL        float64
	TotalPnL        float64
	Locked          bool
	AnchorDate      string
	UpdatedAt       time.Time
}

type DailyStat struct {
	Date        string  `json:"date"`
	Trades      int     `json:"trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	RealizedPnL float64 `json:"realized_pnl"`
}

type CycleResult struct {
	Symbol    string        `json:"symbol"`
	Price     float64       `json:"price"`
	Signal    Signal        `json:"signal"`
	Action    string        `json:"action"`
	Reason    string        `json:"reason"`
	Orders    []OrderResult `json:"orders,omitempty"`
	Time      time.Time     `json:"time"`
	RolledDay bool          `json:"-"`
}

type StrategyInfo struct {
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}
