package eod

// tradeLine mirrors the JSON lines the tradelog package writes. Field names
// must stay in sync with tradelog.Entry.
type tradeLine struct {
	Time       string
	Symbol     string
	Side       string
	OrderID    string
	Reason     string
	Amount     float64
	Price      float64
	PnL        float64
	Confidence float64
	Simulated  bool
}

// aggRow accumulates one symbol's buys, sells and realized PnL for a day.
type aggRow struct {
	Symbol      string
	Trades      int
	BuyAmount   float64
	BuyValue    float64
	SellAmount  float64
	SellValue   float64
	RealizedPnL float64
}
