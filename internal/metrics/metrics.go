package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "trading_cycles_total", Help: "Completed trading cycles"},
	)
	CycleErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "trading_cycle_errors_total", Help: "Trading cycles that failed and backed off"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Executed orders"},
		[]string{"side", "reason"},
	)
	RiskRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "risk_rejections_total", Help: "Trades rejected by the risk governor"},
		[]string{"reason"},
	)
	KillSwitchTripsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "kill_switch_trips_total", Help: "Kill switch activations"},
	)
	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "open_positions", Help: "Currently open positions"},
	)
	AccountBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "account_balance", Help: "Available balance in quote currency"},
	)
)

func init() {
	prometheus.MustRegister(
		CyclesTotal,
		CycleErrorsTotal,
		TradesTotal,
		RiskRejectionsTotal,
		KillSwitchTripsTotal,
		OpenPositions,
		AccountBalance,
	)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
