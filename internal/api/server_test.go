package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"crypto-trading-bot/internal/engine"
	"crypto-trading-bot/internal/notify"
	"crypto-trading-bot/internal/types"
)

type fakeEngine struct {
	paused      bool
	resumed     bool
	closeAll    bool
	resetCalled bool
	startErr    error

	weightName  string
	weightValue float64
	weightErr   error
	enableErr   error

	status     types.EngineStatus
	strategies []types.StrategyInfo
	positions  []types.Position
}

func (f *fakeEngine) Run(ctx context.Context) error   { return nil }
func (f *fakeEngine) Start(ctx context.Context) error { return f.startErr }
func (f *fakeEngine) RunCycle(ctx context.Context) (*types.CycleResult, error) {
	return &types.CycleResult{}, nil
}
func (f *fakeEngine) Pause()            { f.paused = true }
func (f *fakeEngine) Resume()           { f.resumed = true }
func (f *fakeEngine) RequestCloseAll()  { f.closeAll = true }
func (f *fakeEngine) ResetKillSwitch() error {
	f.resetCalled = true
	return nil
}
func (f *fakeEngine) SetStrategyWeight(name string, weight float64) error {
	if f.weightErr != nil {
		return f.weightErr
	}
	f.weightName = name
	f.weightValue = weight
	return nil
}
func (f *fakeEngine) EnableStrategy(name string) error  { return f.enableErr }
func (f *fakeEngine) DisableStrategy(name string) error { return f.enableErr }
func (f *fakeEngine) Status() types.EngineStatus        { return f.status }
func (f *fakeEngine) Strategies() []types.StrategyInfo  { return f.strategies }
func (f *fakeEngine) Positions() []types.Position       { return f.positions }

type fakeStore struct {
	trades   []types.Trade
	stats    []types.DailyStat
	gotLimit int
	gotDays  int
}

func (f *fakeStore) SaveTrade(ctx context.Context, t types.Trade) error       { return nil }
func (f *fakeStore) SavePosition(ctx context.Context, p types.Position) error { return nil }
func (f *fakeStore) LoadOpenPositions(ctx context.Context) ([]types.Position, error) {
	return nil, nil
}
func (f *fakeStore) RecentTrades(ctx context.Context, limit int) ([]types.Trade, error) {
	f.gotLimit = limit
	return f.trades, nil
}
func (f *fakeStore) SaveEngineState(ctx context.Context, row types.EngineStateRow) error {
	return nil
}
func (f *fakeStore) LoadEngineState(ctx context.Context) (*types.EngineStateRow, error) {
	return nil, nil
}
func (f *fakeStore) UpsertDailyStat(ctx context.Context, date string, realizedPnL float64) error {
	return nil
}
func (f *fakeStore) DailyStats(ctx context.Context, days int) ([]types.DailyStat, error) {
	f.gotDays = days
	return f.stats, nil
}
func (f *fakeStore) Close() error { return nil }

func newTestServer(t *testing.T, eng *fakeEngine, store *fakeStore) (*httptest.Server, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := notify.NewHub(notify.NewBus())
	server := NewServer(context.Background(), eng, store, hub, SystemMeta{
		Mode:    "PAPER",
		Venue:   "binance",
		Symbol:  "BTC/USDT",
		Version: "test",
	})

	ts := httptest.NewServer(server.Router)
	return ts, ts.Close
}

func doJSON(t *testing.T, method, url string, payload, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts, cleanup := newTestServer(t, &fakeEngine{}, &fakeStore{})
	defer cleanup()

	var resp map[string]string
	status := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if resp["status"] != "ok" || resp["mode"] != "PAPER" {
		t.Errorf("Unexpected healthz body: %v", resp)
	}
}

func TestGetStatus(t *testing.T) {
	eng := &fakeEngine{status: types.EngineStatus{
		State:   types.EngineRunning,
		Mode:    "PAPER",
		Symbol:  "BTC/USDT",
		Balance: 9250.5,
		Locked:  false,
	}}
	ts, cleanup := newTestServer(t, eng, &fakeStore{})
	defer cleanup()

	var resp types.EngineStatus
	status := doJSON(t, http.MethodGet, ts.URL+"/api/v1/status", nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if resp.State != types.EngineRunning || resp.Balance != 9250.5 {
		t.Errorf("Unexpected status: %+v", resp)
	}
}

func TestGetPositionsEmptyIsArray(t *testing.T) {
	ts, cleanup := newTestServer(t, &fakeEngine{}, &fakeStore{})
	defer cleanup()

	resp, err := http.Get(ts.URL + "/api/v1/positions")
	if err != nil {
		t.Fatalf("get positions: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", body)
	}
}

func TestGetTradesClampsLimit(t *testing.T) {
	store := &fakeStore{trades: []types.Trade{{ID: "t-1", Symbol: "BTC/USDT"}}}
	ts, cleanup := newTestServer(t, &fakeEngine{}, store)
	defer cleanup()

	var trades []types.Trade
	status := doJSON(t, http.MethodGet, ts.URL+"/api/v1/trades?limit=0", nil, &trades)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if store.gotLimit != 50 {
		t.Errorf("Expected default limit 50, got %d", store.gotLimit)
	}
	if len(trades) != 1 || trades[0].ID != "t-1" {
		t.Errorf("Unexpected trades: %+v", trades)
	}

	doJSON(t, http.MethodGet, ts.URL+"/api/v1/trades?limit=9999", nil, &trades)
	if store.gotLimit != 500 {
		t.Errorf("Expected limit capped at 500, got %d", store.gotLimit)
	}
}

func TestGetDailyStatsClampsDays(t *testing.T) {
	store := &fakeStore{stats: []types.DailyStat{{Date: "2026-03-14", Trades: 3}}}
	ts, cleanup := newTestServer(t, &fakeEngine{}, store)
	defer cleanup()

	var stats []types.DailyStat
	status := doJSON(t, http.MethodGet, ts.URL+"/api/v1/stats/daily", nil, &stats)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if store.gotDays != 30 {
		t.Errorf("Expected default days 30, got %d", store.gotDays)
	}

	doJSON(t, http.MethodGet, ts.URL+"/api/v1/stats/daily?days=1000", nil, &stats)
	if store.gotDays != 365 {
		t.Errorf("Expected days capped at 365, got %d", store.gotDays)
	}
}

func TestPauseAndResume(t *testing.T) {
	eng := &fakeEngine{}
	ts, cleanup := newTestServer(t, eng, &fakeStore{})
	defer cleanup()

	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/system/pause", nil, nil)
	if status != http.StatusOK || !eng.paused {
		t.Fatalf("Expected pause to reach the engine, status=%d paused=%v", status, eng.paused)
	}

	status = doJSON(t, http.MethodPost, ts.URL+"/api/v1/system/resume", nil, nil)
	if status != http.StatusOK || !eng.resumed {
		t.Fatalf("Expected resume to reach the engine, status=%d resumed=%v", status, eng.resumed)
	}
}

func TestStartConflictWhenNotStartable(t *testing.T) {
	eng := &fakeEngine{startErr: engine.ErrAlreadyRunning}
	ts, cleanup := newTestServer(t, eng, &fakeStore{})
	defer cleanup()

	var resp struct {
		Code string `json:"code"`
	}
	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/system/start", nil, &resp)
	if status != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", status)
	}
	if resp.Code != "NOT_STARTABLE" {
		t.Errorf("Expected code NOT_STARTABLE, got %s", resp.Code)
	}
}

func TestResetKillSwitch(t *testing.T) {
	eng := &fakeEngine{}
	ts, cleanup := newTestServer(t, eng, &fakeStore{})
	defer cleanup()

	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/system/reset-killswitch", nil, nil)
	if status != http.StatusOK || !eng.resetCalled {
		t.Fatalf("Expected reset to reach the engine, status=%d called=%v", status, eng.resetCalled)
	}
}

func TestCloseAllAccepted(t *testing.T) {
	eng := &fakeEngine{}
	ts, cleanup := newTestServer(t, eng, &fakeStore{})
	defer cleanup()

	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/positions/close-all", nil, nil)
	if status != http.StatusAccepted || !eng.closeAll {
		t.Fatalf("Expected close-all accepted, status=%d requested=%v", status, eng.closeAll)
	}
}

func TestSetStrategyWeight(t *testing.T) {
	eng := &fakeEngine{}
	ts, cleanup := newTestServer(t, eng, &fakeStore{})
	defer cleanup()

	status := doJSON(t, http.MethodPut, ts.URL+"/api/v1/strategies/technical/weight", map[string]any{
		"weight": 0.7,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if eng.weightName != "technical" || eng.weightValue != 0.7 {
		t.Errorf("Expected weight 0.7 for technical, got %s=%.2f", eng.weightName, eng.weightValue)
	}
}

func TestSetStrategyWeightValidation(t *testing.T) {
	ts, cleanup := newTestServer(t, &fakeEngine{}, &fakeStore{})
	defer cleanup()

	var resp struct {
		Code string `json:"code"`
	}
	status := doJSON(t, http.MethodPut, ts.URL+"/api/v1/strategies/technical/weight", map[string]any{}, &resp)
	if status != http.StatusBadRequest || resp.Code != "INVALID_REQUEST" {
		t.Fatalf("Expected 400 INVALID_REQUEST, got %d %s", status, resp.Code)
	}
}

func TestSetStrategyWeightUnknownStrategy(t *testing.T) {
	eng := &fakeEngine{weightErr: engine.ErrUnknownStrategy}
	ts, cleanup := newTestServer(t, eng, &fakeStore{})
	defer cleanup()

	var resp struct {
		Code string `json:"code"`
	}
	status := doJSON(t, http.MethodPut, ts.URL+"/api/v1/strategies/ghost/weight", map[string]any{
		"weight": 0.5,
	}, &resp)
	if status != http.StatusNotFound || resp.Code != "UNKNOWN_STRATEGY" {
		t.Fatalf("Expected 404 UNKNOWN_STRATEGY, got %d %s", status, resp.Code)
	}
}

func TestEnableUnknownStrategy(t *testing.T) {
	eng := &fakeEngine{enableErr: engine.ErrUnknownStrategy}
	ts, cleanup := newTestServer(t, eng, &fakeStore{})
	defer cleanup()

	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/strategies/ghost/enable", nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", status)
	}
}

func TestGetStrategies(t *testing.T) {
	eng := &fakeEngine{strategies: []types.StrategyInfo{
		{Name: "technical", Weight: 1, Enabled: true},
		{Name: "sentiment", Weight: 0.8, Enabled: false},
	}}
	ts, cleanup := newTestServer(t, eng, &fakeStore{})
	defer cleanup()

	var resp []types.StrategyInfo
	status := doJSON(t, http.MethodGet, ts.URL+"/api/v1/strategies", nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if len(resp) != 2 || resp[0].Name != "technical" || resp[1].Enabled {
		t.Errorf("Unexpected strategies: %+v", resp)
	}
}
