package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/store"
	"crypto-trading-bot/internal/ta"
	"crypto-trading-bot/internal/trace"
	"crypto-trading-bot/internal/types"
)

const llmSchema = `{"direction":"BUY|SELL|HOLD","confidence":0-100,"rationale":"short explanation"}`

const defaultSystemPrompt = "You are a disciplined crypto trading assistant. " +
	"You will receive market state as JSON. Respond ONLY with compact JSON matching the schema."

// llmStrategy asks an OpenAI-compatible chat endpoint for an opinion on a
// compact JSON view of the market. A reply that does not parse is a HOLD,
// never an error: a chatty model must not poison the cycle.
type llmStrategy struct {
	cfg    *store.Config
	client *http.Client
}

func NewLLM(cfg *store.Config) interfaces.Strategy {
	return &llmStrategy{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (l *llmStrategy) Name() string { return "llm" }

func (l *llmStrategy) Evaluate(ctx context.Context, snap types.MarketSnapshot) (types.Signal, error) {
	ctx, span := trace.StartSpan(ctx, "llm-api-call")
	defer span.End()

	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return types.Signal{}, errors.New("LLM_API_KEY missing")
	}

	state, err := json.Marshal(l.buildState(snap))
	if err != nil {
		return types.Signal{}, fmt.Errorf("marshal market state: %w", err)
	}
	prompt := fmt.Sprintf("Schema:%s\nState:%s", llmSchema, string(state))

	system := l.cfg.LLM.System
	if system == "" {
		system = defaultSystemPrompt
	}

	body := map[string]any{
		"model": l.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"temperature": l.cfg.LLM.Temperature,
		"max_tokens":  l.cfg.LLM.MaxTokens,
	}
	bb, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", l.cfg.LLM.Endpoint, bytes.NewReader(bb))
	if err != nil {
		return types.Signal{}, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return types.Signal{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return types.Signal{}, fmt.Errorf("llm http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return types.Signal{}, err
	}
	if len(r.Choices) == 0 {
		return types.Signal{}, errors.New("no choices")
	}

	return parseReply(r.Choices[0].Message.Content), nil
}

// buildState assembles the compact market view the model sees: symbol,
// price, latest candle and whatever indicators the series supports. NaN
// indicators are omitted since they cannot travel as JSON.
func (l *llmStrategy) buildState(snap types.MarketSnapshot) map[string]any {
	closes := make([]float64, len(snap.Candles))
	for i, c := range snap.Candles {
		closes[i] = c.Close
	}

	state := map[string]any{
		"symbol": snap.Symbol,
		"price":  snap.Price,
	}
	if len(snap.Candles) > 0 {
		latest := snap.Candles[len(snap.Candles)-1]
		state["latest"] = map[string]any{
			"ts":    latest.Ts,
			"open":  latest.Open,
			"high":  latest.High,
			"low":   latest.Low,
			"close": latest.Close,
			"vol":   latest.Vol,
		}
	}

	inds := map[string]float64{}
	if v := ta.RSI(closes, l.cfg.Indicators.RSIPeriod); !math.IsNaN(v) {
		inds["rsi"] = v
	}
	if v := ta.SMA(closes, l.cfg.Indicators.MAShort); !math.IsNaN(v) {
		inds["sma_short"] = v
	}
	if v := ta.SMA(closes, l.cfg.Indicators.MALong); !math.IsNaN(v) {
		inds["sma_long"] = v
	}
	if line, sig, hist := ta.MACD(closes, l.cfg.Indicators.MACDFast, l.cfg.Indicators.MACDSlow, l.cfg.Indicators.MACDSignal); !math.IsNaN(line) {
		inds["macd_line"] = line
		inds["macd_signal"] = sig
		inds["macd_hist"] = hist
	}
	state["indicators"] = inds

	return state
}

// parseReply turns the model's text into a signal, downgrading anything
// malformed to HOLD.
func parseReply(content string) types.Signal {
	var reply struct {
		Direction  string  `json:"direction"`
		Confidence float64 `json:"confidence"`
		Rationale  string  `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &reply); err != nil {
		return types.Signal{Direction: types.DirectionHold, Rationale: "invalid llm reply"}
	}

	dir := types.Direction(strings.ToUpper(strings.TrimSpace(reply.Direction)))
	switch dir {
	case types.DirectionBuy, types.DirectionSell, types.DirectionHold:
	default:
		dir = types.DirectionHold
	}

	if reply.Confidence < 0 || reply.Confidence > 100 {
		reply.Confidence = 0
	}

	return types.Signal{
		Direction:  dir,
		Confidence: reply.Confidence,
		Rationale:  reply.Rationale,
	}
}
