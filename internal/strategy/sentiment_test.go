package strategy

import (
	"context"
	"errors"
	"testing"

	"crypto-trading-bot/internal/types"
)

type stubNewsProvider struct {
	sentiment types.NewsSentiment
	err       error
	gotSymbol string
}

func (p *stubNewsProvider) GetSentiment(ctx context.Context, symbol string) (types.NewsSentiment, error) {
	p.gotSymbol = symbol
	return p.sentiment, p.err
}

func TestSentimentPositiveCoverageBuys(t *testing.T) {
	provider := &stubNewsProvider{sentiment: types.NewsSentiment{
		Symbol:           "BTC/USDT",
		OverallSentiment: "POSITIVE",
		AverageScore:     0.4,
		ArticleCount:     6,
	}}
	s := NewSentiment(provider)

	sig, err := s.Evaluate(context.Background(), types.MarketSnapshot{Symbol: "BTC/USDT", Price: 50000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if provider.gotSymbol != "BTC/USDT" {
		t.Errorf("Expected provider queried for BTC/USDT, got %s", provider.gotSymbol)
	}
	if sig.Direction != types.DirectionBuy {
		t.Fatalf("Expected BUY, got %s", sig.Direction)
	}
	if sig.Confidence != 80 {
		t.Errorf("Expected confidence 80, got %.1f", sig.Confidence)
	}
	if sig.Rationale != "news sentiment 0.40 across 6 articles" {
		t.Errorf("Unexpected rationale: %s", sig.Rationale)
	}
}

func TestSentimentNegativeCoverageSells(t *testing.T) {
	provider := &stubNewsProvider{sentiment: types.NewsSentiment{
		AverageScore: -0.2,
		ArticleCount: 4,
	}}
	s := NewSentiment(provider)

	sig, err := s.Evaluate(context.Background(), types.MarketSnapshot{Symbol: "ETH/USDT"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig.Direction != types.DirectionSell {
		t.Fatalf("Expected SELL, got %s", sig.Direction)
	}
	if sig.Confidence != 40 {
		t.Errorf("Expected confidence 40, got %.1f", sig.Confidence)
	}
}

func TestSentimentWeakScoreHoldsAtFloor(t *testing.T) {
	provider := &stubNewsProvider{sentiment: types.NewsSentiment{
		AverageScore: 0.05,
		ArticleCount: 3,
	}}
	s := NewSentiment(provider)

	sig, err := s.Evaluate(context.Background(), types.MarketSnapshot{Symbol: "BTC/USDT"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig.Direction != types.DirectionHold {
		t.Fatalf("Expected HOLD inside the neutral band, got %s", sig.Direction)
	}
	if sig.Confidence != 30 {
		t.Errorf("Expected confidence floor 30, got %.1f", sig.Confidence)
	}
}

func TestSentimentConfidenceCapped(t *testing.T) {
	provider := &stubNewsProvider{sentiment: types.NewsSentiment{
		AverageScore: 0.5,
		ArticleCount: 8,
	}}
	s := NewSentiment(provider)

	sig, err := s.Evaluate(context.Background(), types.MarketSnapshot{Symbol: "BTC/USDT"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig.Confidence != 90 {
		t.Errorf("Expected confidence capped at 90, got %.1f", sig.Confidence)
	}
}

func TestSentimentNoCoverageHoldsWithZeroConfidence(t *testing.T) {
	provider := &stubNewsProvider{sentiment: types.NewsSentiment{ArticleCount: 0}}
	s := NewSentiment(provider)

	sig, err := s.Evaluate(context.Background(), types.MarketSnapshot{Symbol: "BTC/USDT"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig.Direction != types.DirectionHold {
		t.Fatalf("Expected HOLD on no coverage, got %s", sig.Direction)
	}
	if sig.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %.1f", sig.Confidence)
	}
	if sig.Rationale != "no news coverage" {
		t.Errorf("Unexpected rationale: %s", sig.Rationale)
	}
}

func TestSentimentProviderErrorPropagates(t *testing.T) {
	provider := &stubNewsProvider{err: errors.New("scrape timeout")}
	s := NewSentiment(provider)

	_, err := s.Evaluate(context.Background(), types.MarketSnapshot{Symbol: "BTC/USDT"})
	if err == nil {
		t.Fatal("Expected error from failing provider, got nil")
	}
}

func TestSentimentName(t *testing.T) {
	if got := NewSentiment(&stubNewsProvider{}).Name(); got != "sentiment" {
		t.Errorf("Expected name sentiment, got %s", got)
	}
}
