package strategy

import (
	"context"
	"fmt"
	"math"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/types"
)

// NewsProvider is the slice of the news service this strategy needs.
type NewsProvider interface {
	GetSentiment(ctx context.Context, symbol string) (types.NewsSentiment, error)
}

// sentiment maps aggregated news coverage onto a direction. The +-0.15
// band keeps weak coverage from voting; the confidence floor of 30 stops
// a barely-directional average from being treated as near-certainty of
// nothing.
type sentiment struct {
	svc NewsProvider
}

func NewSentiment(svc NewsProvider) interfaces.Strategy {
	return &sentiment{svc: svc}
}

func (s *sentiment) Name() string { return "sentiment" }

func (s *sentiment) Evaluate(ctx context.Context, snap types.MarketSnapshot) (types.Signal, error) {
	ns, err := s.svc.GetSentiment(ctx, snap.Symbol)
	if err != nil {
		return types.Signal{}, fmt.Errorf("news sentiment: %w", err)
	}

	if ns.ArticleCount == 0 {
		return types.Signal{
			Direction: types.DirectionHold,
			Rationale: "no news coverage",
		}, nil
	}

	dir := types.DirectionHold
	switch {
	case ns.AverageScore >= 0.15:
		dir = types.DirectionBuy
	case ns.AverageScore <= -0.15:
		dir = types.DirectionSell
	}

	conf := math.Min(90, math.Abs(ns.AverageScore)*200)
	if conf < 30 {
		conf = 30
	}

	return types.Signal{
		Direction:  dir,
		Confidence: conf,
		Rationale:  fmt.Sprintf("news sentiment %.2f across %d articles", ns.AverageScore, ns.ArticleCount),
	}, nil
}
