package news

import (
	"testing"

	"crypto-trading-bot/internal/types"
)

func TestScoreArticlePositive(t *testing.T) {
	a := NewSentimentAnalyzer()

	article := types.NewsArticle{
		Title:   "Bitcoin surges to record as institutional inflows accelerate",
		Content: "The rally extended overnight with strong accumulation.",
	}

	score := a.ScoreArticle(article)
	if score <= 0 {
		t.Errorf("Expected positive score, got %.2f", score)
	}
	if score > 1 {
		t.Errorf("Expected score within [-1, 1], got %.2f", score)
	}
}

func TestScoreArticleNegative(t *testing.T) {
	a := NewSentimentAnalyzer()

	article := types.NewsArticle{
		Title:   "Crypto selloff deepens as exchange hack triggers panic",
		Content: "Liquidations cascaded during the crash.",
	}

	score := a.ScoreArticle(article)
	if score >= 0 {
		t.Errorf("Expected negative score, got %.2f", score)
	}
	if score < -1 {
		t.Errorf("Expected score within [-1, 1], got %.2f", score)
	}
}

func TestScoreArticleNoKeywords(t *testing.T) {
	a := NewSentimentAnalyzer()

	article := types.NewsArticle{
		Title:   "Weekly market roundup for traders",
		Content: "Prices moved during the session.",
	}

	if score := a.ScoreArticle(article); score != 0 {
		t.Errorf("Expected zero score without lexicon hits, got %.2f", score)
	}
}

func TestScoreArticleTitleWeighsDouble(t *testing.T) {
	a := NewSentimentAnalyzer()

	// One negative hit in the title outweighs one positive hit in the body.
	article := types.NewsArticle{
		Title:   "Lawsuit filed against exchange",
		Content: "Some analysts still see growth ahead.",
	}

	if score := a.ScoreArticle(article); score >= 0 {
		t.Errorf("Expected title hit to dominate, got %.2f", score)
	}
}

func TestAnalyzeAggregates(t *testing.T) {
	a := NewSentimentAnalyzer()

	articles := []types.NewsArticle{
		{Title: "Bitcoin surges on ETF approval"},
		{Title: "Rally continues as adoption grows"},
		{Title: "Miners report quarterly results"},
	}

	sentiment := a.Analyze("BTC/USDT", articles)

	if sentiment.ArticleCount != 3 {
		t.Errorf("Expected 3 articles, got %d", sentiment.ArticleCount)
	}
	if sentiment.Positive != 2 {
		t.Errorf("Expected 2 positive articles, got %d", sentiment.Positive)
	}
	if sentiment.Neutral != 1 {
		t.Errorf("Expected 1 neutral article, got %d", sentiment.Neutral)
	}
	if sentiment.OverallSentiment != "POSITIVE" {
		t.Errorf("Expected POSITIVE overall, got %s", sentiment.OverallSentiment)
	}
	if sentiment.AverageScore <= 0 {
		t.Errorf("Expected positive average, got %.2f", sentiment.AverageScore)
	}
}

func TestAnalyzeMixedIsNeutral(t *testing.T) {
	a := NewSentimentAnalyzer()

	articles := []types.NewsArticle{
		{Title: "Bitcoin surges after upgrade"},
		{Title: "Bitcoin crashes as fear spreads"},
	}

	sentiment := a.Analyze("BTC/USDT", articles)

	if sentiment.OverallSentiment != "NEUTRAL" {
		t.Errorf("Expected NEUTRAL for offsetting articles, got %s", sentiment.OverallSentiment)
	}
	if sentiment.Positive != 1 || sentiment.Negative != 1 {
		t.Errorf("Expected 1 positive and 1 negative, got %d/%d", sentiment.Positive, sentiment.Negative)
	}
}

func TestAnalyzeNoArticles(t *testing.T) {
	a := NewSentimentAnalyzer()

	sentiment := a.Analyze("BTC/USDT", nil)

	if sentiment.ArticleCount != 0 {
		t.Errorf("Expected 0 articles, got %d", sentiment.ArticleCount)
	}
	if sentiment.OverallSentiment != "NEUTRAL" {
		t.Errorf("Expected NEUTRAL, got %s", sentiment.OverallSentiment)
	}
	if sentiment.AverageScore != 0 {
		t.Errorf("Expected zero average, got %.2f", sentiment.AverageScore)
	}
}

func TestAssetQuery(t *testing.T) {
	cases := map[string]string{
		"BTC/USDT":  "bitcoin",
		"ETH/USDT":  "ethereum",
		"SOL/USDT":  "solana",
		"DOGE/USDT": "dogecoin",
		"LINK/USDT": "link",
	}
	for in, want := range cases {
		if got := assetQuery(in); got != want {
			t.Errorf("Expected %s for %s, got %s", want, in, got)
		}
	}
}
