package news

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"crypto-trading-bot/internal/types"
)

// SentimentAnalyzer scores articles against a fixed crypto-market lexicon.
// Pure word counting, no network calls: a headline batch scores in
// microseconds and the result is deterministic.
type SentimentAnalyzer struct{}

func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{}
}

var (
	positiveWords = wordSet(`surge surges surged rally rallies rallied soar soars soared
		gain gains gained bullish breakout adoption approval approved partnership
		upgrade upgraded record outperform institutional accumulation inflow inflows
		integration launch milestone profit growth rebound recovery optimism upside`)

	negativeWords = wordSet(`crash crashes crashed plunge plunges plunged dump dumps dumped
		bearish selloff liquidation liquidations hack hacked exploit breach ban banned
		lawsuit fraud scam fear panic collapse bankruptcy insolvency outflow outflows
		downturn losses decline declined tumble tumbled slump warning crackdown`)
)

func wordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// ScoreArticle returns the lexicon score for one article in [-1, 1].
// Title hits count double since listing pages often carry only a headline.
func (a *SentimentAnalyzer) ScoreArticle(article types.NewsArticle) float64 {
	pos := countHits(article.Title, positiveWords)*2 + countHits(article.Content, positiveWords)
	neg := countHits(article.Title, negativeWords)*2 + countHits(article.Content, negativeWords)

	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// countHits counts lexicon tokens in text
func countHits(text string, set map[string]struct{}) int {
	hits := 0
	for _, token := range tokenize(text) {
		if _, ok := set[token]; ok {
			hits++
		}
	}
	return hits
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Analyze scores a batch of articles and aggregates them into a single
// sentiment. Per-article classification uses a +-0.1 band so that a single
// weak keyword does not tip a headline out of neutral.
func (a *SentimentAnalyzer) Analyze(symbol string, articles []types.NewsArticle) types.NewsSentiment {
	if len(articles) == 0 {
		return types.NewsSentiment{
			Symbol:           symbol,
			OverallSentiment: "NEUTRAL",
			Summary:          "No articles found for analysis",
			Timestamp:        time.Now().Unix(),
		}
	}

	var total float64
	pos, neg, neu := 0, 0, 0

	for _, article := range articles {
		score := a.ScoreArticle(article)
		total += score

		switch {
		case score > 0.1:
			pos++
		case score < -0.1:
			neg++
		default:
			neu++
		}
	}

	avg := total / float64(len(articles))

	overall := "NEUTRAL"
	if avg >= 0.15 {
		overall = "POSITIVE"
	} else if avg <= -0.15 {
		overall = "NEGATIVE"
	}

	return types.NewsSentiment{
		Symbol:           symbol,
		OverallSentiment: overall,
		AverageScore:     avg,
		ArticleCount:     len(articles),
		Positive:         pos,
		Negative:         neg,
		Neutral:          neu,
		Summary: fmt.Sprintf("Analyzed %d articles: %d positive, %d negative, %d neutral",
			len(articles), pos, neg, neu),
		Timestamp: time.Now().Unix(),
	}
}
