package types

// NewsArticle is one scraped headline with whatever body text the source
// listing exposed.
type NewsArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content,omitempty"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at,omitempty"`
	Symbol      string `json:"symbol"`
}

// NewsSentiment aggregates lexicon scores over a batch of articles.
// AverageScore is in [-1, 1]. Zero articles means no coverage, which is
// not the same thing as neutral coverage.
type NewsSentiment struct {
	Symbol           string  `json:"symbol"`
	OverallSentiment string  `json:"overall_sentiment"`
	AverageScore     float64 `json:"average_score"`
	ArticleCount     int     `json:"article_count"`
	Positive         int     `json:"positive"`
	Negative         int     `json:"negative"`
	Neutral          int     `json:"neutral"`
	Summary          string  `json:"summary"`
	Timestamp        int64   `json:"timestamp"`
}
