package eod

import (
	"time"

	"crypto-trading-bot/internal/interfaces"
)

var defaultSummarizer interfaces.EodSummarizer = &summarizer{}

// SetDefaultSummarizer swaps the package-level summarizer, usually for the
// observability wrapper.
func SetDefaultSummarizer(s interfaces.EodSummarizer) {
	defaultSummarizer = s
}

func NewSummarizer() interfaces.EodSummarizer {
	return &summarizer{}
}

func SummarizeDay(t time.Time) (string, error) {
	return defaultSummarizer.SummarizeDay(t)
}

func SummarizePrevious() (string, error) {
	return defaultSummarizer.SummarizePrevious()
}

func ShouldRunNow() (bool, string) {
	return defaultSummarizer.ShouldRunNow()
}
