// Package eodobs wraps an EodSummarizer with logging and tracing.
package eodobs

import (
	"context"
	"time"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/trace"
)

type observableSummarizer struct {
	inner interfaces.EodSummarizer
}

var _ interfaces.EodSummarizer = (*observableSummarizer)(nil)

func Wrap(inner interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observableSummarizer{inner: inner}
}

func (o *observableSummarizer) SummarizeDay(t time.Time) (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "eod.SummarizeDay")
	defer span.End()

	date := t.UTC().Format("2006-01-02")
	csvPath, err := o.inner.SummarizeDay(t)
	if err != nil {
		logger.ErrorWithErr(ctx, "Daily summary failed", err, "date", date)
		return "", err
	}
	if csvPath == "" {
		logger.Info(ctx, "No trades to summarize", "date", date)
		return "", nil
	}
	logger.Info(ctx, "Daily summary written", "date", date, "csv_path", csvPath)
	return csvPath, nil
}

func (o *observableSummarizer) SummarizePrevious() (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "eod.SummarizePrevious")
	defer span.End()

	csvPath, err := o.inner.SummarizePrevious()
	if err != nil {
		logger.ErrorWithErr(ctx, "Previous-day summary failed", err)
		return "", err
	}
	if csvPath == "" {
		logger.Info(ctx, "No trades to summarize for previous day")
		return "", nil
	}
	logger.Info(ctx, "Previous-day summary written", "csv_path", csvPath)
	return csvPath, nil
}

func (o *observableSummarizer) ShouldRunNow() (bool, string) {
	shouldRun, csvPath := o.inner.ShouldRunNow()
	if shouldRun {
		logger.Debug(context.Background(), "Daily summary due", "csv_path", csvPath)
	}
	return shouldRun, csvPath
}
