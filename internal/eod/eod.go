// Package eod turns a day's trade log into a per-symbol CSV summary.
package eod

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"crypto-trading-bot/internal/interfaces"
)

type summarizer struct{}

var _ interfaces.EodSummarizer = (*summarizer)(nil)

// SummarizeDay reads the given UTC day's trade log, aggregates it by symbol
// and writes logs/eod/YYYY-MM-DD.csv. A day with no trade log produces no
// file and no error; realized PnL is summed straight from the log entries.
//
// Returns:
//   - csvPath: path of the written CSV, or "" when there was nothing to write
//   - error: I/O failure reading the log or writing the summary
func (s *summarizer) SummarizeDay(t time.Time) (string, error) {
	inPath := tradeFilePath(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}

	f, err := os.Open(inPath)
	if err != nil {
		return "", fmt.Errorf("open trade log: %w", err)
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var tl tradeLine
		if err := json.Unmarshal(sc.Bytes(), &tl); err != nil {
			continue
		}
		row := aggs[tl.Symbol]
		if row == nil {
			row = &aggRow{Symbol: tl.Symbol}
			aggs[tl.Symbol] = row
		}
		switch tl.Side {
		case "BUY":
			row.BuyAmount += tl.Amount
			row.BuyValue += tl.Amount * tl.Price
		case "SELL":
			row.SellAmount += tl.Amount
			row.SellValue += tl.Amount * tl.Price
		}
		row.RealizedPnL += tl.PnL
		row.Trades++
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("scan trade log: %w", err)
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := summaryCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create summary: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	headers := []string{"symbol", "trades", "buy_amount", "buy_avg", "sell_amount", "sell_avg", "realized_pnl", "gross_buy_value", "gross_sell_value"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	var totalTrades int
	var totalBuy, totalSell, totalPnL float64
	for _, k := range keys {
		r := aggs[k]
		var buyAvg, sellAvg float64
		if r.BuyAmount > 0 {
			buyAvg = r.BuyValue / r.BuyAmount
		}
		if r.SellAmount > 0 {
			sellAvg = r.SellValue / r.SellAmount
		}
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.Trades),
			fmt.Sprintf("%.8f", r.BuyAmount),
			fmt.Sprintf("%.4f", buyAvg),
			fmt.Sprintf("%.8f", r.SellAmount),
			fmt.Sprintf("%.4f", sellAvg),
			fmt.Sprintf("%.2f", r.RealizedPnL),
			fmt.Sprintf("%.2f", r.BuyValue),
			fmt.Sprintf("%.2f", r.SellValue),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalTrades += r.Trades
		totalBuy += r.BuyValue
		totalSell += r.SellValue
		totalPnL += r.RealizedPnL
	}

	total := []string{
		"TOTAL",
		strconv.Itoa(totalTrades),
		"", "", "", "",
		fmt.Sprintf("%.2f", totalPnL),
		fmt.Sprintf("%.2f", totalBuy),
		fmt.Sprintf("%.2f", totalSell),
	}
	if err := w.Write(total); err != nil {
		return "", err
	}
	return outPath, nil
}

// SummarizePrevious summarizes the UTC day that just ended.
func (s *summarizer) SummarizePrevious() (string, error) {
	return s.SummarizeDay(utcNow().AddDate(0, 0, -1))
}

// ShouldRunNow reports whether the previous UTC day traded but has no
// summary yet, and the path that summary would be written to.
func (s *summarizer) ShouldRunNow() (bool, string) {
	prev := utcNow().AddDate(0, 0, -1)
	outPath := summaryCSVPath(prev)
	if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
		if _, err := os.Stat(tradeFilePath(prev)); err == nil {
			return true, outPath
		}
	}
	return false, outPath
}
