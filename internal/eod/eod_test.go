package eod

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTradeLog(t *testing.T, day time.Time, lines []string) {
	t.Helper()
	path := tradeFilePath(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write trade log: %v", err)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func TestSummarizeDayAggregates(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	writeTradeLog(t, day, []string{
		`{"Time":"2026-03-14 10:00:00","Symbol":"BTC/USDT","Side":"BUY","Amount":0.5,"Price":50000,"Reason":"aggregated decision","Confidence":80}`,
		`{"Time":"2026-03-14 14:00:00","Symbol":"BTC/USDT","Side":"SELL","Amount":0.5,"Price":51000,"PnL":500,"Reason":"stop-loss"}`,
		`{"Time":"2026-03-14 15:00:00","Symbol":"ETH/USDT","Side":"BUY","Amount":2,"Price":3000,"Reason":"aggregated decision"}`,
	})

	s := &summarizer{}
	csvPath, err := s.SummarizeDay(day)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if csvPath == "" {
		t.Fatal("Expected a CSV path, got empty string")
	}

	records := readCSV(t, csvPath)
	if len(records) != 4 {
		t.Fatalf("Expected header + 2 symbols + TOTAL, got %d rows", len(records))
	}

	btc := records[1]
	if btc[0] != "BTC/USDT" || btc[1] != "2" {
		t.Errorf("Unexpected BTC row: %v", btc)
	}
	if btc[2] != "0.50000000" || btc[3] != "50000.0000" {
		t.Errorf("Unexpected BTC buy columns: %v", btc)
	}
	if btc[4] != "0.50000000" || btc[5] != "51000.0000" {
		t.Errorf("Unexpected BTC sell columns: %v", btc)
	}
	if btc[6] != "500.00" {
		t.Errorf("Expected BTC realized PnL 500.00, got %s", btc[6])
	}

	eth := records[2]
	if eth[0] != "ETH/USDT" || eth[1] != "1" || eth[7] != "6000.00" {
		t.Errorf("Unexpected ETH row: %v", eth)
	}

	total := records[3]
	if total[0] != "TOTAL" || total[1] != "3" {
		t.Errorf("Unexpected TOTAL row: %v", total)
	}
	if total[6] != "500.00" || total[7] != "31000.00" || total[8] != "25500.00" {
		t.Errorf("Unexpected TOTAL values: %v", total)
	}
}

func TestSummarizeDayWithoutLogIsNoop(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	s := &summarizer{}
	csvPath, err := s.SummarizeDay(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if csvPath != "" {
		t.Errorf("Expected no CSV for a silent day, got %s", csvPath)
	}
}

func TestSummarizeDaySkipsMalformedLines(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	writeTradeLog(t, day, []string{
		`not json at all`,
		`{"Symbol":"BTC/USDT","Side":"BUY","Amount":1,"Price":40000}`,
	})

	s := &summarizer{}
	csvPath, err := s.SummarizeDay(day)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records := readCSV(t, csvPath)
	if len(records) != 3 {
		t.Fatalf("Expected header + 1 symbol + TOTAL, got %d rows", len(records))
	}
	if records[1][1] != "1" {
		t.Errorf("Expected the malformed line skipped, got trades=%s", records[1][1])
	}
}

func TestShouldRunNow(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	s := &summarizer{}

	shouldRun, csvPath := s.ShouldRunNow()
	if shouldRun {
		t.Fatal("Expected no run without a trade log")
	}
	if csvPath == "" {
		t.Fatal("Expected the candidate CSV path even when not due")
	}

	yesterday := utcNow().AddDate(0, 0, -1)
	writeTradeLog(t, yesterday, []string{
		`{"Symbol":"BTC/USDT","Side":"BUY","Amount":1,"Price":40000}`,
	})

	shouldRun, csvPath = s.ShouldRunNow()
	if !shouldRun {
		t.Fatal("Expected run with an unsummarized trade log")
	}

	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(csvPath, []byte("done"), 0o644); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	shouldRun, _ = s.ShouldRunNow()
	if shouldRun {
		t.Error("Expected no run once the summary exists")
	}
}

func TestSummarizePreviousTargetsYesterday(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	yesterday := utcNow().AddDate(0, 0, -1)

	writeTradeLog(t, yesterday, []string{
		`{"Symbol":"SOL/USDT","Side":"SELL","Amount":10,"Price":150,"PnL":-25}`,
	})

	s := &summarizer{}
	csvPath, err := s.SummarizePrevious()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := yesterday.Format("2006-01-02") + ".csv"
	if filepath.Base(csvPath) != want {
		t.Errorf("Expected summary %s, got %s", want, filepath.Base(csvPath))
	}
}
