package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type SignalSource struct {
	Name    string  `yaml:"name"`
	Weight  float64 `yaml:"weight"`
	Enabled bool    `yaml:"enabled"`
}

type Config struct {
	Mode           string `yaml:"mode"` // PAPER or LIVE
	Symbol         string `yaml:"symbol"`
	Venue          string `yaml:"venue"` // okx, binance, binanceus
	PollSeconds    int    `yaml:"poll_seconds"`
	BackoffSeconds int    `yaml:"backoff_seconds"`
	DatabasePath   string `yaml:"database_path"`
	ListenAddr     string `yaml:"listen_addr"`
	MetricsAddr    string `yaml:"metrics_addr"`
	Risk           struct {
		StartingCapital       float64 `yaml:"starting_capital"`
		PositionSizePercent   float64 `yaml:"position_size_percent"`
		DailyLossLimitPercent float64 `yaml:"daily_loss_limit_percent"`
		KillSwitchPercent     float64 `yaml:"kill_switch_percent"`
		StopLossPercent       float64 `yaml:"stop_loss_percent"`
		MinPositionUSD        float64 `yaml:"min_position_usd"`
	} `yaml:"risk"`
	Signals struct {
		ConfidenceThreshold float64        `yaml:"confidence_threshold"`
		Sources             []SignalSource `yaml:"sources"`
	} `yaml:"signals"`
	Indicators struct {
		RSIPeriod  int `yaml:"rsi_period"`
		MAShort    int `yaml:"ma_short"`
		MALong     int `yaml:"ma_long"`
		MACDFast   int `yaml:"macd_fast"`
		MACDSlow   int `yaml:"macd_slow"`
		MACDSignal int `yaml:"macd_signal"`
	} `yaml:"indicators"`
	Paper struct {
		ReferencePrice float64 `yaml:"reference_price"`
	} `yaml:"paper"`
	Exchange struct {
		Testnet        bool    `yaml:"testnet"`
		RatePerSecond  float64 `yaml:"rate_per_second"`
		CandleInterval string  `yaml:"candle_interval"`
		CandleLimit    int     `yaml:"candle_limit"`
	} `yaml:"exchange"`
	News struct {
		Enabled      bool `yaml:"enabled"`
		MaxArticles  int  `yaml:"max_articles"`
		CacheMinutes int  `yaml:"cache_minutes"`
	} `yaml:"news"`
	LLM struct {
		Enabled     bool    `yaml:"enabled"`
		Endpoint    string  `yaml:"endpoint"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
		System      string  `yaml:"system"`
	} `yaml:"llm"`
}

func (c *Config) Validate() error {
	if c.Mode != "PAPER" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'PAPER' or 'LIVE'", c.Mode)
	}
	if c.Symbol == "" {
		return errors.New("symbol cannot be empty")
	}
	switch c.Venue {
	case "okx", "binance", "binanceus":
	default:
		return fmt.Errorf("invalid venue '%s': must be 'okx', 'binance', or 'binanceus'", c.Venue)
	}
	if c.PollSeconds <= 0 {
		return fmt.Errorf("poll_seconds must be positive, got %d", c.PollSeconds)
	}
	if c.Risk.StartingCapital <= 0 {
		return fmt.Errorf("risk.starting_capital must be positive, got %.2f", c.Risk.StartingCapital)
	}
	if c.Risk.PositionSizePercent <= 0 || c.Risk.PositionSizePercent > 100 {
		return fmt.Errorf("risk.position_size_percent must be between 0-100, got %.2f", c.Risk.PositionSizePercent)
	}
	if c.Risk.DailyLossLimitPercent <= 0 || c.Risk.DailyLossLimitPercent > 100 {
		return fmt.Errorf("risk.daily_loss_limit_percent must be between 0-100, got %.2f", c.Risk.DailyLossLimitPercent)
	}
	if c.Risk.KillSwitchPercent <= 0 || c.Risk.KillSwitchPercent > 100 {
		return fmt.Errorf("risk.kill_switch_percent must be between 0-100, got %.2f", c.Risk.KillSwitchPercent)
	}
	if c.Risk.StopLossPercent <= 0 || c.Risk.StopLossPercent >= 100 {
		return fmt.Errorf("risk.stop_loss_percent must be between 0-100, got %.2f", c.Risk.StopLossPercent)
	}
	if c.Signals.ConfidenceThreshold < 0 || c.Signals.ConfidenceThreshold > 100 {
		return fmt.Errorf("signals.confidence_threshold must be between 0-100, got %.2f", c.Signals.ConfidenceThreshold)
	}
	for _, s := range c.Signals.Sources {
		if s.Name == "" {
			return errors.New("signals.sources entries must be named")
		}
		if s.Weight < 0 || s.Weight > 1 {
			return fmt.Errorf("signals.sources[%s].weight must be between 0-1, got %.2f", s.Name, s.Weight)
		}
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "PAPER"
	}
	if c.Symbol == "" {
		c.Symbol = "BTC/USDT"
	}
	if c.Venue == "" {
		c.Venue = "binance"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 300
	}
	if c.BackoffSeconds == 0 {
		c.BackoffSeconds = 60
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/trader.db"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9091"
	}

	if c.Risk.StartingCapital == 0 {
		c.Risk.StartingCapital = 10000
	}
	if c.Risk.PositionSizePercent == 0 {
		c.Risk.PositionSizePercent = 5
	}
	if c.Risk.DailyLossLimitPercent == 0 {
		c.Risk.DailyLossLimitPercent = 15
	}
	if c.Risk.KillSwitchPercent == 0 {
		c.Risk.KillSwitchPercent = 50
	}
	if c.Risk.StopLossPercent == 0 {
		c.Risk.StopLossPercent = 5
	}
	if c.Risk.MinPositionUSD == 0 {
		c.Risk.MinPositionUSD = 10
	}

	if c.Signals.ConfidenceThreshold == 0 {
		c.Signals.ConfidenceThreshold = 70
	}
	if len(c.Signals.Sources) == 0 {
		c.Signals.Sources = []SignalSource{
			{Name: "technical", Weight: 0.5, Enabled: true},
			{Name: "sentiment", Weight: 0.3, Enabled: true},
		}
	}

	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.MAShort == 0 {
		c.Indicators.MAShort = 20
	}
	if c.Indicators.MALong == 0 {
		c.Indicators.MALong = 50
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = 12
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = 26
	}
	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = 9
	}

	if c.Paper.ReferencePrice == 0 {
		c.Paper.ReferencePrice = 50000
	}

	if c.Exchange.RatePerSecond == 0 {
		c.Exchange.RatePerSecond = 10
	}
	if c.Exchange.CandleInterval == "" {
		c.Exchange.CandleInterval = "1h"
	}
	if c.Exchange.CandleLimit == 0 {
		c.Exchange.CandleLimit = 100
	}

	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 10
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 60
	}

	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 256
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
