package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	binance "github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/types"
)

// quantityPrecision is the decimal precision used when formatting order
// quantities. 8 decimals covers satoshi-sized amounts; symbol-specific
// LOT_SIZE filters are enforced by the venue.
const quantityPrecision = 8

const binanceUSBaseURL = "https://api.binance.us"

// Params configures the venue client. Binance and Binance.US share one SDK;
// the venue picks the base URL.
type Params struct {
	APIKey        string
	APISecret     string
	Venue         string // binance or binanceus
	Testnet       bool
	RatePerSecond float64
}

// Client implements the exchange capability on the Binance spot REST API.
// Public endpoints (ticker, klines) work without credentials, so a keyless
// client still serves market data in paper mode.
type Client struct {
	c       *binance.Client
	limiter *rate.Limiter
}

var _ interfaces.Exchange = (*Client)(nil)

func NewClient(p Params) *Client {
	if p.Testnet {
		binance.UseTestnet = true
	}

	c := binance.NewClient(p.APIKey, p.APISecret)

	// Explicit venue base URL wins over the testnet flag.
	if p.Venue == "binanceus" {
		c.BaseURL = binanceUSBaseURL
	}

	rps := p.RatePerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		c:       c,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (cl *Client) FetchTicker(ctx context.Context, symbol string) (float64, error) {
	if err := cl.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	prices, err := cl.c.NewListPricesService().Symbol(venueSymbol(symbol)).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch ticker %s: %w", symbol, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("fetch ticker %s: empty response", symbol)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ticker price %q: %w", prices[0].Price, err)
	}
	return price, nil
}

func (cl *Client) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	if err := cl.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	klines, err := cl.c.NewKlinesService().
		Symbol(venueSymbol(symbol)).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch klines %s %s: %w", symbol, interval, err)
	}

	return parseKlines(klines), nil
}

func (cl *Client) CreateMarketOrder(ctx context.Context, symbol string, side types.Direction, amount float64) (types.OrderResult, error) {
	if err := cl.limiter.Wait(ctx); err != nil {
		return types.OrderResult{}, err
	}

	res, err := cl.c.NewCreateOrderService().
		Symbol(venueSymbol(symbol)).
		Side(sideType(side)).
		Type(binance.OrderTypeMarket).
		Quantity(formatQuantity(amount)).
		Do(ctx)
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("create market order: %w", err)
	}

	return types.OrderResult{
		ID:        strconv.FormatInt(res.OrderID, 10),
		Symbol:    symbol,
		Side:      side,
		Amount:    amount,
		FillPrice: averageFillPrice(res),
		Status:    string(res.Status),
	}, nil
}

// CreateStopOrder places a stop order on the venue. The order type travels
// in params so the executor controls the venue-specific shape; stopPrice is
// authoritative regardless of what params carry.
func (cl *Client) CreateStopOrder(ctx context.Context, symbol string, side types.Direction, amount, stopPrice float64, params map[string]any) (types.OrderResult, error) {
	if err := cl.limiter.Wait(ctx); err != nil {
		return types.OrderResult{}, err
	}

	orderType := binance.OrderTypeStopLoss
	if t, ok := params["type"].(string); ok && t != "" {
		orderType = binance.OrderType(t)
	}

	res, err := cl.c.NewCreateOrderService().
		Symbol(venueSymbol(symbol)).
		Side(sideType(side)).
		Type(orderType).
		Quantity(formatQuantity(amount)).
		StopPrice(strconv.FormatFloat(stopPrice, 'f', -1, 64)).
		Do(ctx)
	if err != nil {
		return types.OrderResult{}, fmt.Errorf("create stop order: %w", err)
	}

	return types.OrderResult{
		ID:     strconv.FormatInt(res.OrderID, 10),
		Symbol: symbol,
		Side:   side,
		Amount: amount,
		Status: string(res.Status),
	}, nil
}

// venueSymbol converts the config symbol form (BTC/USDT) to the Binance
// form (BTCUSDT).
func venueSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

func sideType(side types.Direction) binance.SideType {
	if side == types.DirectionBuy {
		return binance.SideTypeBuy
	}
	return binance.SideTypeSell
}

func formatQuantity(amount float64) string {
	return strconv.FormatFloat(amount, 'f', quantityPrecision, 64)
}

// parseKlines converts Binance kline rows (string OHLCV, millisecond
// timestamps) into candles with second-resolution timestamps.
func parseKlines(klines []*binance.Kline) []types.Candle {
	candles := make([]types.Candle, 0, len(klines))
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		candles = append(candles, types.Candle{
			Ts:    k.OpenTime / 1000,
			Open:  open,
			High:  high,
			Low:   low,
			Close: closePrice,
			Vol:   volume,
		})
	}
	return candles
}

// averageFillPrice derives the volume-weighted fill price of a market
// order. Zero means the venue reported no fill data; callers fall back to
// their own reference price.
func averageFillPrice(res *binance.CreateOrderResponse) float64 {
	executed, err1 := strconv.ParseFloat(res.ExecutedQuantity, 64)
	quote, err2 := strconv.ParseFloat(res.CummulativeQuoteQuantity, 64)
	if err1 == nil && err2 == nil && executed > 0 {
		return quote / executed
	}

	if len(res.Fills) > 0 {
		if p, err := strconv.ParseFloat(res.Fills[0].Price, 64); err == nil {
			return p
		}
	}
	return 0
}
