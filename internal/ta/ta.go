package ta

import "math"

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}
func EMA(closes []float64, n int) float64 {
	s := emaSeries(closes, n)
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}
func emaSeries(vals []float64, n int) []float64 {
	if len(vals) < n || n <= 0 {
		return nil
	}
	seed := 0.0
	for i := 0; i < n; i++ {
		seed += vals[i]
	}
	seed /= float64(n)
	out := make([]float64, 0, len(vals)-n+1)
	out = append(out, seed)
	k := 2.0 / float64(n+1)
	for i := n; i < len(vals); i++ {
		prev := out[len(out)-1]
		out = append(out, (vals[i]-prev)*k+prev)
	}
	return out
}

// MACD returns the MACD line, signal line and histogram for the trailing
// candle. Needs at least slow+signal-1 closes.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist float64) {
	if fast <= 0 || slow <= fast || signal <= 0 || len(closes) < slow+signal-1 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	fastS := emaSeries(closes, fast)
	slowS := emaSeries(closes, slow)
	offset := slow - fast
	macd := make([]float64, len(slowS))
	for i := range slowS {
		macd[i] = fastS[i+offset] - slowS[i]
	}
	sigS := emaSeries(macd, signal)
	if len(sigS) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	line = macd[len(macd)-1]
	sig = sigS[len(sigS)-1]
	hist = line - sig
	return
}
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}
func Bollinger(closes []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}
func ATR(highs, lows, closes []float64, period int) float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return math.NaN()
	}
	n := period
	if len(closes) < n+1 {
		return math.NaN()
	}
	trs := make([]float64, 0, n)
	for i := len(closes) - n; i < len(closes); i++ {
		tr1 := highs[i] - lows[i]
		tr2 := math.Abs(highs[i] - closes[i-1])
		tr3 := math.Abs(lows[i] - closes[i-1])
		tr := math.Max(tr1, math.Max(tr2, tr3))
		trs = append(trs, tr)
	}
	sum := 0.0
	for _, v := range trs {
		sum += v
	}
	return sum / float64(n)
}
