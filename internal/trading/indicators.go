// Package trading provides market analysis: indicator math over OHLCV
// candles and an LLM-backed analyst.
package trading

import (
	"fmt"
	"math"

	"github.com/aria-labs/aria-server/internal/model"
)

// Indicators computes technical indicators over a candle series.
type Indicators struct {
	candles []model.Candle
}

// NewIndicators wraps a chronologically ordered candle series.
func NewIndicators(candles []model.Candle) *Indicators {
	return &Indicators{candles: candles}
}

// IndicatorResult is the tagged result of one indicator calculation.
type IndicatorResult struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value,omitempty"`
	Previous float64 `json:"previous,omitempty"`
	Signal   string  `json:"signal,omitempty"`
	Trend    string  `json:"trend,omitempty"`

	// MACD-specific fields
	MACD      float64 `json:"macd,omitempty"`
	SignalVal float64 `json:"signalLine,omitempty"`
	Histogram float64 `json:"histogram,omitempty"`

	// Bollinger-specific fields
	Upper    float64 `json:"upper,omitempty"`
	Middle   float64 `json:"middle,omitempty"`
	Lower    float64 `json:"lower,omitempty"`
	Position float64 `json:"position,omitempty"`

	// ATR-specific fields
	Percent    float64 `json:"percent,omitempty"`
	Volatility string  `json:"volatility,omitempty"`
}

// ErrInsufficientData reports too few candles for the requested window.
type ErrInsufficientData struct {
	Indicator string
	Need      int
	Have      int
}

func (e *ErrInsufficientData) Error() string {
	return fmt.Sprintf("%s needs %d candles, have %d", e.Indicator, e.Need, e.Have)
}

func (ind *Indicators) closes() []float64 {
	out := make([]float64, len(ind.candles))
	for i, c := range ind.candles {
		out[i] = c.Close
	}
	return out
}

// Calculate dispatches by indicator name.
func (ind *Indicators) Calculate(name string, period int) (*IndicatorResult, error) {
	switch name {
	case "sma":
		return ind.SMA(period)
	case "ema":
		return ind.EMA(period)
	case "rsi":
		return ind.RSI(period)
	case "macd":
		return ind.MACD(period)
	case "bollinger":
		return ind.Bollinger(period)
	case "atr":
		return ind.ATR(period)
	default:
		return nil, fmt.Errorf("unknown indicator: %s", name)
	}
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// SMA calculates the simple moving average of closes.
func (ind *Indicators) SMA(period int) (*IndicatorResult, error) {
	closes := ind.closes()
	if len(closes) < period {
		return nil, &ErrInsufficientData{"sma", period, len(closes)}
	}

	current := mean(closes[len(closes)-period:])
	res := &IndicatorResult{
		Name:  fmt.Sprintf("SMA(%d)", period),
		Value: round(current, 4),
		Trend: "neutral",
	}
	if len(closes) > period {
		previous := mean(closes[len(closes)-period-1 : len(closes)-1])
		res.Previous = round(previous, 4)
		if current > previous {
			res.Trend = "up"
		} else {
			res.Trend = "down"
		}
	}
	return res, nil
}

func emaSeries(vals []float64, period int) []float64 {
	k := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(vals))
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = vals[i]*k + out[i-1]*(1-k)
	}
	return out
}

// EMA calculates the exponential moving average of closes.
func (ind *Indicators) EMA(period int) (*IndicatorResult, error) {
	closes := ind.closes()
	if len(closes) < period {
		return nil, &ErrInsufficientData{"ema", period, len(closes)}
	}

	series := emaSeries(closes, period)
	current := series[len(series)-1]
	res := &IndicatorResult{
		Name:  fmt.Sprintf("EMA(%d)", period),
		Value: round(current, 4),
		Trend: "neutral",
	}
	if len(series) > 1 {
		previous := series[len(series)-2]
		res.Previous = round(previous, 4)
		if current > previous {
			res.Trend = "up"
		} else {
			res.Trend = "down"
		}
	}
	return res, nil
}

// RSI calculates the relative strength index with its standard
// overbought/oversold thresholds at 70 and 30.
func (ind *Indicators) RSI(period int) (*IndicatorResult, error) {
	closes := ind.closes()
	if len(closes) < period+1 {
		return nil, &ErrInsufficientData{"rsi", period + 1, len(closes)}
	}

	gains, losses := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	var rsi float64
	if avgLoss == 0 {
		rsi = 100
	} else {
		rs := avgGain / avgLoss
		rsi = 100 - (100 / (1 + rs))
	}

	signal := "neutral"
	if rsi >= 70 {
		signal = "overbought"
	} else if rsi <= 30 {
		signal = "oversold"
	}

	return &IndicatorResult{
		Name:   fmt.Sprintf("RSI(%d)", period),
		Value:  round(rsi, 2),
		Signal: signal,
	}, nil
}

// MACD calculates moving average convergence/divergence with a fast
// period of period, slow of period*2+2 and a 9-bar signal line.
func (ind *Indicators) MACD(period int) (*IndicatorResult, error) {
	fast := period
	slow := period*2 + 2
	signalPeriod := 9

	closes := ind.closes()
	if len(closes) < slow {
		return nil, &ErrInsufficientData{"macd", slow, len(closes)}
	}

	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)
	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := emaSeries(macdLine, signalPeriod)

	curMACD := macdLine[len(macdLine)-1]
	curSignal := signalLine[len(signalLine)-1]

	trend := "bearish"
	if curMACD > curSignal {
		trend = "bullish"
	}

	return &IndicatorResult{
		Name:      "MACD",
		MACD:      round(curMACD, 4),
		SignalVal: round(curSignal, 4),
		Histogram: round(curMACD-curSignal, 4),
		Trend:     trend,
	}, nil
}

// Bollinger calculates Bollinger bands at two standard deviations and
// where the last close sits between them.
func (ind *Indicators) Bollinger(period int) (*IndicatorResult, error) {
	closes := ind.closes()
	if len(closes) < period {
		return nil, &ErrInsufficientData{"bollinger", period, len(closes)}
	}

	window := closes[len(closes)-period:]
	m := mean(window)
	variance := 0.0
	for _, v := range window {
		variance += (v - m) * (v - m)
	}
	std := math.Sqrt(variance / float64(period))

	upper := m + 2*std
	lower := m - 2*std
	price := closes[len(closes)-1]

	position := 0.5
	if width := upper - lower; width > 0 {
		position = (price - lower) / width
	}

	signal := "middle"
	if position > 0.8 {
		signal = "near_upper"
	} else if position < 0.2 {
		signal = "near_lower"
	}

	return &IndicatorResult{
		Name:     fmt.Sprintf("Bollinger(%d)", period),
		Upper:    round(upper, 4),
		Middle:   round(m, 4),
		Lower:    round(lower, 4),
		Position: round(position, 2),
		Signal:   signal,
	}, nil
}

// ATR calculates the average true range and classifies volatility by
// its percentage of the last close.
func (ind *Indicators) ATR(period int) (*IndicatorResult, error) {
	candles := ind.candles
	if len(candles) < period+1 {
		return nil, &ErrInsufficientData{"atr", period + 1, len(candles)}
	}

	trs := make([]float64, 0, period)
	for i := len(candles) - period; i < len(candles); i++ {
		c := candles[i]
		prevClose := candles[i-1].Close
		tr := math.Max(c.High-c.Low,
			math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
		trs = append(trs, tr)
	}
	atr := mean(trs)

	price := candles[len(candles)-1].Close
	percent := 0.0
	if price > 0 {
		percent = atr / price * 100
	}

	volatility := "low"
	if percent > 5 {
		volatility = "high"
	} else if percent > 2 {
		volatility = "moderate"
	}

	return &IndicatorResult{
		Name:       fmt.Sprintf("ATR(%d)", period),
		Value:      round(atr, 4),
		Percent:    round(percent, 2),
		Volatility: volatility,
	}, nil
}

// All calculates every indicator with its default settings.
func (ind *Indicators) All() map[string]*IndicatorResult {
	out := make(map[string]*IndicatorResult)
	set := func(key, name string, period int) {
		if res, err := ind.Calculate(name, period); err == nil {
			out[key] = res
		}
	}
	set("sma_20", "sma", 20)
	set("ema_20", "ema", 20)
	set("rsi_14", "rsi", 14)
	set("macd", "macd", 12)
	set("bollinger_20", "bollinger", 20)
	set("atr_14", "atr", 14)
	return out
}
