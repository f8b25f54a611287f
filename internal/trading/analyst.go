package trading

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aria-labs/aria-server/internal/llm"
	"github.com/aria-labs/aria-server/internal/model"
)

const disclaimer = "\n\n*This is not financial advice. Always do your own research before making investment decisions.*"

// Analyst combines market data, indicator math and the LLM into
// symbol analyses and conversational answers.
type Analyst struct {
	market MarketData
	gen    llm.Generator
	log    zerolog.Logger
}

// NewAnalyst wires an analyst over a market data source and generator.
func NewAnalyst(market MarketData, gen llm.Generator, log zerolog.Logger) *Analyst {
	return &Analyst{market: market, gen: gen, log: log}
}

// Analysis is the full technical picture for one symbol.
type Analysis struct {
	Symbol         string                      `json:"symbol"`
	Period         string                      `json:"period"`
	Quote          *model.Quote                `json:"quote"`
	Indicators     map[string]*IndicatorResult `json:"indicators"`
	Trend          string                      `json:"trend"`
	Recommendation string                      `json:"recommendation"`
	Summary        string                      `json:"summary,omitempty"`
}

// Analyze fetches history, computes every indicator and derives a
// trend and a hold/consider recommendation from the signal balance.
func (a *Analyst) Analyze(ctx context.Context, symbol, period string) (*Analysis, error) {
	candles, err := a.market.History(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	quote, err := a.market.Quote(ctx, symbol)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("quote fetch failed, continuing with history only")
		quote = &model.Quote{Symbol: symbol, Price: candles[len(candles)-1].Close}
	}

	indicators := NewIndicators(candles).All()
	trend := classifyTrend(indicators)
	recommendation := recommend(indicators, trend)

	res := &Analysis{
		Symbol:         strings.ToUpper(symbol),
		Period:         period,
		Quote:          quote,
		Indicators:     indicators,
		Trend:          trend,
		Recommendation: recommendation,
	}

	summary, err := a.summarize(ctx, res)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("analysis summary generation failed")
	} else {
		res.Summary = summary + disclaimer
	}
	return res, nil
}

// classifyTrend votes bullish/bearish across the computed indicators.
func classifyTrend(indicators map[string]*IndicatorResult) string {
	bullish, bearish := 0, 0

	if sma := indicators["sma_20"]; sma != nil {
		switch sma.Trend {
		case "up":
			bullish++
		case "down":
			bearish++
		}
	}
	if ema := indicators["ema_20"]; ema != nil {
		switch ema.Trend {
		case "up":
			bullish++
		case "down":
			bearish++
		}
	}
	if macd := indicators["macd"]; macd != nil {
		switch macd.Trend {
		case "bullish":
			bullish++
		case "bearish":
			bearish++
		}
	}
	if rsi := indicators["rsi_14"]; rsi != nil {
		switch rsi.Signal {
		case "oversold":
			bullish++
		case "overbought":
			bearish++
		}
	}

	switch {
	case bullish > bearish+1:
		return "strong_bullish"
	case bullish > bearish:
		return "bullish"
	case bearish > bullish+1:
		return "strong_bearish"
	case bearish > bullish:
		return "bearish"
	default:
		return "neutral"
	}
}

func recommend(indicators map[string]*IndicatorResult, trend string) string {
	highVol := false
	if atr := indicators["atr_14"]; atr != nil && atr.Volatility == "high" {
		highVol = true
	}

	switch trend {
	case "strong_bullish":
		if highVol {
			return "consider_buy_with_caution"
		}
		return "consider_buy"
	case "bullish":
		return "hold_or_accumulate"
	case "strong_bearish":
		if highVol {
			return "consider_sell_with_caution"
		}
		return "consider_sell"
	case "bearish":
		return "hold_or_reduce"
	default:
		return "hold"
	}
}

func (a *Analyst) summarize(ctx context.Context, analysis *Analysis) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Symbol: %s (%.2f %s)\n", analysis.Symbol, analysis.Quote.Price, analysis.Quote.Currency)
	fmt.Fprintf(&sb, "Trend: %s, recommendation: %s\n", analysis.Trend, analysis.Recommendation)
	for key, ind := range analysis.Indicators {
		fmt.Fprintf(&sb, "- %s: %+v\n", key, *ind)
	}

	prompt := fmt.Sprintf(`Technical analysis data:
%s
Write a short plain-language summary (3-4 sentences) of what these indicators suggest about %s. Mention the trend and any notable signals.`,
		sb.String(), analysis.Symbol)

	res, err := a.gen.Generate(ctx, llm.Request{
		Prompt:      prompt,
		System:      "You are a market analyst. You explain technical indicators clearly and never give direct buy/sell orders.",
		Temperature: 0.5,
		MaxTokens:   512,
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Answer handles a conversational trading question, enriching the
// prompt with a live quote when the message names a known symbol.
func (a *Analyst) Answer(ctx context.Context, message, convContext string) (*llm.Result, error) {
	var quoteLine string
	if symbol := extractSymbol(message); symbol != "" {
		if q, err := a.market.Quote(ctx, symbol); err == nil {
			quoteLine = fmt.Sprintf("\nCurrent data for %s: price %.2f %s, previous close %.2f.",
				q.Symbol, q.Price, q.Currency, q.PreviousClose)
		}
	}

	prompt := fmt.Sprintf(`Previous context:
%s

User question: %s%s

Answer the question about markets or trading. Be factual about data and clear when you are speculating.`,
		convContext, message, quoteLine)

	res, err := a.gen.Generate(ctx, llm.Request{
		Prompt:      prompt,
		System:      "You are a knowledgeable trading assistant. You explain markets and instruments but never promise returns.",
		Temperature: 0.5,
	})
	if err != nil {
		return nil, err
	}
	res.Text += disclaimer
	return res, nil
}

// extractSymbol picks the first token that looks like a ticker: all
// uppercase letters, one to five characters, optionally $-prefixed.
func extractSymbol(message string) string {
	for _, tok := range strings.Fields(message) {
		tok = strings.Trim(tok, ".,!?:;()")
		tok = strings.TrimPrefix(tok, "$")
		if len(tok) < 1 || len(tok) > 5 {
			continue
		}
		upper := true
		for _, r := range tok {
			if r < 'A' || r > 'Z' {
				upper = false
				break
			}
		}
		// Single letters and common words in caps produce too many false
		// positives, so require at least two characters.
		if upper && len(tok) >= 2 && !commonWords[tok] {
			return tok
		}
	}
	return ""
}

var commonWords = map[string]bool{
	"I": true, "A": true, "OK": true, "US": true, "AI": true,
	"ETF": true, "IPO": true, "CEO": true, "THE": true, "AND": true,
	"FOR": true, "WHAT": true, "HOW": true, "WHY": true, "USD": true,
	"EUR": true, "API": true,
}
