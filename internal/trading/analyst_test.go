package trading

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-labs/aria-server/internal/llm"
	"github.com/aria-labs/aria-server/internal/model"
)

type fakeMarket struct {
	candles []model.Candle
	quote   *model.Quote
	err     error
}

func (f *fakeMarket) Quote(context.Context, string) (*model.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func (f *fakeMarket) History(context.Context, string, string) ([]model.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candles, nil
}

type fakeGen struct {
	last llm.Request
	text string
}

func (f *fakeGen) Generate(_ context.Context, req llm.Request) (*llm.Result, error) {
	f.last = req
	return &llm.Result{Text: f.text, Model: "fake", TokensUsed: 1}, nil
}

func (f *fakeGen) GenerateCode(context.Context, string, string, string) (*llm.Result, error) {
	return &llm.Result{Text: f.text}, nil
}

func (f *fakeGen) HealthPing(context.Context) error { return nil }

func TestAnalyzeUptrend(t *testing.T) {
	market := &fakeMarket{
		candles: rising(60),
		quote:   &model.Quote{Symbol: "AAPL", Price: 159, Currency: "USD"},
	}
	gen := &fakeGen{text: "steady climb"}
	a := NewAnalyst(market, gen, zerolog.Nop())

	res, err := a.Analyze(context.Background(), "aapl", "3mo")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", res.Symbol)
	assert.Len(t, res.Indicators, 6)
	// A monotone rise votes bullish on SMA, EMA and MACD.
	assert.Contains(t, []string{"bullish", "strong_bullish"}, res.Trend)
	assert.NotEqual(t, "hold", res.Recommendation)
	assert.Contains(t, res.Summary, "steady climb")
	assert.Contains(t, res.Summary, "not financial advice")
}

func TestAnalyzeDowntrend(t *testing.T) {
	market := &fakeMarket{
		candles: falling(60),
		quote:   &model.Quote{Symbol: "XYZ", Price: 140, Currency: "USD"},
	}
	a := NewAnalyst(market, &fakeGen{text: "falling"}, zerolog.Nop())

	res, err := a.Analyze(context.Background(), "XYZ", "3mo")
	require.NoError(t, err)
	assert.Contains(t, []string{"bearish", "strong_bearish"}, res.Trend)
}

func TestAnalyzeHistoryError(t *testing.T) {
	a := NewAnalyst(&fakeMarket{err: model.ErrNotFound}, &fakeGen{}, zerolog.Nop())
	_, err := a.Analyze(context.Background(), "NOPE", "1mo")
	assert.Error(t, err)
}

func TestAnswerAppendsDisclaimer(t *testing.T) {
	market := &fakeMarket{quote: &model.Quote{Symbol: "TSLA", Price: 250, Currency: "USD"}}
	gen := &fakeGen{text: "volatile stock"}
	a := NewAnalyst(market, gen, zerolog.Nop())

	res, err := a.Answer(context.Background(), "what do you think about TSLA?", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Text, "volatile stock"))
	assert.Contains(t, res.Text, "not financial advice")
	// Live quote made it into the prompt.
	assert.Contains(t, gen.last.Prompt, "TSLA")
	assert.Contains(t, gen.last.Prompt, "250.00")
}

func TestExtractSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", extractSymbol("should I buy AAPL today?"))
	assert.Equal(t, "NVDA", extractSymbol("thoughts on $NVDA"))
	assert.Equal(t, "", extractSymbol("WHAT is the best ETF for US exposure"))
	assert.Equal(t, "", extractSymbol("nothing here"))
}

func TestRecommendVolatilityCaution(t *testing.T) {
	indicators := map[string]*IndicatorResult{
		"atr_14": {Volatility: "high"},
	}
	assert.Equal(t, "consider_buy_with_caution", recommend(indicators, "strong_bullish"))
	assert.Equal(t, "consider_sell_with_caution", recommend(indicators, "strong_bearish"))
	assert.Equal(t, "hold", recommend(indicators, "neutral"))
}

func TestClassifyTrendNeutralOnEmpty(t *testing.T) {
	assert.Equal(t, "neutral", classifyTrend(map[string]*IndicatorResult{}))
}
