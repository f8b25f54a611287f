package trading

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aria-labs/aria-server/internal/model"
)

// MarketData fetches quotes and candle history for a symbol.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (*model.Quote, error)
	History(ctx context.Context, symbol, period string) ([]model.Candle, error)
}

// YahooClient reads market data from the Yahoo Finance chart API.
type YahooClient struct {
	http *resty.Client
}

// NewYahooClient creates a market data client. baseURL is overridable
// for tests; pass "" for the public endpoint.
func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; aria-server)").
		SetTimeout(timeout)
	return &YahooClient{http: c}
}

// periodIntervals maps a history period to the bar interval Yahoo
// expects for a usable candle count.
var periodIntervals = map[string]string{
	"1d":  "5m",
	"5d":  "15m",
	"1mo": "1d",
	"3mo": "1d",
	"6mo": "1d",
	"1y":  "1d",
	"2y":  "1wk",
	"5y":  "1wk",
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *YahooClient) chart(ctx context.Context, symbol, period, interval string) (*chartResponse, error) {
	resp, err := y.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"range":    period,
			"interval": interval,
		}).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("market data request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("symbol %q: %w", symbol, model.ErrNotFound)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("market data status %d: %w", resp.StatusCode(), model.ErrUnavailable)
	}

	var out chartResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if out.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %w", out.Chart.Error.Code, model.ErrNotFound)
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("symbol %q: %w", symbol, model.ErrNotFound)
	}
	return &out, nil
}

// Quote returns the latest price snapshot for a symbol.
func (y *YahooClient) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	out, err := y.chart(ctx, symbol, "1d", "5m")
	if err != nil {
		return nil, err
	}
	result := out.Chart.Result[0]
	meta := result.Meta

	q := &model.Quote{
		Symbol:        meta.Symbol,
		Price:         meta.RegularMarketPrice,
		PreviousClose: meta.PreviousClose,
		Currency:      meta.Currency,
	}
	if len(result.Indicators.Quote) > 0 {
		bars := result.Indicators.Quote[0]
		for i := range bars.Close {
			if bars.Close[i] == 0 {
				continue
			}
			if q.Open == 0 {
				q.Open = bars.Open[i]
			}
			if bars.High[i] > q.DayHigh {
				q.DayHigh = bars.High[i]
			}
			if q.DayLow == 0 || bars.Low[i] < q.DayLow {
				q.DayLow = bars.Low[i]
			}
			q.Volume += bars.Volume[i]
		}
	}
	return q, nil
}

// History returns chronological candles for a symbol over the period.
// Bars with a null close (halted or partial intervals) are skipped.
func (y *YahooClient) History(ctx context.Context, symbol, period string) ([]model.Candle, error) {
	interval, ok := periodIntervals[period]
	if !ok {
		return nil, fmt.Errorf("unknown period %q: %w", period, model.ErrValidation)
	}

	out, err := y.chart(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	result := out.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("symbol %q has no quote data: %w", symbol, model.ErrNotFound)
	}
	quote := result.Indicators.Quote[0]

	candles := make([]model.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		candles = append(candles, model.Candle{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("symbol %q has no candles: %w", symbol, model.ErrNotFound)
	}
	return candles, nil
}
