package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aria-labs/aria-server/internal/api/respond"
	"github.com/aria-labs/aria-server/internal/api/validate"
	"github.com/aria-labs/aria-server/internal/trading"
)

type TradingHandler struct {
	analyst *trading.Analyst
	market  trading.MarketData
}

func NewTradingHandler(analyst *trading.Analyst, market trading.MarketData) *TradingHandler {
	return &TradingHandler{analyst: analyst, market: market}
}

// Analyze POST /api/trading/analyze
func (h *TradingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
		Period string `json:"period,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if err := validate.Symbol(req.Symbol); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Period(req.Period); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if req.Period == "" {
		req.Period = "3mo"
	}

	res, err := h.analyst.Analyze(r.Context(), req.Symbol, req.Period)
	if err != nil {
		writeModuleError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// Indicator POST /api/trading/indicator
func (h *TradingHandler) Indicator(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol    string `json:"symbol"`
		Indicator string `json:"indicator"`
		Period    int    `json:"period,omitempty"`
		Range     string `json:"range,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if err := validate.Symbol(req.Symbol); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	req.Indicator = strings.ToLower(req.Indicator)
	if err := validate.Indicator(req.Indicator); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Period(req.Range); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if req.Range == "" {
		req.Range = "3mo"
	}
	if req.Period <= 0 {
		req.Period = 14
	}

	candles, err := h.market.History(r.Context(), req.Symbol, req.Range)
	if err != nil {
		writeModuleError(w, err)
		return
	}

	res, err := trading.NewIndicators(candles).Calculate(req.Indicator, req.Period)
	if err != nil {
		var insufficient *trading.ErrInsufficientData
		if errors.As(err, &insufficient) {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		writeModuleError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": req.Symbol,
		"range":  req.Range,
		"result": res,
	})
}

// Quote GET /api/trading/quote/{symbol}
func (h *TradingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	if err := validate.Symbol(symbol); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	quote, err := h.market.Quote(r.Context(), symbol)
	if err != nil {
		writeModuleError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, quote)
}
