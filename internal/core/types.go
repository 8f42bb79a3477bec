package core

import (
	"fmt"
	"time"
)

// TradingMode selects which downstream execution path is legal.
type TradingMode string

const (
	ModeBacktest   TradingMode = "backtest"
	ModePaper      TradingMode = "paper"
	ModeLive       TradingMode = "live"
	ModeSimulation TradingMode = "simulation"
)

// ParseTradingMode rejects unknown modes at construction time.
func ParseTradingMode(s string) (TradingMode, error) {
	m := TradingMode(s)
	if !m.IsValid() {
		return "", WrapError(ErrConfigInvalid, fmt.Errorf("unknown trading mode %q", s))
	}
	return m, nil
}

// IsValid reports whether the mode is one of the closed set.
func (m TradingMode) IsValid() bool {
	switch m {
	case ModeBacktest, ModePaper, ModeLive, ModeSimulation:
		return true
	}
	return false
}

// AssetClass represents the class of traded instrument.
type AssetClass string

const (
	AssetCrypto  AssetClass = "crypto"
	AssetStocks  AssetClass = "stocks"
	AssetForex   AssetClass = "forex"
	AssetFutures AssetClass = "futures"
)

// ParseAssetClass rejects unknown asset classes at construction time.
func ParseAssetClass(s string) (AssetClass, error) {
	a := AssetClass(s)
	if !a.IsValid() {
		return "", WrapError(ErrConfigInvalid, fmt.Errorf("unknown asset class %q", s))
	}
	return a, nil
}

// IsValid reports whether the asset class is one of the closed set.
func (a AssetClass) IsValid() bool {
	switch a {
	case AssetCrypto, AssetStocks, AssetForex, AssetFutures:
		return true
	}
	return false
}

// StrategyRecord is a persisted trading strategy. The genome is opaque to
// this layer; the evolution engine owns its interpretation.
type StrategyRecord struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genome     map[string]any `json:"genome"`
	Generation int            `json:"generation"`
	Active     bool           `json:"active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// PerformanceRecord captures strategy performance over a window.
type PerformanceRecord struct {
	ID             string    `json:"id"`
	StrategyID     string    `json:"strategy_id"`
	Symbol         string    `json:"symbol"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	TotalTrades    int       `json:"total_trades"`
	WinRate        float64   `json:"win_rate"`
	PnLPct         float64   `json:"pnl_pct"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// MarketSnapshot is the latest observed market state for a symbol.
type MarketSnapshot struct {
	Symbol     string             `json:"symbol"`
	Exchange   string             `json:"exchange"`
	Timeframe  string             `json:"timeframe"`
	Regime     string             `json:"regime"`
	LastPrice  float64            `json:"last_price"`
	Indicators map[string]float64 `json:"indicators"`
	CapturedAt time.Time          `json:"captured_at"`
}

// TradeLogEntry records a single executed (or simulated) trade.
type TradeLogEntry struct {
	ID         string      `json:"id"`
	StrategyID string      `json:"strategy_id"`
	Symbol     string      `json:"symbol"`
	Side       string      `json:"side"`
	Quantity   float64     `json:"quantity"`
	Price      float64     `json:"price"`
	Mode       TradingMode `json:"mode"`
	ExecutedAt time.Time   `json:"executed_at"`
	Note       string      `json:"note,omitempty"`
}
