package model

import (
	"encoding/json"
	"time"
)

// Strength ranks pattern and signal quality on a fixed total order.
// Sorting by the numeric value avoids locale/string-comparison bugs.
type Strength int

const (
	StrengthWeak Strength = iota + 1
	StrengthModerate
	StrengthStrong
	StrengthVeryStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthVeryStrong:
		return "very_strong"
	case StrengthStrong:
		return "strong"
	case StrengthModerate:
		return "moderate"
	case StrengthWeak:
		return "weak"
	}
	return "unknown"
}

// MarshalJSON encodes the strength as its label, not the raw ordinal.
func (s Strength) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Trend labels shared by the aggregator and the pattern detectors.
const (
	TrendStrongUp   = "strong_uptrend"
	TrendUp         = "uptrend"
	TrendMildUp     = "mild_uptrend"
	TrendSideways   = "sideways"
	TrendMildDown   = "mild_downtrend"
	TrendDown       = "downtrend"
	TrendStrongDown = "strong_downtrend"
	TrendNeutral    = "neutral"
)

// MFIResult is the Money Flow Index value with its signal bands.
type MFIResult struct {
	Value    float64 `json:"value"`
	Signal   string  `json:"signal"`   // overbought/oversold/bullish/bearish/neutral
	Strength string  `json:"strength"` // very_strong/strong/moderate/weak
}

// MACDResult holds the MACD line, its signal line, and the histogram.
type MACDResult struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// StochasticResult holds %K, %D, and the overbought/oversold signal.
type StochasticResult struct {
	K      float64 `json:"k"`
	D      float64 `json:"d"`
	Signal string  `json:"signal"`
}

// BollingerResult holds the band levels and the normalized bandwidth.
type BollingerResult struct {
	Upper     float64 `json:"upper"`
	Middle    float64 `json:"middle"`
	Lower     float64 `json:"lower"`
	Bandwidth float64 `json:"bandwidth"` // 2k*sigma/SMA*100
}

// ADXResult holds trend-strength output from the Wilder DM/TR pipeline.
type ADXResult struct {
	ADX      float64 `json:"adx"`
	PlusDI   float64 `json:"plus_di"`
	MinusDI  float64 `json:"minus_di"`
	Strength string  `json:"strength"`
	Trending bool    `json:"trending"` // ADX >= 25
}

// Divergence reports disagreement between price extremes and an indicator's
// extremes over the same lookback window.
type Divergence struct {
	Type       string `json:"type"`       // bullish or bearish
	Confidence string `json:"confidence"` // strong or moderate
}

// OBVResult is the On-Balance Volume running sum with its trend label and
// an optional divergence signal.
type OBVResult struct {
	Value      float64     `json:"value"`
	Trend      string      `json:"trend"` // strong_bullish/bullish/bearish/strong_bearish/neutral
	Divergence *Divergence `json:"divergence,omitempty"`
}

// CMFResult is the Chaikin Money Flow value with its signal bands.
type CMFResult struct {
	Value    float64 `json:"value"`
	Signal   string  `json:"signal"`   // strong_buy/buy/sell/strong_sell/neutral
	Strength string  `json:"strength"` // strong/moderate/weak
}

// FibLevel is one retracement or extension level with its distance from the
// current price.
type FibLevel struct {
	Name        string  `json:"name"` // e.g. "61.8"
	Kind        string  `json:"kind"` // retracement or extension
	Price       float64 `json:"price"`
	DistancePct float64 `json:"distance_pct"`
}

// FibonacciResult holds the swing range, the level tables, and the nearest
// level within tolerance of the current price (nil when none is close).
type FibonacciResult struct {
	SwingHigh    float64            `json:"swing_high"`
	SwingLow     float64            `json:"swing_low"`
	Retracements map[string]float64 `json:"retracements"`
	Extensions   map[string]float64 `json:"extensions"`
	Nearest      *FibLevel          `json:"nearest,omitempty"`
}

// SupportResistanceResult holds the clustered level sets, at most three per
// side, ascending.
type SupportResistanceResult struct {
	Support    []float64 `json:"support"`
	Resistance []float64 `json:"resistance"`
}

// VolumeProfileResult holds the volume-distribution histogram summary.
type VolumeProfileResult struct {
	POC      float64 `json:"poc"`
	VAH      float64 `json:"vah"`
	VAL      float64 `json:"val"`
	Position string  `json:"position"` // above_value_area/below_value_area/at_poc/in_value_area
}

// Pattern is one detected candlestick pattern.
type Pattern struct {
	Name      string   `json:"name"`
	Direction string   `json:"direction"` // bullish/bearish/neutral
	Strength  Strength `json:"strength"`
}

// PatternResult holds all matched candlestick patterns ranked by strength,
// strongest first.
type PatternResult struct {
	Primary  *Pattern  `json:"primary,omitempty"`
	Patterns []Pattern `json:"patterns"`
	Count    int       `json:"count"`
}

// HeikinAshiResult classifies the synthetic-candle trend.
type HeikinAshiResult struct {
	Trend              string  `json:"trend"` // strong_bullish/bullish/strong_bearish/bearish/neutral
	Confidence         float64 `json:"confidence"`
	ConsecutiveBullish int     `json:"consecutive_bullish"`
	ConsecutiveBearish int     `json:"consecutive_bearish"`
	Reversal           string  `json:"reversal,omitempty"` // bullish_reversal or bearish_reversal
}

// IchimokuResult holds the five cloud lines and the derived signal.
type IchimokuResult struct {
	Tenkan         float64 `json:"tenkan"`
	Kijun          float64 `json:"kijun"`
	SenkouA        float64 `json:"senkou_a"`
	SenkouB        float64 `json:"senkou_b"`
	Chikou         float64 `json:"chikou"`
	CloudColor     string  `json:"cloud_color"`     // bullish or bearish
	PricePosition  string  `json:"price_position"`  // above_cloud/below_cloud/in_cloud
	TKCross        string  `json:"tk_cross"`        // bullish/bearish/neutral
	Signal         string  `json:"signal"`          // seven-state ladder
	Confidence     int     `json:"confidence"`      // 1..10
	ChikouConfirms bool    `json:"chikou_confirms"` // Chikou agrees with the signal direction
}

// TechnicalSnapshot is the aggregate output of one ComputeSnapshot call.
// It is constructed fresh on every call and never mutated. A nil field
// means the underlying series was too short for that calculator: absence,
// not zero.
type TechnicalSnapshot struct {
	Ticker string    `json:"ticker,omitempty"`
	TS     time.Time `json:"ts"`
	Price  float64   `json:"price"`

	SMA20  *float64 `json:"sma20,omitempty"`
	SMA50  *float64 `json:"sma50,omitempty"`
	SMA200 *float64 `json:"sma200,omitempty"`
	EMA9   *float64 `json:"ema9,omitempty"`
	EMA21  *float64 `json:"ema21,omitempty"`

	RSI        *float64          `json:"rsi,omitempty"`
	MFI        *MFIResult        `json:"mfi,omitempty"`
	MACD       *MACDResult       `json:"macd,omitempty"`
	Stochastic *StochasticResult `json:"stochastic,omitempty"`
	Bollinger  *BollingerResult  `json:"bollinger,omitempty"`

	VWAP *float64   `json:"vwap,omitempty"`
	OBV  *OBVResult `json:"obv,omitempty"`
	CMF  *CMFResult `json:"cmf,omitempty"`

	ATR *float64   `json:"atr,omitempty"`
	ADX *ADXResult `json:"adx,omitempty"`

	Fibonacci         *FibonacciResult         `json:"fibonacci,omitempty"`
	SupportResistance *SupportResistanceResult `json:"support_resistance,omitempty"`
	VolumeProfile     *VolumeProfileResult     `json:"volume_profile,omitempty"`

	VolumeSignal string `json:"volume_signal"`
	Trend        string `json:"trend"`

	Patterns   *PatternResult    `json:"patterns,omitempty"`
	HeikinAshi *HeikinAshiResult `json:"heikin_ashi,omitempty"`
	Ichimoku   *IchimokuResult   `json:"ichimoku,omitempty"`
}

// JSON returns the JSON-encoded snapshot.
func (s *TechnicalSnapshot) JSON() []byte {
	out, _ := json.Marshal(s)
	return out
}
