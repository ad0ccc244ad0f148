package indicator

import (
	"errors"
	"time"

	"techpulse/internal/model"
)

// ErrTooFewBars is returned by ComputeSnapshot for a series shorter than
// two bars, the only contract violation the aggregator reports. Everything
// else degrades to absent snapshot fields.
var ErrTooFewBars = errors.New("indicator: snapshot needs at least 2 bars")

// Params holds the tunable windows and tolerances the aggregator passes to
// each calculator. The zero value is not usable; start from DefaultParams.
type Params struct {
	RSIPeriod        int     `yaml:"rsi_period"`
	MFIPeriod        int     `yaml:"mfi_period"`
	StochKPeriod     int     `yaml:"stoch_k_period"`
	StochDPeriod     int     `yaml:"stoch_d_period"`
	MACDFast         int     `yaml:"macd_fast"`
	MACDSlow         int     `yaml:"macd_slow"`
	MACDSignal       int     `yaml:"macd_signal"`
	CMFPeriod        int     `yaml:"cmf_period"`
	ATRPeriod        int     `yaml:"atr_period"`
	BollingerPeriod  int     `yaml:"bollinger_period"`
	BollingerK       float64 `yaml:"bollinger_k"`
	ADXPeriod        int     `yaml:"adx_period"`
	FibLookback      int     `yaml:"fib_lookback"`
	ProfileLookback  int     `yaml:"profile_lookback"`
	ProfileBuckets   int     `yaml:"profile_buckets"`
	ClusterTolerance float64 `yaml:"cluster_tolerance"`
	VolumePeriod     int     `yaml:"volume_period"`
}

// DefaultParams returns the standard parameter set.
func DefaultParams() Params {
	return Params{
		RSIPeriod:        14,
		MFIPeriod:        14,
		StochKPeriod:     14,
		StochDPeriod:     3,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		CMFPeriod:        21,
		ATRPeriod:        14,
		BollingerPeriod:  20,
		BollingerK:       2,
		ADXPeriod:        14,
		FibLookback:      50,
		ProfileLookback:  30,
		ProfileBuckets:   50,
		ClusterTolerance: 0.02,
		VolumePeriod:     20,
	}
}

// ComputeSnapshot runs every calculator over the bar series and merges the
// outputs into one immutable snapshot, using the default parameters.
func ComputeSnapshot(bars []model.Bar, currentPrice float64) (*model.TechnicalSnapshot, error) {
	return ComputeSnapshotWith(bars, currentPrice, DefaultParams())
}

// ComputeSnapshotWith is ComputeSnapshot with explicit parameters. Each
// component runs independently; an insufficient-data result leaves its
// field nil and never fails the aggregation.
func ComputeSnapshotWith(bars []model.Bar, currentPrice float64, p Params) (*model.TechnicalSnapshot, error) {
	if len(bars) < 2 {
		return nil, ErrTooFewBars
	}

	closes := model.Closes(bars)
	snap := &model.TechnicalSnapshot{
		TS:    time.Now().UTC(),
		Price: currentPrice,
	}

	snap.SMA20 = optional(SMA(closes, 20))
	snap.SMA50 = optional(SMA(closes, 50))
	snap.SMA200 = optional(SMA(closes, 200))
	snap.EMA9 = optional(EMA(closes, 9))
	snap.EMA21 = optional(EMA(closes, 21))

	// Trend is derived once and shared with the pattern detectors.
	snap.Trend = trendLabel(currentPrice, snap.SMA20, snap.SMA50, snap.SMA200)

	snap.RSI = optional(RSI(closes, p.RSIPeriod))
	snap.MFI = MFI(bars, p.MFIPeriod)
	snap.MACD = MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	snap.Stochastic = Stochastic(bars, p.StochKPeriod, p.StochDPeriod)
	snap.Bollinger = BollingerBands(closes, p.BollingerPeriod, p.BollingerK)

	snap.VWAP = optional(VWAP(bars))
	snap.OBV = OBV(bars)
	snap.CMF = cmfWithDivergence(bars, p.CMFPeriod)

	snap.ATR = optional(ATR(bars, p.ATRPeriod))
	snap.ADX = ADX(bars, p.ADXPeriod)

	snap.Fibonacci = FibonacciLevels(bars, p.FibLookback, currentPrice)
	snap.SupportResistance = SupportResistance(bars, p.ClusterTolerance)
	snap.VolumeProfile = VolumeProfile(bars, p.ProfileLookback, p.ProfileBuckets, currentPrice)
	snap.VolumeSignal = ClassifyVolume(bars, p.VolumePeriod)

	snap.Patterns = CandlestickPatterns(bars, snap.Trend)
	snap.HeikinAshi = AnalyzeHeikinAshiTrend(bars)
	snap.Ichimoku = Ichimoku(bars)

	return snap, nil
}

// cmfWithDivergence folds a divergence hit into the CMF signal when the
// base read is neutral.
func cmfWithDivergence(bars []model.Bar, period int) *model.CMFResult {
	res := CMF(bars, period)
	if res == nil {
		return nil
	}
	if div := DetectCMFDivergence(bars, period, divergenceLookback); div != nil && res.Signal == "neutral" {
		if div.Type == "bullish" {
			res.Signal = "buy"
		} else {
			res.Signal = "sell"
		}
		res.Strength = div.Confidence
	}
	return res
}

// trendLabel orders price against the available moving averages. Absent
// longer averages relax the ladder rather than blocking it, so a short
// series still gets a label.
func trendLabel(price float64, sma20, sma50, sma200 *float64) string {
	if sma20 == nil {
		return model.TrendNeutral
	}
	if sma50 == nil {
		if price > *sma20 {
			return model.TrendUp
		}
		if price < *sma20 {
			return model.TrendDown
		}
		return model.TrendSideways
	}

	longOK := func(up bool) bool {
		if sma200 == nil {
			return true
		}
		if up {
			return *sma50 > *sma200
		}
		return *sma50 < *sma200
	}

	switch {
	case price > *sma20 && *sma20 > *sma50 && longOK(true):
		return model.TrendStrongUp
	case price > *sma20 && price > *sma50:
		return model.TrendUp
	case price > *sma20:
		return model.TrendMildUp
	case price < *sma20 && *sma20 < *sma50 && longOK(false):
		return model.TrendStrongDown
	case price < *sma20 && price < *sma50:
		return model.TrendDown
	case price < *sma20:
		return model.TrendMildDown
	}
	return model.TrendSideways
}

// optional converts the (value, ok) calculator convention into the
// snapshot's pointer-based absence representation.
func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
