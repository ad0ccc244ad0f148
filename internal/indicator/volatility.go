package indicator

import (
	"math"

	"techpulse/internal/model"
)

// trueRanges returns the true-range series, one entry per bar from the
// second onward: max(high-low, |high-prevClose|, |low-prevClose|).
func trueRanges(bars []model.Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr := hl
		if hc > tr {
			tr = hc
		}
		if lc > tr {
			tr = lc
		}
		out[i-1] = tr
	}
	return out
}

// ATR returns the Average True Range: the SMA of the trailing period true
// ranges. Needs period+1 bars.
func ATR(bars []model.Bar, period int) (float64, bool) {
	tr := trueRanges(bars)
	return SMA(tr, period)
}

// BollingerBands returns the SMA +/- k standard deviations over the window
// and the bandwidth as 2k*sigma/SMA*100.
func BollingerBands(closes []float64, period int, k float64) *model.BollingerResult {
	mid, ok := SMA(closes, period)
	if !ok {
		return nil
	}
	sigma, _ := stdDev(closes, period)

	bandwidth := 0.0
	if mid != 0 {
		bandwidth = 2 * k * sigma / mid * 100
	}
	return &model.BollingerResult{
		Upper:     mid + k*sigma,
		Middle:    mid,
		Lower:     mid - k*sigma,
		Bandwidth: bandwidth,
	}
}

// ADX returns the Average Directional Index with +DI/-DI. Directional moves
// and true ranges are Wilder-smoothed; the DX value at each historical
// index is recomputed from scratch over its prefix, and ADX is the
// Wilder-smoothed average of the trailing period DX values. Like the MACD
// signal line this is O(n*period). Needs 2*period bars.
func ADX(bars []model.Bar, period int) *model.ADXResult {
	if period <= 0 || len(bars) < 2*period {
		return nil
	}

	n := len(bars) - 1
	tr := trueRanges(bars)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < len(bars); i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	diAt := func(end int) (float64, float64) {
		str, _ := wilderRunning(tr[:end], period)
		if str == 0 {
			return 0, 0
		}
		sp, _ := wilderRunning(plusDM[:end], period)
		sm, _ := wilderRunning(minusDM[:end], period)
		return sp / str * 100, sm / str * 100
	}

	dx := make([]float64, 0, n-period+1)
	for end := period; end <= n; end++ {
		pdi, mdi := diAt(end)
		if pdi+mdi == 0 {
			dx = append(dx, 0)
			continue
		}
		dx = append(dx, math.Abs(pdi-mdi)/(pdi+mdi)*100)
	}

	adx, ok := WilderSmooth(dx, period)
	if !ok {
		return nil
	}
	pdi, mdi := diAt(n)

	return &model.ADXResult{
		ADX:      adx,
		PlusDI:   pdi,
		MinusDI:  mdi,
		Strength: adxStrength(adx),
		Trending: adx >= 25,
	}
}

func adxStrength(adx float64) string {
	switch {
	case adx >= 50:
		return "very_strong"
	case adx >= 25:
		return "strong"
	case adx >= 20:
		return "moderate"
	}
	return "weak"
}
