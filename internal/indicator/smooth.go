// Package indicator derives technical indicators, price-structure levels,
// and candlestick pattern signals from a bar series.
//
// Every calculator is a pure function over its input slice: no shared state,
// no I/O, safe to call concurrently for different tickers. The failure mode
// is binary: a value is either present or absent (insufficient data).
// Scalar calculators return (value, ok); composite calculators return a nil
// pointer for absence. Zero denominators are special-cased so NaN/Inf never
// reach a label-based decision.
package indicator

import "math"

// SMA returns the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// EMA returns the exponential moving average over the whole series: the
// first period values seed an SMA, then the recurrence
// ema = v*k + prev*(1-k) with k = 2/(period+1) runs left to right.
func EMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	ema := seed / float64(period)

	k := 2.0 / float64(period+1)
	for _, v := range values[period:] {
		ema = v*k + ema*(1-k)
	}
	return ema, true
}

// emaSeries returns the EMA at every index from period-1 onward, using the
// same SMA seed and recurrence as EMA. Output index i corresponds to input
// index i+period-1.
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	ema := seed / float64(period)
	out = append(out, ema)

	k := 2.0 / float64(period+1)
	for _, v := range values[period:] {
		ema = v*k + ema*(1-k)
		out = append(out, ema)
	}
	return out
}

// WilderSmooth applies Wilder's recursive smoothing: the seed is the sum of
// the first period values, then s = s - s/period + v for each remaining
// value. The reported value is s/period.
func WilderSmooth(values []float64, period int) (float64, bool) {
	s, ok := wilderRunning(values, period)
	if !ok {
		return 0, false
	}
	return s / float64(period), true
}

// wilderRunning returns the raw running smoothed sum (not divided by the
// period). ADX needs the un-normalized form for its DI ratios.
func wilderRunning(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	s := 0.0
	for _, v := range values[:period] {
		s += v
	}
	for _, v := range values[period:] {
		s = s - s/float64(period) + v
	}
	return s, true
}

// stdDev returns the population standard deviation of the last period
// values around their mean.
func stdDev(values []float64, period int) (float64, bool) {
	mean, ok := SMA(values, period)
	if !ok {
		return 0, false
	}
	sumSq := 0.0
	for _, v := range values[len(values)-period:] {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(period)), true
}

// highestLowest returns the max high and min low over the last period
// entries of the two series.
func highestLowest(highs, lows []float64, period int) (float64, float64, bool) {
	if period <= 0 || len(highs) < period || len(lows) < period {
		return 0, 0, false
	}
	hi := highs[len(highs)-period]
	lo := lows[len(lows)-period]
	for i := len(highs) - period; i < len(highs); i++ {
		if highs[i] > hi {
			hi = highs[i]
		}
		if lows[i] < lo {
			lo = lows[i]
		}
	}
	return hi, lo, true
}
