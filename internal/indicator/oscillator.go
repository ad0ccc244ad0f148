package indicator

import "techpulse/internal/model"

// RSI returns the Relative Strength Index over closes using Wilder's
// smoothing: the first period deltas seed the average gain/loss, then each
// later delta updates them incrementally. RSI is exactly 100 when the
// average loss is zero.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// MFI returns the Money Flow Index: a volume-weighted RSI over typical
// price, accumulated over a sliding window. Needs period+1 bars for the
// first flow delta.
func MFI(bars []model.Bar, period int) *model.MFIResult {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}

	// Raw money flow per bar, signed by the typical-price direction.
	flows := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		tp := bars[i].TypicalPrice()
		prev := bars[i-1].TypicalPrice()
		flow := tp * float64(bars[i].Volume)
		if tp > prev {
			flows[i] = flow
		} else if tp < prev {
			flows[i] = -flow
		}
	}

	// Seed the window over the first period deltas, then slide: add the
	// newest bar's flow, subtract the bar leaving the window.
	pos, neg := 0.0, 0.0
	for i := 1; i <= period; i++ {
		if flows[i] > 0 {
			pos += flows[i]
		} else {
			neg -= flows[i]
		}
	}
	for i := period + 1; i < len(bars); i++ {
		if flows[i] > 0 {
			pos += flows[i]
		} else {
			neg -= flows[i]
		}
		leaving := flows[i-period]
		if leaving > 0 {
			pos -= leaving
		} else {
			neg += leaving
		}
	}

	var mfi float64
	switch {
	case pos == 0 && neg == 0:
		mfi = 50 // no directional flow at all
	case neg == 0:
		mfi = 100
	default:
		ratio := pos / neg
		mfi = 100 - 100/(1+ratio)
	}

	return &model.MFIResult{
		Value:    mfi,
		Signal:   mfiSignal(mfi),
		Strength: mfiStrength(mfi),
	}
}

func mfiSignal(v float64) string {
	switch {
	case v >= 80:
		return "overbought"
	case v <= 20:
		return "oversold"
	case v >= 60:
		return "bullish"
	case v <= 40:
		return "bearish"
	}
	return "neutral"
}

func mfiStrength(v float64) string {
	switch {
	case v >= 90 || v <= 10:
		return "very_strong"
	case v >= 80 || v <= 20:
		return "strong"
	case v >= 60 || v <= 40:
		return "moderate"
	}
	return "weak"
}

// Stochastic returns %K over the kPeriod high/low window and %D as the
// average of the dPeriod trailing %K values.
func Stochastic(bars []model.Bar, kPeriod, dPeriod int) *model.StochasticResult {
	if kPeriod <= 0 || dPeriod <= 0 || len(bars) < kPeriod+dPeriod-1 {
		return nil
	}
	highs := model.Highs(bars)
	lows := model.Lows(bars)
	closes := model.Closes(bars)

	kAt := func(end int) float64 {
		hi, lo, _ := highestLowest(highs[:end], lows[:end], kPeriod)
		if hi == lo {
			return 50 // flat window: no range to position against
		}
		return (closes[end-1] - lo) / (hi - lo) * 100
	}

	k := kAt(len(bars))
	dSum := 0.0
	for i := 0; i < dPeriod; i++ {
		dSum += kAt(len(bars) - i)
	}
	d := dSum / float64(dPeriod)

	signal := "neutral"
	if k > 80 {
		signal = "overbought"
	} else if k < 20 {
		signal = "oversold"
	}

	return &model.StochasticResult{K: k, D: d, Signal: signal}
}

// MACD returns the MACD line (fast EMA minus slow EMA), its signal line,
// and the histogram. Each historical macd point is recomputed from scratch
// over its close prefix; the signal line is the EMA of that series. This is
// O(n*window) but matches windowed recalculation semantics exactly; do not
// replace it with a single incremental pass.
func MACD(closes []float64, fast, slow, signalPeriod int) *model.MACDResult {
	if fast <= 0 || slow <= fast || signalPeriod <= 0 {
		return nil
	}
	if len(closes) < slow+signalPeriod-1 {
		return nil
	}

	macdSeries := make([]float64, 0, len(closes)-slow+1)
	for end := slow; end <= len(closes); end++ {
		f, _ := EMA(closes[:end], fast)
		s, _ := EMA(closes[:end], slow)
		macdSeries = append(macdSeries, f-s)
	}

	sig, ok := EMA(macdSeries, signalPeriod)
	if !ok {
		return nil
	}
	line := macdSeries[len(macdSeries)-1]

	return &model.MACDResult{
		Line:      line,
		Signal:    sig,
		Histogram: line - sig,
	}
}

// CMF returns the Chaikin Money Flow over the window: the sum of money-flow
// volume divided by total volume. Bars with zero range contribute nothing
// to either sum.
func CMF(bars []model.Bar, period int) *model.CMFResult {
	if period <= 0 || len(bars) < period {
		return nil
	}

	mfv, vol := 0.0, 0.0
	for _, b := range bars[len(bars)-period:] {
		rng := b.Range()
		if rng == 0 {
			continue // undefined multiplier, skip rather than zero-fill
		}
		mult := ((b.Close - b.Low) - (b.High - b.Close)) / rng
		mfv += mult * float64(b.Volume)
		vol += float64(b.Volume)
	}
	if vol == 0 {
		return nil
	}

	v := mfv / vol
	signal, strength := cmfSignal(v)
	return &model.CMFResult{Value: v, Signal: signal, Strength: strength}
}

func cmfSignal(v float64) (string, string) {
	switch {
	case v > 0.25:
		return "strong_buy", "strong"
	case v > 0.15:
		return "buy", "strong"
	case v > 0.05:
		return "buy", "moderate"
	case v < -0.25:
		return "strong_sell", "strong"
	case v < -0.15:
		return "sell", "strong"
	case v < -0.05:
		return "sell", "moderate"
	}
	return "neutral", "weak"
}
