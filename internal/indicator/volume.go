package indicator

import (
	"math"

	"techpulse/internal/model"
)

// obvSeries returns the On-Balance Volume running sum at every bar: volume
// added on a higher close, subtracted on a lower close, held on unchanged.
func obvSeries(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			out[i] = out[i-1] + float64(bars[i].Volume)
		case bars[i].Close < bars[i-1].Close:
			out[i] = out[i-1] - float64(bars[i].Volume)
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// OBV returns the On-Balance Volume value, a trend label comparing the
// latest value to its own 10-period average, and the divergence signal when
// one is present. Needs 2 bars for the value, 10 for the trend label.
func OBV(bars []model.Bar) *model.OBVResult {
	if len(bars) < 2 {
		return nil
	}
	series := obvSeries(bars)
	latest := series[len(series)-1]

	trend := model.TrendNeutral
	if avg, ok := SMA(series, 10); ok {
		trend = obvTrend(latest, avg)
	}

	return &model.OBVResult{
		Value:      latest,
		Trend:      trend,
		Divergence: DetectOBVDivergence(bars, divergenceLookback),
	}
}

func obvTrend(latest, avg float64) string {
	scale := math.Abs(avg)
	if scale == 0 {
		switch {
		case latest > 0:
			return "bullish"
		case latest < 0:
			return "bearish"
		}
		return model.TrendNeutral
	}
	diff := (latest - avg) / scale
	switch {
	case diff > 0.05:
		return "strong_bullish"
	case diff > 0:
		return "bullish"
	case diff < -0.05:
		return "strong_bearish"
	case diff < 0:
		return "bearish"
	}
	return model.TrendNeutral
}

// divergenceLookback is the fixed window both divergence detectors scan.
const divergenceLookback = 20

// DetectOBVDivergence compares price extremes against OBV extremes over the
// lookback window. Bearish: price within 2% of its window high while OBV
// sits materially below its own window high. Bullish is the mirror at the
// window low. Returns nil when neither fires.
func DetectOBVDivergence(bars []model.Bar, lookback int) *model.Divergence {
	if len(bars) < lookback {
		return nil
	}
	window := bars[len(bars)-lookback:]
	ind := obvSeries(bars)
	return detectDivergence(window, ind[len(ind)-lookback:])
}

// DetectCMFDivergence is the CMF counterpart of DetectOBVDivergence: the
// indicator series is the CMF value at each bar inside the window.
func DetectCMFDivergence(bars []model.Bar, period, lookback int) *model.Divergence {
	if len(bars) < lookback+period {
		return nil
	}
	ind := make([]float64, lookback)
	for i := 0; i < lookback; i++ {
		end := len(bars) - lookback + i + 1
		r := CMF(bars[:end], period)
		if r == nil {
			return nil
		}
		ind[i] = r.Value
	}
	return detectDivergence(bars[len(bars)-lookback:], ind)
}

// detectDivergence applies the shared price-vs-indicator extreme test. The
// confidence tier reflects how far the indicator lags its own extreme:
// beyond 10% of the extreme's magnitude is strong, beyond 2% moderate.
func detectDivergence(window []model.Bar, ind []float64) *model.Divergence {
	price := window[len(window)-1].Close
	priceHigh, priceLow := window[0].High, window[0].Low
	for _, b := range window {
		if b.High > priceHigh {
			priceHigh = b.High
		}
		if b.Low < priceLow {
			priceLow = b.Low
		}
	}

	indHigh, indLow := ind[0], ind[0]
	for _, v := range ind {
		if v > indHigh {
			indHigh = v
		}
		if v < indLow {
			indLow = v
		}
	}
	latest := ind[len(ind)-1]

	if priceHigh > 0 && price >= priceHigh*0.98 {
		if conf := lagTier(indHigh-latest, indHigh); conf != "" {
			return &model.Divergence{Type: "bearish", Confidence: conf}
		}
	}
	if priceLow > 0 && price <= priceLow*1.02 {
		if conf := lagTier(latest-indLow, indLow); conf != "" {
			return &model.Divergence{Type: "bullish", Confidence: conf}
		}
	}
	return nil
}

func lagTier(gap, extreme float64) string {
	scale := math.Abs(extreme)
	if scale == 0 || gap <= 0 {
		return ""
	}
	switch {
	case gap > scale*0.10:
		return "strong"
	case gap > scale*0.02:
		return "moderate"
	}
	return ""
}

// VolumeProfile partitions the price range of the trailing lookback bars
// into fixed-width buckets, distributing each bar's volume evenly across
// the buckets its [low,high] range spans. POC is the heaviest bucket; the
// value area is the smallest contiguous run around it holding >= 70% of
// total volume, grown one bucket at a time toward whichever side currently
// holds more volume (ties lean toward the lower side).
func VolumeProfile(bars []model.Bar, lookback, buckets int, currentPrice float64) *model.VolumeProfileResult {
	if lookback <= 0 || buckets <= 0 || len(bars) < 2 {
		return nil
	}
	if len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}

	hist, lo, width, total, ok := volumeHistogram(bars, buckets)
	if !ok || total == 0 {
		return nil
	}

	poc := 0
	for i, v := range hist {
		if v > hist[poc] {
			poc = i
		}
	}

	// Grow the value area around POC until it holds 70% of the volume.
	target := total * 0.70
	loIdx, hiIdx := poc, poc
	area := hist[poc]
	for area < target && (loIdx > 0 || hiIdx < buckets-1) {
		below, above := math.Inf(-1), math.Inf(-1)
		if loIdx > 0 {
			below = hist[loIdx-1]
		}
		if hiIdx < buckets-1 {
			above = hist[hiIdx+1]
		}
		if above > below {
			hiIdx++
			area += hist[hiIdx]
		} else {
			loIdx--
			area += hist[loIdx]
		}
	}

	mid := func(i int) float64 { return lo + (float64(i)+0.5)*width }
	pocPrice := mid(poc)

	position := "in_value_area"
	switch {
	case math.Abs(currentPrice-pocPrice) <= pocPrice*0.002:
		position = "at_poc"
	case currentPrice > mid(hiIdx):
		position = "above_value_area"
	case currentPrice < mid(loIdx):
		position = "below_value_area"
	}

	return &model.VolumeProfileResult{
		POC:      pocPrice,
		VAH:      mid(hiIdx),
		VAL:      mid(loIdx),
		Position: position,
	}
}

// volumeHistogram partitions the bars' price range into fixed-width
// buckets and spreads each bar's volume evenly across the buckets its
// [low,high] range spans. Zero-range bars drop their entire volume into
// one bucket. Bucket volumes sum to the total input volume. Returns
// ok=false on a flat price range.
func volumeHistogram(bars []model.Bar, buckets int) (hist []float64, lo, width, total float64, ok bool) {
	lo, hi := bars[0].Low, bars[0].High
	for _, b := range bars {
		if b.Low < lo {
			lo = b.Low
		}
		if b.High > hi {
			hi = b.High
		}
	}
	if hi == lo {
		return nil, 0, 0, 0, false
	}
	width = (hi - lo) / float64(buckets)

	hist = make([]float64, buckets)
	clamp := func(i int) int {
		if i < 0 {
			return 0
		}
		if i >= buckets {
			return buckets - 1
		}
		return i
	}
	for _, b := range bars {
		vol := float64(b.Volume)
		total += vol
		if b.Range() == 0 {
			hist[clamp(int((b.Close-lo)/width))] += vol
			continue
		}
		first := clamp(int((b.Low - lo) / width))
		last := clamp(int((b.High - lo) / width))
		share := vol / float64(last-first+1)
		for i := first; i <= last; i++ {
			hist[i] += share
		}
	}
	return hist, lo, width, total, true
}

// VWAP returns the volume-weighted average of the typical price over the
// whole series. Absent when total volume is zero.
func VWAP(bars []model.Bar) (float64, bool) {
	if len(bars) == 0 {
		return 0, false
	}
	sumPV, sumV := 0.0, 0.0
	for _, b := range bars {
		sumPV += b.TypicalPrice() * float64(b.Volume)
		sumV += float64(b.Volume)
	}
	if sumV == 0 {
		return 0, false
	}
	return sumPV / sumV, true
}

// ClassifyVolume labels the latest bar's volume against the trailing
// period average: >=3x extreme, >=2x unusual, >=1.5x high, >=0.7x normal,
// else low.
func ClassifyVolume(bars []model.Bar, period int) string {
	if len(bars) == 0 {
		return "unknown"
	}
	vols := model.Volumes(bars)
	if len(vols) < period {
		period = len(vols)
	}
	avg, ok := SMA(vols, period)
	if !ok || avg == 0 {
		return "unknown"
	}
	ratio := vols[len(vols)-1] / avg
	switch {
	case ratio >= 3.0:
		return "extreme"
	case ratio >= 2.0:
		return "unusual"
	case ratio >= 1.5:
		return "high"
	case ratio >= 0.7:
		return "normal"
	}
	return "low"
}
