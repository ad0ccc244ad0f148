package indicator

import "techpulse/internal/model"

// HeikinAshi transforms real bars into synthetic Heikin-Ashi candles:
// haClose = (O+H+L+C)/4, haOpen = average of the previous synthetic open
// and close (seeded from the first real bar's O/C average), haHigh/haLow =
// the real extreme stretched over both synthetic body bounds.
func HeikinAshi(bars []model.Bar) []model.Bar {
	if len(bars) == 0 {
		return nil
	}
	out := make([]model.Bar, len(bars))
	for i, b := range bars {
		haClose := (b.Open + b.High + b.Low + b.Close) / 4
		var haOpen float64
		if i == 0 {
			haOpen = (b.Open + b.Close) / 2
		} else {
			haOpen = (out[i-1].Open + out[i-1].Close) / 2
		}

		haHigh := b.High
		if haOpen > haHigh {
			haHigh = haOpen
		}
		if haClose > haHigh {
			haHigh = haClose
		}
		haLow := b.Low
		if haOpen < haLow {
			haLow = haOpen
		}
		if haClose < haLow {
			haLow = haClose
		}

		out[i] = model.Bar{
			TS:     b.TS,
			Open:   haOpen,
			High:   haHigh,
			Low:    haLow,
			Close:  haClose,
			Volume: b.Volume,
		}
	}
	return out
}

// AnalyzeHeikinAshiTrend classifies the synthetic-candle trend by counting
// consecutive same-color candles from the series end: >=5 is a strong
// trend, >=3 a trend. Confidence gets a boost when the trailing wick on the
// trend side is under 20% of the body. A reversal fires when the latest
// candle flips color after at least 2 opposite-colored candles with a
// trailing wick over half its body.
func AnalyzeHeikinAshiTrend(bars []model.Bar) *model.HeikinAshiResult {
	if len(bars) < 2 {
		return nil
	}
	ha := HeikinAshi(bars)

	bullStreak, bearStreak := 0, 0
	for i := len(ha) - 1; i >= 0; i-- {
		if !ha[i].Bullish() {
			break
		}
		bullStreak++
	}
	for i := len(ha) - 1; i >= 0; i-- {
		if !ha[i].Bearish() {
			break
		}
		bearStreak++
	}

	last := ha[len(ha)-1]
	res := &model.HeikinAshiResult{
		Trend:              model.TrendNeutral,
		Confidence:         0.3,
		ConsecutiveBullish: bullStreak,
		ConsecutiveBearish: bearStreak,
	}

	// Trailing wick on the trend side: lower wick in an up-move, upper
	// wick in a down-move. A flat trend side marks conviction.
	flatSide := func(wick float64) bool {
		return last.Body() > 0 && wick < last.Body()*0.2
	}

	switch {
	case bullStreak >= 5:
		res.Trend = "strong_bullish"
		res.Confidence = 0.8
		if flatSide(last.LowerWick()) {
			res.Confidence = 0.95
		}
	case bullStreak >= 3:
		res.Trend = "bullish"
		res.Confidence = 0.6
		if flatSide(last.LowerWick()) {
			res.Confidence = 0.75
		}
	case bearStreak >= 5:
		res.Trend = "strong_bearish"
		res.Confidence = 0.8
		if flatSide(last.UpperWick()) {
			res.Confidence = 0.95
		}
	case bearStreak >= 3:
		res.Trend = "bearish"
		res.Confidence = 0.6
		if flatSide(last.UpperWick()) {
			res.Confidence = 0.75
		}
	}

	res.Reversal = detectHAReversal(ha)
	return res
}

// detectHAReversal checks whether the latest synthetic candle flipped color
// after >=2 opposite candles, with a trailing wick over 50% of its body.
func detectHAReversal(ha []model.Bar) string {
	if len(ha) < 3 {
		return ""
	}
	last := ha[len(ha)-1]
	if last.Body() == 0 {
		return ""
	}

	priorRun := func(bearish bool) int {
		run := 0
		for i := len(ha) - 2; i >= 0; i-- {
			if bearish && !ha[i].Bearish() {
				break
			}
			if !bearish && !ha[i].Bullish() {
				break
			}
			run++
		}
		return run
	}

	if last.Bullish() && priorRun(true) >= 2 && last.LowerWick() > last.Body()*0.5 {
		return "bullish_reversal"
	}
	if last.Bearish() && priorRun(false) >= 2 && last.UpperWick() > last.Body()*0.5 {
		return "bearish_reversal"
	}
	return ""
}
