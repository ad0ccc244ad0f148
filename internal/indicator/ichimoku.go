package indicator

import "techpulse/internal/model"

// Ichimoku period constants.
const (
	tenkanPeriod = 9
	kijunPeriod  = 26
	senkouPeriod = 52
	chikouShift  = 26
)

// Ichimoku computes the cloud over the bar series. Needs at least 52 bars.
// Tenkan and Kijun are 9- and 26-bar high/low midpoints, Senkou Span A is
// the Tenkan/Kijun midpoint, Senkou Span B the 52-bar midpoint, and Chikou
// is the current close checked against the close 26 bars back. The signal
// ladder combines price position, TK-cross direction, and cloud color; the
// base confidence gains 1 (capped at 10) when Chikou confirms.
func Ichimoku(bars []model.Bar) *model.IchimokuResult {
	if len(bars) < senkouPeriod {
		return nil
	}
	highs := model.Highs(bars)
	lows := model.Lows(bars)

	midpoint := func(period int) float64 {
		hi, lo, _ := highestLowest(highs, lows, period)
		return (hi + lo) / 2
	}

	tenkan := midpoint(tenkanPeriod)
	kijun := midpoint(kijunPeriod)
	senkouA := (tenkan + kijun) / 2
	senkouB := midpoint(senkouPeriod)
	price := bars[len(bars)-1].Close
	chikou := price

	cloudColor := "bearish"
	if senkouA > senkouB {
		cloudColor = "bullish"
	}

	cloudTop, cloudBottom := senkouA, senkouB
	if senkouB > senkouA {
		cloudTop, cloudBottom = senkouB, senkouA
	}
	position := "in_cloud"
	if price > cloudTop {
		position = "above_cloud"
	} else if price < cloudBottom {
		position = "below_cloud"
	}

	tkCross := "neutral"
	if tenkan > kijun {
		tkCross = "bullish"
	} else if tenkan < kijun {
		tkCross = "bearish"
	}

	// Chikou confirmation: current close vs the close 26 bars prior.
	pastClose := bars[len(bars)-1-chikouShift].Close
	confirmsBull := chikou > pastClose
	confirmsBear := chikou < pastClose

	signal, confidence := ichimokuSignal(position, tkCross, cloudColor)

	confirms := false
	if confirmsBull && (signal == "strong_bullish" || signal == "bullish" || signal == "weak_bullish") {
		confirms = true
	}
	if confirmsBear && (signal == "strong_bearish" || signal == "bearish" || signal == "weak_bearish") {
		confirms = true
	}
	if confirms {
		confidence++
		if confidence > 10 {
			confidence = 10
		}
	}

	return &model.IchimokuResult{
		Tenkan:         tenkan,
		Kijun:          kijun,
		SenkouA:        senkouA,
		SenkouB:        senkouB,
		Chikou:         chikou,
		CloudColor:     cloudColor,
		PricePosition:  position,
		TKCross:        tkCross,
		Signal:         signal,
		Confidence:     confidence,
		ChikouConfirms: confirms,
	}
}

// ichimokuSignal maps the three inputs onto the seven-state ladder with its
// base confidence.
func ichimokuSignal(position, tkCross, cloudColor string) (string, int) {
	switch position {
	case "above_cloud":
		if tkCross == "bullish" && cloudColor == "bullish" {
			return "strong_bullish", 9
		}
		if tkCross == "bullish" {
			return "bullish", 7
		}
		return "weak_bullish", 5
	case "below_cloud":
		if tkCross == "bearish" && cloudColor == "bearish" {
			return "strong_bearish", 9
		}
		if tkCross == "bearish" {
			return "bearish", 7
		}
		return "weak_bearish", 5
	}
	return "neutral", 4
}
