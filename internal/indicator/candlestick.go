package indicator

import (
	"sort"
	"strings"

	"techpulse/internal/model"
)

// Geometric thresholds for the candlestick detectors. The ratios are
// heuristic constants carried over for behavioral compatibility; tests pin
// them as tunable parameters.
const (
	dojiBodyMax     = 0.10 // body <= 10% of range
	hammerBodyMax   = 0.30 // body <= 30% of range
	wickDominance   = 2.0  // trend-side wick > 2x body
	starBodyFactor  = 0.7  // large candle: body > avgBody * 0.7
	avgBodyLookback = 10
)

// CandlestickPatterns runs every detector over the most recent 1-3 bars and
// ranks the matches by strength, strongest first. The prevailing trend
// label gates the context-dependent reversal patterns. Each detector
// returns at most one match; detectors are not mutually exclusive in code.
func CandlestickPatterns(bars []model.Bar, trend string) *model.PatternResult {
	if len(bars) == 0 {
		return nil
	}

	uptrend := strings.HasSuffix(trend, "uptrend")
	downtrend := strings.HasSuffix(trend, "downtrend")
	avgBody := averageBody(bars, avgBodyLookback)

	var patterns []model.Pattern
	add := func(p *model.Pattern) {
		if p != nil {
			patterns = append(patterns, *p)
		}
	}

	add(detectDoji(bars))
	add(detectHammerFamily(bars, uptrend, downtrend))
	add(detectStarFamily(bars, uptrend, downtrend))
	if len(bars) >= 2 {
		add(detectEngulfing(bars))
		add(detectPiercingLine(bars))
		add(detectDarkCloudCover(bars))
	}
	if len(bars) >= 3 {
		add(detectMorningStar(bars, avgBody))
		add(detectEveningStar(bars, avgBody))
		add(detectThreeSoldiers(bars, avgBody))
		add(detectThreeCrows(bars, avgBody))
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Strength > patterns[j].Strength
	})

	res := &model.PatternResult{Patterns: patterns, Count: len(patterns)}
	if len(patterns) > 0 {
		res.Primary = &patterns[0]
	}
	return res
}

func averageBody(bars []model.Bar, lookback int) float64 {
	if len(bars) < lookback {
		lookback = len(bars)
	}
	sum := 0.0
	for _, b := range bars[len(bars)-lookback:] {
		sum += b.Body()
	}
	return sum / float64(lookback)
}

func detectDoji(bars []model.Bar) *model.Pattern {
	c := bars[len(bars)-1]
	rng := c.Range()
	if rng == 0 || c.Body() > rng*dojiBodyMax {
		return nil
	}

	// Wick asymmetry picks the variant.
	if c.LowerWick() > c.UpperWick()*wickDominance {
		return &model.Pattern{Name: "Dragonfly Doji", Direction: "bullish", Strength: model.StrengthModerate}
	}
	if c.UpperWick() > c.LowerWick()*wickDominance {
		return &model.Pattern{Name: "Gravestone Doji", Direction: "bearish", Strength: model.StrengthModerate}
	}
	return &model.Pattern{Name: "Doji", Direction: "neutral", Strength: model.StrengthWeak}
}

// detectHammerFamily covers Hammer and Hanging Man: small body at the top,
// short upper wick, lower wick longer than twice the body. The prevailing
// trend decides which of the two it is.
func detectHammerFamily(bars []model.Bar, uptrend, downtrend bool) *model.Pattern {
	c := bars[len(bars)-1]
	rng := c.Range()
	body := c.Body()
	if rng == 0 || body == 0 || body > rng*hammerBodyMax {
		return nil
	}
	if c.UpperWick() >= body || c.LowerWick() <= body*wickDominance {
		return nil
	}
	if downtrend {
		return &model.Pattern{Name: "Hammer", Direction: "bullish", Strength: model.StrengthStrong}
	}
	if uptrend {
		return &model.Pattern{Name: "Hanging Man", Direction: "bearish", Strength: model.StrengthStrong}
	}
	return nil
}

// detectStarFamily covers Shooting Star and Inverted Hammer: small body at
// the bottom, short lower wick, upper wick longer than twice the body.
func detectStarFamily(bars []model.Bar, uptrend, downtrend bool) *model.Pattern {
	c := bars[len(bars)-1]
	rng := c.Range()
	body := c.Body()
	if rng == 0 || body == 0 || body > rng*hammerBodyMax {
		return nil
	}
	if c.LowerWick() >= body || c.UpperWick() <= body*wickDominance {
		return nil
	}
	if uptrend {
		return &model.Pattern{Name: "Shooting Star", Direction: "bearish", Strength: model.StrengthStrong}
	}
	if downtrend {
		return &model.Pattern{Name: "Inverted Hammer", Direction: "bullish", Strength: model.StrengthModerate}
	}
	return nil
}

func detectEngulfing(bars []model.Bar) *model.Pattern {
	prev := bars[len(bars)-2]
	cur := bars[len(bars)-1]
	if cur.Body() <= prev.Body() {
		return nil
	}

	if prev.Bearish() && cur.Bullish() && cur.Open <= prev.Close && cur.Close >= prev.Open {
		return &model.Pattern{Name: "Bullish Engulfing", Direction: "bullish", Strength: model.StrengthStrong}
	}
	if prev.Bullish() && cur.Bearish() && cur.Open >= prev.Close && cur.Close <= prev.Open {
		return &model.Pattern{Name: "Bearish Engulfing", Direction: "bearish", Strength: model.StrengthStrong}
	}
	return nil
}

func detectPiercingLine(bars []model.Bar) *model.Pattern {
	prev := bars[len(bars)-2]
	cur := bars[len(bars)-1]
	if !prev.Bearish() || !cur.Bullish() {
		return nil
	}
	// Gap below the prior low, then recover through the prior midpoint
	// without closing above the prior open.
	if cur.Open >= prev.Low {
		return nil
	}
	mid := (prev.Open + prev.Close) / 2
	if cur.Close < mid || cur.Close >= prev.Open {
		return nil
	}
	return &model.Pattern{Name: "Piercing Line", Direction: "bullish", Strength: model.StrengthModerate}
}

func detectDarkCloudCover(bars []model.Bar) *model.Pattern {
	prev := bars[len(bars)-2]
	cur := bars[len(bars)-1]
	if !prev.Bullish() || !cur.Bearish() {
		return nil
	}
	if cur.Open <= prev.High {
		return nil
	}
	mid := (prev.Open + prev.Close) / 2
	if cur.Close > mid || cur.Close <= prev.Open {
		return nil
	}
	return &model.Pattern{Name: "Dark Cloud Cover", Direction: "bearish", Strength: model.StrengthModerate}
}

func detectMorningStar(bars []model.Bar, avgBody float64) *model.Pattern {
	first := bars[len(bars)-3]
	star := bars[len(bars)-2]
	third := bars[len(bars)-1]

	if !first.Bearish() || first.Body() <= avgBody*starBodyFactor {
		return nil
	}
	// Star: small body gapping below the first candle's close.
	if star.Body() > first.Body()*0.5 || bodyTop(star) >= first.Close {
		return nil
	}
	if !third.Bullish() || third.Close < (first.Open+first.Close)/2 {
		return nil
	}
	return &model.Pattern{Name: "Morning Star", Direction: "bullish", Strength: model.StrengthVeryStrong}
}

func detectEveningStar(bars []model.Bar, avgBody float64) *model.Pattern {
	first := bars[len(bars)-3]
	star := bars[len(bars)-2]
	third := bars[len(bars)-1]

	if !first.Bullish() || first.Body() <= avgBody*starBodyFactor {
		return nil
	}
	if star.Body() > first.Body()*0.5 || bodyBottom(star) <= first.Close {
		return nil
	}
	if !third.Bearish() || third.Close > (first.Open+first.Close)/2 {
		return nil
	}
	return &model.Pattern{Name: "Evening Star", Direction: "bearish", Strength: model.StrengthVeryStrong}
}

func detectThreeSoldiers(bars []model.Bar, avgBody float64) *model.Pattern {
	a, b, c := bars[len(bars)-3], bars[len(bars)-2], bars[len(bars)-1]
	if !a.Bullish() || !b.Bullish() || !c.Bullish() {
		return nil
	}
	if a.Body() <= avgBody || b.Body() <= avgBody || c.Body() <= avgBody {
		return nil
	}
	if b.Close <= a.Close || c.Close <= b.Close {
		return nil
	}
	return &model.Pattern{Name: "Three White Soldiers", Direction: "bullish", Strength: model.StrengthVeryStrong}
}

func detectThreeCrows(bars []model.Bar, avgBody float64) *model.Pattern {
	a, b, c := bars[len(bars)-3], bars[len(bars)-2], bars[len(bars)-1]
	if !a.Bearish() || !b.Bearish() || !c.Bearish() {
		return nil
	}
	if a.Body() <= avgBody || b.Body() <= avgBody || c.Body() <= avgBody {
		return nil
	}
	if b.Close >= a.Close || c.Close >= b.Close {
		return nil
	}
	return &model.Pattern{Name: "Three Black Crows", Direction: "bearish", Strength: model.StrengthVeryStrong}
}

func bodyTop(b model.Bar) float64 {
	if b.Close > b.Open {
		return b.Close
	}
	return b.Open
}

func bodyBottom(b model.Bar) float64 {
	if b.Close < b.Open {
		return b.Close
	}
	return b.Open
}
