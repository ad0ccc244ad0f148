package indicator

import (
	"testing"

	"techpulse/internal/model"
)

// ────────────────────────────────────────────────────────────
// Candle transform
// ────────────────────────────────────────────────────────────

func TestHeikinAshi_FirstCandleSeed(t *testing.T) {
	bars := []model.Bar{candle(100, 104, 96, 102)}
	ha := HeikinAshi(bars)
	if len(ha) != 1 {
		t.Fatalf("len = %d, want 1", len(ha))
	}
	// haOpen = (100+102)/2, haClose = (100+104+96+102)/4
	assertClose(t, "haOpen", ha[0].Open, 101, 1e-9)
	assertClose(t, "haClose", ha[0].Close, 100.5, 1e-9)
}

func TestHeikinAshi_OpenChains(t *testing.T) {
	bars := []model.Bar{
		candle(100, 104, 96, 102),
		candle(102, 108, 100, 106),
	}
	ha := HeikinAshi(bars)
	// Second synthetic open is the midpoint of the first synthetic body:
	// (101 + 100.5) / 2 = 100.75.
	assertClose(t, "chained haOpen", ha[1].Open, 100.75, 1e-9)
	// haClose = (102+108+100+106)/4 = 104.
	assertClose(t, "haClose", ha[1].Close, 104, 1e-9)
}

func TestHeikinAshi_HighLowStretchOverBody(t *testing.T) {
	// A gap-down bar whose real high sits below the carried synthetic
	// open: the synthetic high must stretch up to the open.
	bars := []model.Bar{
		candle(100, 104, 96, 102),
		candle(90, 91, 88, 89),
	}
	ha := HeikinAshi(bars)
	// haOpen = (101+100.5)/2 = 100.75 > real high 91.
	assertClose(t, "stretched high", ha[1].High, 100.75, 1e-9)
	assertClose(t, "low", ha[1].Low, 88, 1e-9)
}

func TestHeikinAshi_Smoothing(t *testing.T) {
	// On a steady uptrend every synthetic candle after the first is
	// bullish even when single real bars close off their highs.
	ha := HeikinAshi(risingBars(10, 100, 100))
	for i, c := range ha[1:] {
		if !c.Bullish() {
			t.Errorf("candle %d: synthetic close %.3f <= open %.3f", i+1, c.Close, c.Open)
		}
	}
}

func TestHeikinAshi_Empty(t *testing.T) {
	if HeikinAshi(nil) != nil {
		t.Error("no bars must produce no candles")
	}
}

// ────────────────────────────────────────────────────────────
// Trend classification
// ────────────────────────────────────────────────────────────

func TestAnalyzeHeikinAshiTrend_StrongBullish(t *testing.T) {
	res := AnalyzeHeikinAshiTrend(risingBars(12, 100, 100))
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.Trend != "strong_bullish" {
		t.Errorf("trend = %q, want strong_bullish", res.Trend)
	}
	if res.ConsecutiveBullish < 5 {
		t.Errorf("streak = %d, want >= 5", res.ConsecutiveBullish)
	}
	if res.Confidence < 0.8 {
		t.Errorf("confidence = %.2f, want >= 0.8", res.Confidence)
	}
}

func TestAnalyzeHeikinAshiTrend_StrongBearish(t *testing.T) {
	bars := make([]model.Bar, 12)
	for i := range bars {
		c := 200 - 2*float64(i)
		bars[i] = candle(c+1.2, c+1.4, c-0.2, c)
	}
	res := AnalyzeHeikinAshiTrend(bars)
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.Trend != "strong_bearish" {
		t.Errorf("trend = %q, want strong_bearish", res.Trend)
	}
}

func TestAnalyzeHeikinAshiTrend_ShortStreakIsTrend(t *testing.T) {
	// Three bullish candles after a flat stretch: a trend, not a strong
	// one. Flat bars produce doji-like synthetic candles that end any
	// streak.
	bars := []model.Bar{
		flatBar(100, 100), flatBar(100, 100), flatBar(100, 100), flatBar(100, 100),
		candle(100, 103, 99.8, 102.5),
		candle(102.5, 105.5, 102.3, 105),
		candle(105, 108, 104.8, 107.5),
	}
	res := AnalyzeHeikinAshiTrend(bars)
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.Trend != "bullish" {
		t.Errorf("trend = %q, want bullish (streak %d)", res.Trend, res.ConsecutiveBullish)
	}
	if res.Confidence > 0.79 {
		t.Errorf("confidence = %.2f, want below the strong tier", res.Confidence)
	}
}

func TestAnalyzeHeikinAshiTrend_InsufficientData(t *testing.T) {
	if AnalyzeHeikinAshiTrend([]model.Bar{candle(1, 2, 0.5, 1.5)}) != nil {
		t.Error("one bar must produce no result")
	}
}

// ────────────────────────────────────────────────────────────
// Reversal detection
// ────────────────────────────────────────────────────────────

func TestDetectHAReversal_Bullish(t *testing.T) {
	// Two bearish synthetic candles, then a bullish candle with a long
	// lower tail.
	ha := []model.Bar{
		candle(110, 110.5, 104.5, 105),
		candle(105, 105.5, 99.5, 100),
		candle(100, 103.5, 96, 103),
	}
	if got := detectHAReversal(ha); got != "bullish_reversal" {
		t.Errorf("reversal = %q, want bullish_reversal", got)
	}
}

func TestDetectHAReversal_NoTailNoSignal(t *testing.T) {
	// Same flip without a lower tail: no reversal.
	ha := []model.Bar{
		candle(110, 110.5, 104.5, 105),
		candle(105, 105.5, 99.5, 100),
		candle(100, 103.5, 99.9, 103),
	}
	if got := detectHAReversal(ha); got != "" {
		t.Errorf("reversal = %q, want none without a tail", got)
	}
}

func TestDetectHAReversal_ShortPriorRun(t *testing.T) {
	// Only one opposite candle before the flip: no reversal.
	ha := []model.Bar{
		candle(100, 103.5, 99.8, 103),
		candle(105, 105.5, 99.5, 100),
		candle(100, 103.5, 96, 103),
	}
	if got := detectHAReversal(ha); got != "" {
		t.Errorf("reversal = %q, want none after a 1-candle run", got)
	}
}
