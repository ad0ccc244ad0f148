package indicator

import (
	"testing"

	"techpulse/internal/model"
)

// ────────────────────────────────────────────────────────────
// Ichimoku
// ────────────────────────────────────────────────────────────

func TestIchimoku_SteadyUptrend(t *testing.T) {
	// 60 rising bars: all midpoints trail the price, Tenkan (9) sits
	// above Kijun (26), Span A above Span B, price above the cloud, and
	// Chikou confirms against the close 26 bars back.
	res := Ichimoku(risingBars(60, 100, 1000))
	if res == nil {
		t.Fatal("expected a result")
	}
	// Tenkan: 9-bar window highs [151.2..159.2], lows [150.2..158.2]
	// → (159.2+150.2)/2 = 154.7. Kijun: (159.2+133.2)/2 = 146.2.
	assertClose(t, "tenkan", res.Tenkan, 154.7, 1e-9)
	assertClose(t, "kijun", res.Kijun, 146.2, 1e-9)
	assertClose(t, "senkouA", res.SenkouA, 150.45, 1e-9)
	// Span B: 52-bar window → (159.2+107.2)/2 = 133.2.
	assertClose(t, "senkouB", res.SenkouB, 133.2, 1e-9)

	if res.CloudColor != "bullish" {
		t.Errorf("cloud = %q, want bullish", res.CloudColor)
	}
	if res.PricePosition != "above_cloud" {
		t.Errorf("position = %q, want above_cloud", res.PricePosition)
	}
	if res.TKCross != "bullish" {
		t.Errorf("tk cross = %q, want bullish", res.TKCross)
	}
	if res.Signal != "strong_bullish" {
		t.Errorf("signal = %q, want strong_bullish", res.Signal)
	}
	// Chikou: close 159 vs close 133 → confirms, 9 + 1 = 10.
	if !res.ChikouConfirms {
		t.Error("Chikou must confirm on a monotone uptrend")
	}
	if res.Confidence != 10 {
		t.Errorf("confidence = %d, want 10", res.Confidence)
	}
}

func TestIchimoku_SteadyDowntrend(t *testing.T) {
	bars := make([]model.Bar, 60)
	for i := range bars {
		c := 300 - 2*float64(i)
		bars[i] = candle(c+1.2, c+1.4, c-0.2, c)
	}
	res := Ichimoku(bars)
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.Signal != "strong_bearish" {
		t.Errorf("signal = %q, want strong_bearish", res.Signal)
	}
	if res.PricePosition != "below_cloud" {
		t.Errorf("position = %q, want below_cloud", res.PricePosition)
	}
	if !res.ChikouConfirms || res.Confidence != 10 {
		t.Errorf("confidence = %d (confirms=%v), want 10 with confirmation", res.Confidence, res.ChikouConfirms)
	}
}

func TestIchimoku_FlatSeriesIsNeutral(t *testing.T) {
	// Identical bars: every midpoint equals the price midpoint, price
	// sits inside the degenerate cloud, and no cross direction exists.
	bars := make([]model.Bar, 52)
	for i := range bars {
		bars[i] = flatBar(100, 1000)
	}
	res := Ichimoku(bars)
	if res == nil {
		t.Fatal("expected a result")
	}
	assertClose(t, "tenkan", res.Tenkan, 100, 1e-9)
	assertClose(t, "kijun", res.Kijun, 100, 1e-9)
	if res.PricePosition != "in_cloud" {
		t.Errorf("position = %q, want in_cloud", res.PricePosition)
	}
	if res.TKCross != "neutral" {
		t.Errorf("tk cross = %q, want neutral", res.TKCross)
	}
	if res.Signal != "neutral" || res.Confidence != 4 {
		t.Errorf("signal = %q/%d, want neutral/4", res.Signal, res.Confidence)
	}
	if res.ChikouConfirms {
		t.Error("Chikou cannot confirm a flat series")
	}
}

func TestIchimoku_RecoveryClearsCloud(t *testing.T) {
	// A long slide followed by a sharp 9-bar pop: price clears the cloud
	// while Kijun still carries the slide's lows.
	bars := make([]model.Bar, 60)
	for i := 0; i < 51; i++ {
		c := 200 - float64(i)
		bars[i] = candle(c+0.6, c+0.8, c-0.2, c)
	}
	for i := 51; i < 60; i++ {
		c := 150 + 8*float64(i-50)
		bars[i] = candle(c-0.6, c+0.2, c-0.8, c)
	}
	res := Ichimoku(bars)
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.PricePosition != "above_cloud" {
		t.Fatalf("position = %q, want above_cloud (price %.1f, cloud %.1f/%.1f)",
			res.PricePosition, bars[59].Close, res.SenkouA, res.SenkouB)
	}
	if res.Signal != "strong_bullish" && res.Signal != "bullish" && res.Signal != "weak_bullish" {
		t.Errorf("signal = %q, want a bullish tier", res.Signal)
	}
}

func TestIchimoku_InsufficientData(t *testing.T) {
	if Ichimoku(risingBars(51, 100, 1)) != nil {
		t.Error("51 bars cannot fill the 52-bar span")
	}
}
