package indicator

import (
	"math"
	"testing"
	"time"

	"techpulse/internal/model"
)

// ────────────────────────────────────────────────────────────
// Shared helpers
// ────────────────────────────────────────────────────────────

// bar builds a well-formed bar around a close price with a 1.0 total range.
func bar(close float64, volume int64) model.Bar {
	return model.Bar{
		TS:     time.Unix(0, 0).UTC(),
		Open:   close - 0.2,
		High:   close + 0.4,
		Low:    close - 0.6,
		Close:  close,
		Volume: volume,
	}
}

// flatBar builds a zero-range bar where O=H=L=C.
func flatBar(price float64, volume int64) model.Bar {
	return model.Bar{TS: time.Unix(0, 0).UTC(), Open: price, High: price, Low: price, Close: price, Volume: volume}
}

// barsFromCloses builds a series of well-formed bars with constant volume.
func barsFromCloses(closes []float64, volume int64) []model.Bar {
	out := make([]model.Bar, len(closes))
	for i, c := range closes {
		out[i] = bar(c, volume)
		out[i].TS = time.Unix(int64(i)*60, 0).UTC()
	}
	return out
}

// risingBars builds n bars with closes in arithmetic progression from
// start, step 1. Highs and lows rise with the closes so directional moves
// are all positive.
func risingBars(n int, start float64, volume int64) []model.Bar {
	out := make([]model.Bar, n)
	for i := range out {
		c := start + float64(i)
		out[i] = model.Bar{
			TS:     time.Unix(int64(i)*60, 0).UTC(),
			Open:   c - 0.6,
			High:   c + 0.2,
			Low:    c - 0.8,
			Close:  c,
			Volume: volume,
		}
	}
	return out
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}
