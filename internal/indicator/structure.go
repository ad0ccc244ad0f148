package indicator

import (
	"math"
	"sort"

	"techpulse/internal/model"
)

// pricePoint is a raw swing level tagged with the bar index it came from,
// so clusters can be ranked by recency.
type pricePoint struct {
	price float64
	index int
}

// SupportResistance detects swing levels and clusters them. A swing high
// requires strict dominance over the two neighbors on each side (5-bar
// window); swing lows are the mirror. Raw levels within tolerance of each
// other merge into one cluster, and only the 3 most recent clusters per
// side survive. Levels are returned ascending.
func SupportResistance(bars []model.Bar, tolerance float64) *model.SupportResistanceResult {
	if len(bars) < 5 {
		return nil
	}

	var highs, lows []pricePoint
	for i := 2; i < len(bars)-2; i++ {
		h := bars[i].High
		if h > bars[i-1].High && h > bars[i-2].High && h > bars[i+1].High && h > bars[i+2].High {
			highs = append(highs, pricePoint{price: h, index: i})
		}
		l := bars[i].Low
		if l < bars[i-1].Low && l < bars[i-2].Low && l < bars[i+1].Low && l < bars[i+2].Low {
			lows = append(lows, pricePoint{price: l, index: i})
		}
	}
	if len(highs) == 0 && len(lows) == 0 {
		return nil
	}

	return &model.SupportResistanceResult{
		Support:    clusterLevels(lows, tolerance),
		Resistance: clusterLevels(highs, tolerance),
	}
}

// clusterLevels merges sorted levels: a level joins the running cluster
// when it sits within tolerance of the cluster's last member, and each
// finished cluster is replaced by its mean. The 3 clusters holding the most
// recent swing survive, returned ascending.
func clusterLevels(points []pricePoint, tolerance float64) []float64 {
	if len(points) == 0 {
		return nil
	}
	sorted := make([]pricePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].price < sorted[j].price })

	type cluster struct {
		sum    float64
		count  int
		last   float64 // last member joined, the merge anchor
		newest int     // most recent bar index inside the cluster
	}

	var clusters []cluster
	cur := cluster{sum: sorted[0].price, count: 1, last: sorted[0].price, newest: sorted[0].index}
	for _, p := range sorted[1:] {
		if cur.last != 0 && math.Abs(p.price-cur.last)/cur.last <= tolerance {
			cur.sum += p.price
			cur.count++
			cur.last = p.price
			if p.index > cur.newest {
				cur.newest = p.index
			}
			continue
		}
		clusters = append(clusters, cur)
		cur = cluster{sum: p.price, count: 1, last: p.price, newest: p.index}
	}
	clusters = append(clusters, cur)

	// Most recent 3 clusters only.
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].newest > clusters[j].newest })
	if len(clusters) > 3 {
		clusters = clusters[:3]
	}

	out := make([]float64, len(clusters))
	for i, c := range clusters {
		out[i] = c.sum / float64(c.count)
	}
	sort.Float64s(out)
	return out
}

var (
	fibRetracements = []struct {
		name  string
		ratio float64
	}{
		{"0.0", 0}, {"23.6", 0.236}, {"38.2", 0.382}, {"50.0", 0.5},
		{"61.8", 0.618}, {"78.6", 0.786}, {"100.0", 1},
	}
	fibExtensions = []struct {
		name  string
		ratio float64
	}{
		{"127.2", 1.272}, {"161.8", 1.618}, {"200.0", 2}, {"261.8", 2.618},
	}
)

// FibonacciLevels computes retracement and extension levels from the swing
// high/low over the trailing lookback bars. Retracements are measured from
// the high toward the low; extensions project beyond the low. The nearest
// level is reported only when it sits within 1% of the current price.
func FibonacciLevels(bars []model.Bar, lookback int, currentPrice float64) *model.FibonacciResult {
	if lookback <= 0 || len(bars) < 2 {
		return nil
	}
	if len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}

	high, low := bars[0].High, bars[0].Low
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	span := high - low

	res := &model.FibonacciResult{
		SwingHigh:    high,
		SwingLow:     low,
		Retracements: make(map[string]float64, len(fibRetracements)),
		Extensions:   make(map[string]float64, len(fibExtensions)),
	}
	for _, lv := range fibRetracements {
		res.Retracements[lv.name] = high - span*lv.ratio
	}
	for _, lv := range fibExtensions {
		res.Extensions[lv.name] = high - span*lv.ratio
	}
	res.Nearest = nearestFibLevel(res, currentPrice)
	return res
}

// nearestFibLevel finds the level with the smallest percentage distance to
// price, reported only inside a 1% tolerance.
func nearestFibLevel(res *model.FibonacciResult, price float64) *model.FibLevel {
	if price <= 0 {
		return nil
	}
	var best *model.FibLevel
	consider := func(name, kind string, level float64) {
		dist := math.Abs(price-level) / price * 100
		if best == nil || dist < best.DistancePct {
			best = &model.FibLevel{Name: name, Kind: kind, Price: level, DistancePct: dist}
		}
	}
	for _, lv := range fibRetracements {
		consider(lv.name, "retracement", res.Retracements[lv.name])
	}
	for _, lv := range fibExtensions {
		consider(lv.name, "extension", res.Extensions[lv.name])
	}
	if best == nil || best.DistancePct > 1.0 {
		return nil
	}
	return best
}
