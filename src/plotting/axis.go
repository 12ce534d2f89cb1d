package plotting

import (
	"fmt"
	"math"
	"strconv"
)

type tick struct {
	Value float64
	Label string
}

// niceStep picks a 1/2/2.5/5 x 10^k increment giving roughly n intervals over span.
func niceStep(span float64, n int) float64 {
	if n < 2 {
		n = 2
	}
	if !isFinite(span) || span <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil(span / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	return bestStep
}

// axisTicks returns ticks whose first and last values are exactly min and max, with nice
// interior increments in between. go-chart derives the axis range from the tick span when
// ticks are given, so the endpoints pin the requested limits.
func axisTicks(min, max float64, n int) []tick {
	if !(max > min) {
		return []tick{{Value: min, Label: formatTick(min)}}
	}
	step := niceStep(max-min, n)
	gap := step * 0.35
	ticks := []tick{{Value: min, Label: formatTick(min)}}
	// Counting in ints keeps the loop finite when min/step is beyond float precision.
	start := math.Ceil(min / step)
	count := int(math.Ceil((max-min)/step)) + 1
	for k := 0; k <= count; k++ {
		v := (start + float64(k)) * step
		if v >= max {
			break
		}
		if math.Abs(v) < step*1e-9 {
			v = 0
		}
		if v-min < gap || max-v < gap || v <= ticks[len(ticks)-1].Value {
			continue
		}
		ticks = append(ticks, tick{Value: v, Label: formatTick(v)})
	}
	return append(ticks, tick{Value: max, Label: formatTick(max)})
}

// logAxisTicks returns ticks in log10 space for a positive [min, max] domain: the two
// endpoints plus every decade strictly between them (thinned to about eight labels).
func logAxisTicks(min, max float64) []tick {
	lmin, lmax := math.Log10(min), math.Log10(max)
	ticks := []tick{{Value: lmin, Label: formatTick(min)}}
	stride := 1.0
	if span := lmax - lmin; span > 8 {
		stride = math.Ceil(span / 8)
	}
	for e := math.Ceil(lmin); e < lmax; e += stride {
		if e-lmin < 0.15 || lmax-e < 0.15 {
			continue
		}
		ticks = append(ticks, tick{Value: e, Label: formatTick(math.Pow(10, e))})
	}
	return append(ticks, tick{Value: lmax, Label: formatTick(max)})
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 1_000_000:
		return strconv.FormatFloat(v, 'g', 3, 64)
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	case av >= 0.01:
		return fmt.Sprintf("%.2f", v)
	default:
		return strconv.FormatFloat(v, 'g', 2, 64)
	}
}
