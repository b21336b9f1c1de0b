package services

import "math"

// rate converts num/den into a percentage rounded to 2 decimals. A
// zero denominator is a defined zero, not an error.
func rate(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round2(float64(num) / float64(den) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// meanOf averages the non-nil samples, rounded to 4 decimals. Returns
// nil when no sample carries the metric.
func meanOf(samples []*float64) *float64 {
	var sum float64
	var n int
	for _, s := range samples {
		if s == nil {
			continue
		}
		sum += *s
		n++
	}
	if n == 0 {
		return nil
	}
	avg := round4(sum / float64(n))
	return &avg
}
