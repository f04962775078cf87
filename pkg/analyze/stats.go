package analyze

import (
	"math"
	"sort"
)

// round2 rounds to 2 decimal places, matching the reported precision of
// percentages and scores.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round4 rounds to 4 decimal places (entropy, ratios).
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// medianFloat returns the median as a float, averaging the two middle
// values for even-sized inputs. The input slice is not modified.
func medianFloat(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
}

// sampleStd returns the sample standard deviation (n-1 denominator),
// 0 for fewer than two values.
func sampleStd(values []int) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := meanInt(values)
	sum := 0.0
	for _, v := range values {
		d := float64(v) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func minMaxInt(values []int) (int, int) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
