package stats

import "math"

// CyclicMean returns the circular mean position of a histogram whose bins
// are evenly spaced on a cycle, and the mean resultant length R.
// R ranges from 0 (uniform) to 1 (everything in one bin). Bin i sits at
// position i+offset, so hours use offset 0 and days of year offset 1.
func CyclicMean(counts []int, offset int) (mean, r float64) {
	n := len(counts)
	if n == 0 {
		return 0, 0
	}

	var sumSin, sumCos, total float64
	for i, c := range counts {
		if c == 0 {
			continue
		}
		angle := 2 * math.Pi * float64(i) / float64(n)
		w := float64(c)
		sumSin += w * math.Sin(angle)
		sumCos += w * math.Cos(angle)
		total += w
	}
	if total == 0 {
		return 0, 0
	}

	r = math.Hypot(sumSin, sumCos) / total
	pos := math.Atan2(sumSin, sumCos) / (2 * math.Pi) * float64(n)
	if pos < 0 {
		pos += float64(n)
	}
	return pos + float64(offset), r
}

// NormalizedEntropy is the Shannon entropy of a histogram divided by
// log2(len(counts)): 0 when one bin holds everything, 1 when uniform
func NormalizedEntropy(counts []int) float64 {
	if len(counts) <= 1 {
		return 0
	}

	var total float64
	for _, c := range counts {
		total += float64(c)
	}
	if total == 0 {
		return 0
	}

	var h float64
	for _, c := range counts {
		if c > 0 {
			p := float64(c) / total
			h -= p * math.Log2(p)
		}
	}
	return h / math.Log2(float64(len(counts)))
}
