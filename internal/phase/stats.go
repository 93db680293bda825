package phase

import "github.com/dshills/surveysim/internal/survey"

// Mean returns the arithmetic mean over every present field of every record.
// An empty population has mean 0.
func Mean[R survey.Record[R]](p survey.Population[R]) float64 {
	var sum float64
	var n int
	for i := 0; i < p.Len(); i++ {
		rec := p.At(i)
		for _, f := range rec.Fields() {
			sum += rec.Value(f)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// FieldMeans returns the mean score of each field key across records.
func FieldMeans[R survey.Record[R]](p survey.Population[R]) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i := 0; i < p.Len(); i++ {
		rec := p.At(i)
		for _, f := range rec.Fields() {
			sums[f] += rec.Value(f)
			counts[f]++
		}
	}
	out := make(map[int]float64, len(sums))
	for f, sum := range sums {
		out[f] = sum / float64(counts[f])
	}
	return out
}

// Delta returns Mean(after) - Mean(before).
func Delta[R survey.Record[R]](after, before survey.Population[R]) float64 {
	return Mean(after) - Mean(before)
}

// PercentChange returns the relative change from before to after in percent.
// A zero before value yields 0.
func PercentChange(after, before float64) float64 {
	if before == 0 {
		return 0
	}
	return (after - before) / before * 100
}
