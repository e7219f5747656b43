package stats

import "sort"

// Summary is the full set of statistics for one batch of samples.
type Summary struct {
	Count         int
	Min           float64
	Max           float64
	Mean          float64
	Median        float64
	Q1            float64
	Q3            float64
	StdDev        float64
	ZeroCrossings int
}

// Summarize computes every statistic of samples over a single sorted copy.
func Summarize(samples []float64) (Summary, error) {
	if err := requireSamples(samples); err != nil {
		return Summary{}, err
	}
	crossings, _ := ZeroCrossings(samples)

	s := append([]float64(nil), samples...)
	sort.Float64s(s)
	n := len(s)

	mean, _ := Mean(s)
	stddev, _ := Stdev(s, mean)
	q1, q3 := sortedQuartiles(s)

	return Summary{
		Count:         n,
		Min:           s[0],
		Max:           s[n-1],
		Mean:          mean,
		Median:        sortedMedian(s),
		Q1:            q1,
		Q3:            q3,
		StdDev:        stddev,
		ZeroCrossings: crossings,
	}, nil
}
