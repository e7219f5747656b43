// Package stats computes descriptive statistics over a batch of samples.
//
// Every function treats its input as read-only, except MedianInPlace which
// sorts the caller's slice. None of them retain the slice after returning.
// Empty input fails with ErrEmptyInput and any NaN sample with ErrNaNInput.
package stats

import (
	"math"
	"sort"
)

func Min(samples []float64) (float64, error) {
	if err := requireSamples(samples); err != nil {
		return 0, err
	}
	m := samples[0]
	for _, v := range samples[1:] {
		if v < m {
			m = v
		}
	}
	return m, nil
}

func Max(samples []float64) (float64, error) {
	if err := requireSamples(samples); err != nil {
		return 0, err
	}
	m := samples[0]
	for _, v := range samples[1:] {
		if v > m {
			m = v
		}
	}
	return m, nil
}

// Mean returns the arithmetic average of samples. The sum is compensated
// (Neumaier) and the result is clamped to the sample range. If the sum
// overflows, or a sample is infinite, each sample is scaled by 1/n before
// summing instead.
func Mean(samples []float64) (float64, error) {
	if err := requireSamples(samples); err != nil {
		return 0, err
	}
	n := float64(len(samples))
	lo, hi := samples[0], samples[0]
	var sum, c float64
	for _, v := range samples {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			c += (sum - t) + v
		} else {
			c += (v - t) + sum
		}
		sum = t
	}
	mean := (sum + c) / n
	if math.IsInf(sum, 0) || math.IsNaN(mean) {
		mean = 0
		for _, v := range samples {
			mean += v / n
		}
	}
	if mean < lo {
		mean = lo
	} else if mean > hi {
		mean = hi
	}
	return mean, nil
}

// Median returns the middle value of samples, or the average of the two
// middle values for an even count. samples is not modified.
func Median(samples []float64) (float64, error) {
	if err := requireSamples(samples); err != nil {
		return 0, err
	}
	return MedianInPlace(append([]float64(nil), samples...))
}

// MedianInPlace is Median without the copy: it sorts samples ascending and
// leaves them sorted. Callers that need the original order must copy first.
func MedianInPlace(samples []float64) (float64, error) {
	if err := requireSamples(samples); err != nil {
		return 0, err
	}
	sort.Float64s(samples)
	return sortedMedian(samples), nil
}

func sortedMedian(s []float64) float64 {
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2.0
}

// Stdev returns the population standard deviation of samples around mean.
// mean is not recomputed: it must be the mean of the same samples, otherwise
// the result is finite but meaningless.
func Stdev(samples []float64, mean float64) (float64, error) {
	if err := requireSamples(samples); err != nil {
		return 0, err
	}
	var sumsq float64
	for _, v := range samples {
		d := v - mean
		sumsq += d * d
	}
	return math.Sqrt(sumsq / float64(len(samples))), nil
}

// Quartiles returns the nearest-rank first and third quartiles.
func Quartiles(samples []float64) (q1, q3 float64, err error) {
	if err := requireSamples(samples); err != nil {
		return 0, 0, err
	}
	s := append([]float64(nil), samples...)
	sort.Float64s(s)
	q1, q3 = sortedQuartiles(s)
	return q1, q3, nil
}

func sortedQuartiles(s []float64) (q1, q3 float64) {
	n := len(s)
	idx := func(f float64) int {
		i := int(math.Ceil(f) - 1)
		if i < 0 {
			i = 0
		}
		if i >= n {
			i = n - 1
		}
		return i
	}
	return s[idx(float64(n)/4.0)], s[idx(float64(3*n)/4.0)]
}

// ZeroCrossings counts sign changes between consecutive non-zero samples.
func ZeroCrossings(samples []float64) (int, error) {
	if err := requireSamples(samples); err != nil {
		return 0, err
	}
	crossings := 0
	var prev float64
	for _, v := range samples {
		if v == 0 {
			continue
		}
		if prev != 0 && math.Signbit(prev) != math.Signbit(v) {
			crossings++
		}
		prev = v
	}
	return crossings, nil
}
