package stats

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyInput is returned when a statistic is requested over zero samples.
	ErrEmptyInput = errors.New("stats: empty input")
	// ErrInvalidCount is returned when an explicit count is negative or larger
	// than the backing array.
	ErrInvalidCount = errors.New("stats: invalid count")
	// ErrNaNInput is returned when any sample is NaN.
	ErrNaNInput = errors.New("stats: NaN sample")
)

// View returns the first count elements of array as a bounded slice.
func View(array []float64, count int) ([]float64, error) {
	if count < 0 || count > len(array) {
		return nil, errors.Wrapf(ErrInvalidCount, "count %d, backing length %d", count, len(array))
	}
	return array[:count:count], nil
}

func requireSamples(samples []float64) error {
	if len(samples) == 0 {
		return ErrEmptyInput
	}
	for i, v := range samples {
		if math.IsNaN(v) {
			return errors.Wrapf(ErrNaNInput, "index %d", i)
		}
	}
	return nil
}
