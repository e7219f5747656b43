package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEvenSample(t *testing.T) {
	samples := []float64{40.0, 10.0, 30.0, 20.0}
	s, err := Summarize(samples)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 40.0, s.Max)
	assert.Equal(t, 25.0, s.Mean)
	assert.Equal(t, 25.0, s.Median)
	assert.Equal(t, 10.0, s.Q1)
	assert.Equal(t, 30.0, s.Q3)
	assert.InDelta(t, 11.180339887, s.StdDev, 1e-9)
	assert.Equal(t, []float64{40.0, 10.0, 30.0, 20.0}, samples)
}

func TestSummarizeOddSample(t *testing.T) {
	s, err := Summarize([]float64{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.Equal(t, 2.0, s.Mean)
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 1.0, s.Q1)
	assert.Equal(t, 3.0, s.Q3)
	assert.InDelta(t, math.Sqrt(2.0/3.0), s.StdDev, 1e-15)
}

func TestSummarizeCountsCrossingsInArrivalOrder(t *testing.T) {
	s, err := Summarize([]float64{0.5, -0.25, 0.75, -1.0})
	require.NoError(t, err)
	assert.Equal(t, 3, s.ZeroCrossings)
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, Summary{}, s)
}

func TestSummarizeAgreesWithMinMaxOnNaN(t *testing.T) {
	xs := []float64{2, math.NaN(), 1}

	_, minErr := Min(xs)
	_, maxErr := Max(xs)
	s, err := Summarize(xs)

	assert.ErrorIs(t, minErr, ErrNaNInput)
	assert.ErrorIs(t, maxErr, ErrNaNInput)
	assert.ErrorIs(t, err, ErrNaNInput)
	assert.Equal(t, Summary{}, s)
}
