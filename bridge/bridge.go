// Package bridge adapts host-side array-and-count calls to the stats package.
package bridge

import (
	log "github.com/sirupsen/logrus"

	"accelerometer_worker/stats"
)

// Wrapper forwards each call to stats after turning (array, count) into a
// bounded slice. Results and errors pass through unchanged.
type Wrapper struct {
	logger *log.Entry
}

func New(logger *log.Entry) *Wrapper {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Wrapper{logger: logger}
}

func (w *Wrapper) Hello(name string) {
	w.logger.WithField("name", name).Infof("Hello %s in Go", name)
}

func (w *Wrapper) MinArray(array []float64, count int) (float64, error) {
	samples, err := stats.View(array, count)
	if err != nil {
		return 0, err
	}
	return stats.Min(samples)
}

func (w *Wrapper) MaxArray(array []float64, count int) (float64, error) {
	samples, err := stats.View(array, count)
	if err != nil {
		return 0, err
	}
	return stats.Max(samples)
}

func (w *Wrapper) MeanArray(array []float64, count int) (float64, error) {
	samples, err := stats.View(array, count)
	if err != nil {
		return 0, err
	}
	return stats.Mean(samples)
}

// MedianArray leaves array in its original order.
func (w *Wrapper) MedianArray(array []float64, count int) (float64, error) {
	samples, err := stats.View(array, count)
	if err != nil {
		return 0, err
	}
	return stats.Median(samples)
}

// StdevArray expects mean to be the mean of the same count elements of array.
func (w *Wrapper) StdevArray(array []float64, mean float64, count int) (float64, error) {
	samples, err := stats.View(array, count)
	if err != nil {
		return 0, err
	}
	return stats.Stdev(samples, mean)
}

func (w *Wrapper) SummaryArray(array []float64, count int) (stats.Summary, error) {
	samples, err := stats.View(array, count)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(samples)
}
