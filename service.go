package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"accelerometer_worker/stats"
)

const retryDelay = 2 * time.Second

var axes = []string{"x", "y", "z"}

type captureStore interface {
	captureExists(ctx context.Context, id int64) (bool, error)
	fetchCaptureWindow(ctx context.Context, id int64) (page, perPage int, err error)
	fetchReadings(ctx context.Context, captureID int64, page, perPage int) ([]reading, error)
	insertAxisSummary(ctx context.Context, captureID int64, a axisSummary, durationSeconds, memoryBytes float64) error
}

type jobSource interface {
	next() (payload string, ok bool, err error)
}

// splitAxes turns readings into one sample slice per axis, skipping NULLs.
func splitAxes(readings []reading) map[string][]float64 {
	out := make(map[string][]float64, len(axes))
	for _, r := range readings {
		for i, v := range [...]sql.NullFloat64{r.X, r.Y, r.Z} {
			if v.Valid {
				out[axes[i]] = append(out[axes[i]], v.Float64)
			}
		}
	}
	return out
}

func summarizeAxes(readings []reading) ([]axisSummary, error) {
	samples := splitAxes(readings)
	var out []axisSummary
	for _, axis := range axes {
		s, err := stats.Summarize(samples[axis])
		if errors.Is(err, stats.ErrEmptyInput) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "axis %s", axis)
		}
		out = append(out, axisSummary{Axis: axis, Summary: s})
	}
	if len(out) == 0 {
		return nil, stats.ErrEmptyInput
	}
	return out, nil
}

type summaryOutcome struct {
	axes []axisSummary
	err  error
}

func processCapture(ctx context.Context, st captureStore, captureID int64) error {
	exists, err := st.captureExists(ctx, captureID)
	if err != nil {
		return errors.Wrapf(err, "look up capture %d", captureID)
	}
	if !exists {
		return errors.Errorf("captures id %d not found", captureID)
	}
	page, perPage, err := st.fetchCaptureWindow(ctx, captureID)
	if err != nil {
		return errors.Wrap(err, "fetch capture window failed")
	}
	readings, err := st.fetchReadings(ctx, captureID, page, perPage)
	if err != nil {
		return errors.Wrap(err, "fetch readings failed")
	}

	result, elapsed, memBytes := measurePeakResidentMemory(func() (summaryOutcome, float64) {
		start := time.Now()
		summaries, err := summarizeAxes(readings)
		return summaryOutcome{axes: summaries, err: err}, time.Since(start).Seconds()
	})
	if result.err != nil {
		return errors.Wrapf(result.err, "summarize capture %d", captureID)
	}

	for _, a := range result.axes {
		if err := st.insertAxisSummary(ctx, captureID, a, elapsed, memBytes); err != nil {
			return errors.Wrapf(err, "insert axis_summary %s failed", a.Axis)
		}
		samplesSummarized.WithLabelValues(a.Axis).Add(float64(a.Summary.Count))
	}
	summaryDuration.Observe(elapsed)
	summaryPeakRSS.Set(memBytes)

	log.WithFields(log.Fields{
		"capture_id":   captureID,
		"page":         page,
		"per_page":     perPage,
		"readings":     len(readings),
		"axes":         len(result.axes),
		"duration":     elapsed,
		"memory_bytes": memBytes,
	}).Info("processed capture")
	return nil
}

// handlePayload runs one queue payload and reports how it ended.
func handlePayload(ctx context.Context, st captureStore, payload string) string {
	job, err := decodeJob(payload)
	if err != nil {
		log.WithError(err).Warn("skipping payload")
		return outcomeInvalid
	}
	logger := log.WithField("job_class", job.Class)
	if !acceptedJobClasses[job.Class] {
		logger.Info("skipping job class")
		return outcomeSkipped
	}
	id, err := job.captureID()
	if err != nil || id == 0 {
		logger.WithError(err).Warnf("job missing capture_id: %s", payload)
		return outcomeInvalid
	}
	if err := processCapture(ctx, st, id); err != nil {
		logger.WithError(err).WithField("capture_id", id).Error("process error")
		return outcomeFailed
	}
	return outcomeProcessed
}

func runService(ctx context.Context, st captureStore, q jobSource) {
	for ctx.Err() == nil {
		payload, ok, err := q.next()
		if err != nil {
			log.WithError(err).Warnf("queue read failed; retrying in %s", retryDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}
		if !ok {
			continue
		}
		jobsProcessed.WithLabelValues(handlePayload(ctx, st, payload)).Inc()
	}
}
