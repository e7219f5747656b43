package main

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerometer_worker/stats"
)

type insertedSummary struct {
	captureID int64
	summary   axisSummary
}

type fakeStore struct {
	captures map[int64][2]int
	readings map[int64][]reading
	inserted []insertedSummary
	failOn   string
}

func (f *fakeStore) captureExists(_ context.Context, id int64) (bool, error) {
	if f.failOn == "exists" {
		return false, errors.New("db down")
	}
	_, ok := f.captures[id]
	return ok, nil
}

func (f *fakeStore) fetchCaptureWindow(_ context.Context, id int64) (int, int, error) {
	w := f.captures[id]
	return normalizePositiveInt(int64(w[0]), 1), normalizePositiveInt(int64(w[1]), 1), nil
}

func (f *fakeStore) fetchReadings(_ context.Context, captureID int64, page, perPage int) ([]reading, error) {
	limit, offset := windowLimitOffset(page, perPage)
	all := f.readings[captureID]
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeStore) insertAxisSummary(_ context.Context, captureID int64, a axisSummary, _, _ float64) error {
	if f.failOn == "insert" {
		return errors.New("insert rejected")
	}
	f.inserted = append(f.inserted, insertedSummary{captureID: captureID, summary: a})
	return nil
}

func valid(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }

func newReading(x, y, z float64) reading {
	return reading{RecordedAt: time.Unix(0, 0), X: valid(x), Y: valid(y), Z: valid(z)}
}

func sampleStore() *fakeStore {
	return &fakeStore{
		captures: map[int64][2]int{1: {1, 3}, 2: {2, 2}, 3: {1, 10}},
		readings: map[int64][]reading{
			1: {
				newReading(3, -0.5, 1),
				newReading(1, 0.5, 1),
				newReading(2, -0.5, 1),
				newReading(100, 100, 100),
			},
			2: {
				newReading(1, 1, 1),
				newReading(2, 2, 2),
				newReading(7, 7, 7),
				{X: valid(9)},
			},
			3: {{}, {}},
		},
	}
}

func TestProcessCaptureInsertsOneRowPerAxis(t *testing.T) {
	st := sampleStore()

	require.NoError(t, processCapture(context.Background(), st, 1))

	require.Len(t, st.inserted, 3)
	x := st.inserted[0].summary
	assert.Equal(t, "x", x.Axis)
	assert.Equal(t, 3, x.Summary.Count)
	assert.Equal(t, 1.0, x.Summary.Min)
	assert.Equal(t, 3.0, x.Summary.Max)
	assert.Equal(t, 2.0, x.Summary.Mean)
	assert.Equal(t, 2.0, x.Summary.Median)

	y := st.inserted[1].summary
	assert.Equal(t, "y", y.Axis)
	assert.Equal(t, 2, y.Summary.ZeroCrossings)

	z := st.inserted[2].summary
	assert.Equal(t, 0.0, z.Summary.StdDev)
	for _, row := range st.inserted {
		assert.Equal(t, int64(1), row.captureID)
	}
}

func TestProcessCaptureSkipsNullAxes(t *testing.T) {
	st := sampleStore()

	require.NoError(t, processCapture(context.Background(), st, 2))

	require.Len(t, st.inserted, 3)
	assert.Equal(t, 2, st.inserted[0].summary.Summary.Count)
	assert.Equal(t, 9.0, st.inserted[0].summary.Summary.Max)
	assert.Equal(t, 1, st.inserted[1].summary.Summary.Count)
}

func TestProcessCaptureErrors(t *testing.T) {
	st := sampleStore()
	assert.ErrorContains(t, processCapture(context.Background(), st, 99), "not found")

	err := processCapture(context.Background(), st, 3)
	assert.ErrorIs(t, err, stats.ErrEmptyInput)
	assert.Empty(t, st.inserted)

	st.failOn = "insert"
	assert.ErrorContains(t, processCapture(context.Background(), st, 1), "insert rejected")

	st.failOn = "exists"
	assert.ErrorContains(t, processCapture(context.Background(), st, 1), "db down")
}

func TestHandlePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"processed", `{"class":"SummarizeCaptureJob","args":[1]}`, outcomeProcessed},
		{"string arg", `{"class":"GoWorker","args":["1"]}`, outcomeProcessed},
		{"unknown class", `{"class":"MailerJob","args":[1]}`, outcomeSkipped},
		{"bad json", `{`, outcomeInvalid},
		{"no args", `{"class":"GoWorker","args":[]}`, outcomeInvalid},
		{"zero id", `{"class":"GoWorker","args":[0]}`, outcomeInvalid},
		{"missing capture", `{"class":"GoWorker","args":[42]}`, outcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, handlePayload(context.Background(), sampleStore(), tt.payload))
		})
	}
}

type fakeQueue struct {
	replies []func() (string, bool, error)
	cancel  context.CancelFunc
}

func (q *fakeQueue) next() (string, bool, error) {
	if len(q.replies) == 0 {
		q.cancel()
		return "", false, nil
	}
	r := q.replies[0]
	q.replies = q.replies[1:]
	return r()
}

func TestRunServiceDrainsQueueUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st := sampleStore()
	q := &fakeQueue{cancel: cancel, replies: []func() (string, bool, error){
		func() (string, bool, error) { return "", false, nil },
		func() (string, bool, error) { return `{"class":"GoWorker","args":[1]}`, true, nil },
		func() (string, bool, error) { return `{"class":"MailerJob","args":[1]}`, true, nil },
	}}
	before := testutil.ToFloat64(jobsProcessed.WithLabelValues(outcomeProcessed))
	skipped := testutil.ToFloat64(jobsProcessed.WithLabelValues(outcomeSkipped))

	done := make(chan struct{})
	go func() {
		runService(ctx, st, q)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runService did not stop after cancel")
	}

	assert.Len(t, st.inserted, 3)
	assert.Equal(t, before+1, testutil.ToFloat64(jobsProcessed.WithLabelValues(outcomeProcessed)))
	assert.Equal(t, skipped+1, testutil.ToFloat64(jobsProcessed.WithLabelValues(outcomeSkipped)))
}

func TestRunServiceStopsDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := &fakeQueue{cancel: cancel, replies: []func() (string, bool, error){
		func() (string, bool, error) {
			cancel()
			return "", false, errors.New("connection refused")
		},
	}}

	start := time.Now()
	runService(ctx, sampleStore(), q)
	assert.Less(t, time.Since(start), retryDelay)
}
