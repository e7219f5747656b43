package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsPrefix = "accelerometer_worker_"

var (
	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "jobs_total",
		Help: "Queue jobs handled, by outcome.",
	}, []string{"outcome"})

	summaryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    metricsPrefix + "summary_duration_seconds",
		Help:    "Time spent summarizing one capture window.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	summaryPeakRSS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: metricsPrefix + "summary_peak_rss_bytes",
		Help: "Peak resident memory observed during the last summary.",
	})

	samplesSummarized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "samples_total",
		Help: "Samples summarized, by axis.",
	}, []string{"axis"})
)

const (
	outcomeProcessed = "processed"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
	outcomeInvalid   = "invalid"
)
