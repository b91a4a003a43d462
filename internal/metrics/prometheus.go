// Package metrics exposes prometheus collectors for dialogue extraction.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered with the default registry and served on /metrics.
var (
	FramesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialogue_frames_scanned_total",
		Help: "Total number of video frames examined for dialogue changes",
	})

	DialogueChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialogue_changes_detected_total",
		Help: "Total number of dialogue box changes detected",
	})

	RecognitionFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogue_recognition_fallbacks_total",
		Help: "Times the secondary recognizer was used, by field",
	}, []string{"field"})

	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialogue_jobs_total",
		Help: "Total number of extraction jobs finished, by status",
	}, []string{"status"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dialogue_phase_duration_seconds",
		Help:    "Duration of the scan and recognition phases",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	}, []string{"phase"})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialogue_active_jobs",
		Help: "Number of extraction jobs currently running",
	})
)
