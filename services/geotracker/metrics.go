package geotracker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geotracker_runs_total",
		Help: "Pipeline runs by result",
	}, []string{"result"})
	pointsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geotracker_points_total",
		Help: "Track points appended to the history",
	})
	geocodeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geotracker_geocode_total",
		Help: "Reverse geocoding lookups by result",
	}, []string{"result"})
	runSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geotracker_run_seconds",
		Help:    "Pipeline run latency",
		Buckets: prometheus.DefBuckets,
	})
)

func observeRun(start time.Time, result string) {
	runSeconds.Observe(time.Since(start).Seconds())
	runsTotal.WithLabelValues(result).Inc()
}
