package bake

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	modeLabel      = "mode"
	operationLabel = "operation"
	errTypeLabel   = "error_type"
)

var (
	volumesExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "occlusion_bake_volumes",
		Help: "The number of volume records exported.",
	}, []string{
		modeLabel,
	})

	occludersExported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occlusion_bake_occluders",
		Help: "The number of occluder records exported.",
	})

	proxiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occlusion_bake_proxies",
		Help: "The number of occluder proxies created.",
	})

	bakeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "occlusion_bake_errors",
		Help: "The errors that occurred while baking.",
	}, []string{
		errTypeLabel,
	})

	bakeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "occlusion_bake_duration_seconds",
		Help: "The time spent in each bake operation.",
	}, []string{
		operationLabel,
	})
)

func instrumentDuration(operation string, start time.Time) {
	bakeDuration.With(prometheus.Labels{
		operationLabel: operation,
	}).Observe(time.Since(start).Seconds())
}

func instrumentVolumes(mode string, n int) {
	volumesExported.With(prometheus.Labels{
		modeLabel: mode,
	}).Add(float64(n))
}

func instrumentError(errType string) {
	bakeErrors.With(prometheus.Labels{
		errTypeLabel: errType,
	}).Inc()
}
