package usecases

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tollchain",
		Subsystem: "validator",
		Name:      "validations_total",
		Help:      "QR validation outcomes partitioned by result.",
	}, []string{"result"})

	paymentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tollchain",
		Subsystem: "payment",
		Name:      "submissions_total",
		Help:      "Toll payment submission outcomes partitioned by result.",
	}, []string{"result"})

	paymentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tollchain",
		Subsystem: "payment",
		Name:      "submission_duration_seconds",
		Help:      "Wall time of an end-to-end toll processing run.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	fallbackRateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tollchain",
		Subsystem: "gateway",
		Name:      "fallback_rates_total",
		Help:      "Toll rate lookups served from the static fallback table.",
	})
)
