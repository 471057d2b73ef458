package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoconvert",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geoconvert",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoconvert",
		Subsystem: "convert",
		Name:      "conversions_total",
		Help:      "Total coordinate conversions by direction and result",
	}, []string{"kind", "result"})

	pointsSavedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoconvert",
		Subsystem: "points",
		Name:      "saved_total",
		Help:      "Total points saved by source format",
	}, []string{"type"})

	tileRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoconvert",
		Subsystem: "tiles",
		Name:      "requests_total",
		Help:      "Total tile requests by style and result",
	}, []string{"style", "result"})
)
