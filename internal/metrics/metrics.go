package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spendwise_http_requests_total",
		Help: "Total number of HTTP requests, labelled by route and status code.",
	}, []string{"route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spendwise_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, labelled by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	SourceFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spendwise_source_fetch_failures_total",
		Help: "Total number of failed transaction source queries, labelled by source.",
	}, []string{"source"})

	InsightsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spendwise_insights_emitted_total",
		Help: "Total number of insights generated, labelled by kind.",
	}, []string{"kind"})

	WorkerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spendwise_worker_messages_total",
		Help: "Total number of insight requests handled by the worker, labelled by outcome.",
	}, []string{"outcome"})
)

// HTTPRejections counts requests turned away before reaching a handler.
var HTTPRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spendwise_http_rejections_total",
	Help: "Total number of rejected HTTP requests, labelled by reason.",
}, []string{"reason"})
