package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GraphRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graph_requests_total",
		Help: "Calls made to the Graph API by operation and outcome.",
	}, []string{"operation", "outcome"})

	GraphDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graph_request_duration_seconds",
		Help:    "Latency of Graph API calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests served by route pattern, method and status code.",
	}, []string{"route", "method", "code"})

	PostsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posts_published_total",
		Help: "Posts created through the forms by kind and publish flag.",
	}, []string{"kind", "published"})

	SessionsCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_cleaned_total",
		Help: "Expired sessions removed by the cleanup job.",
	})
)
