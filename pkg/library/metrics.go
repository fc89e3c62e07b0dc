package library

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_cache_requests_total",
		Help: "Library cache lookups by kind and result (hit, miss, shared)",
	}, []string{"kind", "result"})

	backendFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_backend_fetch_total",
		Help: "Backend reads issued after a cache miss",
	}, []string{"kind", "mode"})

	backendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_backend_errors_total",
		Help: "Failed backend operations by kind and operation",
	}, []string{"kind", "operation"})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_mutations_total",
		Help: "Successful writes by kind, action and mode",
	}, []string{"kind", "action", "mode"})
)
