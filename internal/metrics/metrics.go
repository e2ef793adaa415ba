package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RouteTotal tracks routing outcomes per head
	RouteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpath_route_total",
			Help: "Total number of routed requests by outcome",
		},
		[]string{"head", "outcome"},
	)

	// FailoverTotal tracks failovers per head and status
	FailoverTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpath_failover_total",
			Help: "Total number of requests failed over to another path",
		},
		[]string{"head", "status"},
	)

	// RequeueDepth tracks the number of requests waiting for a path
	RequeueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mpath_requeue_depth",
			Help: "Number of requests buffered awaiting a healthy path",
		},
		[]string{"head"},
	)

	// DrainRunsTotal tracks drain task executions per head
	DrainRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpath_drain_runs_total",
			Help: "Total number of requeue drain runs",
		},
		[]string{"head"},
	)

	// PathReselectsTotal tracks slow-path reselections per head
	PathReselectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpath_path_reselects_total",
			Help: "Total number of cached path reselections",
		},
		[]string{"head"},
	)

	// SubmitLatency tracks device submission latency
	SubmitLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mpath_submit_latency_seconds",
			Help:    "Latency of request submission to completion",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"head", "path"},
	)
)
