// Package metrics 定义取数链路的 Prometheus 指标，全部通过 promauto 注册到默认 Registry。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 取页
	PageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitrine_page_duration_seconds",
			Help:    "Duration of page retrieval in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"feed", "path"},
	)

	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_pages_total",
			Help: "Total number of pages served by retrieval path",
		},
		[]string{"feed", "path"}, // path: personalized, cold, plain, empty
	)

	PageItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitrine_page_items",
			Help:    "Number of items returned per page",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"feed"},
	)

	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_fallbacks_total",
			Help: "Total number of retrieval fallbacks",
		},
		[]string{"feed", "from", "to", "reason"},
	)

	// 过滤
	FilterRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_filter_rows_total",
			Help: "Rows seen by the filter stage, by outcome",
		},
		[]string{"feed", "outcome"}, // kept, rejected
	)

	FilterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_filter_rejections_total",
			Help: "Rows rejected by filter",
		},
		[]string{"filter"},
	)

	// Pipeline 节点
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitrine_node_duration_seconds",
			Help:    "Duration of pipeline node execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"node", "kind"},
	)

	RecallSourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_recall_source_errors_total",
			Help: "Recall source failures swallowed by fanout",
		},
		[]string{"source"},
	)

	// 交互流水
	RecorderEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_recorder_events_total",
			Help: "Interaction recorder events by outcome",
		},
		[]string{"outcome"}, // written, dropped, failed
	)

	RecorderQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitrine_recorder_queue_depth",
			Help: "Interactions waiting to be written",
		},
	)

	// 熔断
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vitrine_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitrine_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveBreakerTransition 记录熔断状态变化，可直接作为 store.BreakerSettings.OnStateChange。
func ObserveBreakerTransition(name, from, to string) {
	BreakerTransitions.WithLabelValues(name, from, to).Inc()
	BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	}
	return 0
}
