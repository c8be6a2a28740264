// Package metrics holds the Prometheus collectors exposed on /metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "production"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Callable operation outcomes, labelled by error code ("OK" on success)
	FunctionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "function_calls_total",
			Help:      "Total number of callable function invocations",
		},
		[]string{"function", "code"},
	)

	// Inventory metrics
	InventoryAdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_adjustments_total",
			Help:      "Total number of stock changes written",
		},
		[]string{"operation", "item_type"},
	)

	InventoryItemFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_item_failures_total",
			Help:      "Total number of batch items that could not be applied",
		},
		[]string{"operation"},
	)

	// Work order metrics
	WorkOrderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "work_order_transitions_total",
			Help:      "Total number of work order status changes",
		},
		[]string{"from", "to"},
	)

	WorkOrderShortagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "work_order_completion_shortages_total",
			Help:      "Total number of work orders completed with material shortages",
		},
	)
)
