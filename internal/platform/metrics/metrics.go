// Package metrics exposes Prometheus counters/histograms for the gateway,
// adapted from orchid/pkg/metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts OData requests by resource, method and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reso",
			Subsystem: "odata",
			Name:      "requests_total",
			Help:      "Total number of OData requests by resource and status",
		},
		[]string{"resource", "operation", "status"},
	)

	// QueryDuration tracks the latency of one resource driver list/get call
	// (its queries, row reshaping and expansions) by resource and operation.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reso",
			Subsystem: "odata",
			Name:      "query_duration_seconds",
			Help:      "Duration of OData list/get driver calls in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"resource", "kind"},
	)

	// GatewayReconnects counts backend reconnect attempts by outcome.
	GatewayReconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reso",
			Subsystem: "gateway",
			Name:      "reconnects_total",
			Help:      "Total number of backend reconnect attempts",
		},
		[]string{"outcome"},
	)

	// GatewayConnected reports whether the backend gateway believes it has
	// a live connection.
	GatewayConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "reso",
			Subsystem: "gateway",
			Name:      "connected",
			Help:      "1 if the backend gateway is connected, 0 otherwise",
		},
	)

	// TokensIssued counts OAuth token grants by grant type and outcome.
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reso",
			Subsystem: "oauth",
			Name:      "tokens_issued_total",
			Help:      "Total number of OAuth tokens issued by grant type",
		},
		[]string{"grant_type", "outcome"},
	)

	// TokensCleaned counts expired tokens purged by the cleanup sweeper.
	TokensCleaned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reso",
			Subsystem: "oauth",
			Name:      "tokens_cleaned_total",
			Help:      "Total number of expired tokens removed by the sweeper",
		},
		[]string{"table"},
	)
)
