// Package metrics defines and registers all custom Prometheus metrics for the
// admin portal's access-control subsystem. It is the single source of truth
// for metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin_portal"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "inactive", "throttled", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AccessDenialsTotal counts requests rejected by the access gate.
// Label:
//   - kind: "unauthenticated" (401) or "forbidden" (403)
var AccessDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denials_total",
		Help:      "Total number of requests rejected by the access gate.",
	},
	[]string{"kind"},
)

// SessionValidationsTotal counts bearer/cookie session validations.
// Label:
//   - result: "valid" or "invalid"
var SessionValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_validations_total",
		Help:      "Total number of session token validations, by result.",
	},
	[]string{"result"},
)

// RequestDuration measures authenticated request latency per module.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of authenticated requests, by module and method.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"module", "method"},
)
