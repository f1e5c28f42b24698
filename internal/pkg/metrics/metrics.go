// Package metrics defines and registers all custom Prometheus metrics for the
// CRM API. It is the single source of truth for metric names, labels and help
// strings. Metrics register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// ── Auth ─────────────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - role: the login surface (admin, manager, employee)
//   - result: "success" or "rejected"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts by role and result.",
	},
	[]string{"role", "result"},
)

// LastLoginFailuresTotal counts lastLogin writes that were dropped.
// Label:
//   - stage: "enqueue" (queue full) or "write" (store update failed)
var LastLoginFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "last_login_failures_total",
		Help:      "Total number of best-effort lastLogin updates that failed.",
	},
	[]string{"stage"},
)

// LoginQueueDepth tracks pending lastLogin writes per recorder worker.
var LoginQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "login_queue_depth",
		Help:      "Current number of lastLogin writes pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// AccessDeniedTotal counts requests rejected by the access guard.
// Label:
//   - reason: "missing_token", "invalid_token" or "insufficient_role"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected by the access guard.",
	},
	[]string{"reason"},
)

// ── Leads ────────────────────────────────────────────────────────────────────

// LeadsCapturedTotal counts public form submissions that were stored.
// Label:
//   - kind: "customer" or "contact"
var LeadsCapturedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leads_captured_total",
		Help:      "Total number of leads captured through the public forms.",
	},
	[]string{"kind"},
)

// IdempotencyLookupsTotal counts idempotency-key lookups on lead capture.
// Label:
//   - result: "hit", "miss" or "error"
var IdempotencyLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotency_lookups_total",
		Help:      "Total number of idempotency-key lookups, labelled by result.",
	},
	[]string{"result"},
)

// ── Admin ────────────────────────────────────────────────────────────────────

// UsersProvisionedTotal counts staff accounts created by administrators.
var UsersProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_provisioned_total",
		Help:      "Total number of staff accounts created, by role.",
	},
	[]string{"role"},
)
