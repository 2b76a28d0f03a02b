// Package metrics defines and registers all custom Prometheus metrics for the
// building management API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "building"

// ── Access control ────────────────────────────────────────────────────────────

// GuardDenialsTotal counts requests stopped by a guard.
// Labels:
//   - guard: "token", "role:admin", "role:member", "self"
//   - status: HTTP status returned ("401", "403")
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of requests denied by an access guard.",
	},
	[]string{"guard", "status"},
)

// ── Agreement workflow ────────────────────────────────────────────────────────

// AgreementTransitionsTotal counts approve/reject attempts.
// Labels:
//   - transition: "approve" or "reject"
//   - outcome: "applied", "rejected" (precondition failed), "failed" (store error)
var AgreementTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agreement_transitions_total",
		Help:      "Total number of agreement workflow transitions, by outcome.",
	},
	[]string{"transition", "outcome"},
)

// RoleChangesTotal counts role mutations.
// Labels:
//   - role: the role assigned
//   - reason: "agreement_approved" or "member_removed"
var RoleChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of identity role changes.",
	},
	[]string{"role", "reason"},
)

// AuditQueueDepth tracks pending role change records per audit worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of role change records pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts role change records dropped because a worker channel was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of role change records dropped on a full audit queue.",
	},
)

// ── Payments ──────────────────────────────────────────────────────────────────

// PaymentIntentsTotal counts calls to the card processor.
// Label:
//   - outcome: "created" or "error"
var PaymentIntentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Total number of payment intents requested from the card processor.",
	},
	[]string{"outcome"},
)

// PaymentsRecordedTotal counts stored rent payments.
var PaymentsRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_recorded_total",
		Help:      "Total number of rent payments recorded.",
	},
)
