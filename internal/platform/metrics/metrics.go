// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crediario"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	StockMovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_movements_total",
		Help:      "Stock ledger mutations by reason.",
	}, []string{"reason"})

	ReservationTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_transitions_total",
		Help:      "Reservation lifecycle transitions by resulting status.",
	}, []string{"status"})

	PaymentsAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_applied_total",
		Help:      "Payments committed, by method.",
	}, []string{"method"})

	PaymentAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_amount_total",
		Help:      "Sum of committed payment amounts.",
	})

	PaymentsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_rejected_total",
		Help:      "Payments refused before any write, by reason.",
	}, []string{"reason"})

	AccountsPaidOffTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credit_accounts_paid_off_total",
		Help:      "Credit accounts that reached a zero balance.",
	})

	IntegrityRepairsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credit_integrity_repairs_total",
		Help:      "Times a credit account's stored totals had to be repaired.",
	})

	SideEffectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "side_effects_total",
		Help:      "Payment follow-up attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Ledger events handed to the broker, by outcome.",
	}, []string{"outcome"})
)
