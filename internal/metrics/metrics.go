package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_orders_created_total",
		Help: "Total number of orders created",
	})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_order_status_changes_total",
		Help: "Total number of order status changes",
	}, []string{"status"})

	CommissionsAccruedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_commissions_accrued_total",
		Help: "Total number of commissions accrued",
	})

	CommissionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_commission_transitions_total",
		Help: "Total number of commission status transitions",
	}, []string{"from", "to"})

	CommissionAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_commission_amount_total",
		Help: "Sum of commission amounts by resulting status",
	}, []string{"status"})

	CommissionRateErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_commission_rate_errors_total",
		Help: "Total number of orders rejected for missing commission rate",
	})

	WithdrawalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_withdrawals_total",
		Help: "Total number of withdrawal state changes",
	}, []string{"status"})

	WithdrawalAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_withdrawal_amount_total",
		Help: "Sum of withdrawal amounts by resulting status",
	}, []string{"status"})

	TrackingEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_tracking_events_total",
		Help: "Total number of tracking events recorded",
	}, []string{"kind", "result"})

	ReconcileMismatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_wallet_reconcile_mismatch_total",
		Help: "Total number of wallet buckets that disagree with their source rows",
	}, []string{"bucket"})

	ReconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_wallet_reconcile_runs_total",
		Help: "Total number of reconcile passes",
	})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_published_total",
		Help: "Total number of ledger events handed to the broker",
	}, []string{"type", "result"})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_rate_limited_total",
		Help: "Total number of requests rejected or passed through by rate limit rules",
	}, []string{"rule", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// AddAmount 累加金额类计数器，负数忽略
func AddAmount(vec *prometheus.CounterVec, label string, amount float64) {
	if vec == nil || amount <= 0 {
		return
	}
	vec.WithLabelValues(label).Add(amount)
}
