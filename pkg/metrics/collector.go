// Package metrics exposes Prometheus instrumentation for the coin ledger,
// the activity tracker and the HTTP surface.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fitcoin-app/fitcoin/internal/session"
	"github.com/fitcoin-app/fitcoin/internal/tracker"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoin_http_requests_total",
			Help: "Total number of HTTP requests labeled by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitcoin_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	trackerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoin_tracker_transitions_total",
			Help: "Total number of tracker state transitions",
		},
		[]string{"from", "to"},
	)
	accrualTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitcoin_accrual_ticks_total",
			Help: "Total number of calorie accrual ticks",
		},
	)
	ledgerMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoin_ledger_mutations_total",
			Help: "Total number of committed session mutations by operation",
		},
		[]string{"operation"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoin_errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	coinBalance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoin_coin_balance",
			Help: "Current coin balance of the active session",
		},
	)
	coinsEarnedTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoin_coins_earned_total",
			Help: "Lifetime coins earned by the active session",
		},
	)
	coinsSpentTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoin_coins_spent_total",
			Help: "Lifetime coins spent by the active session",
		},
	)
	activitiesRecorded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoin_activities_recorded",
			Help: "Number of activity records in the active session",
		},
	)
	trackingActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoin_tracking_active",
			Help: "Whether an accrual session is currently running",
		},
	)
	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoin_purchases_total",
			Help: "Total number of marketplace purchases by category and status",
		},
		[]string{"category", "status"},
	)
)

func init() {
	tracker.RegisterTransitionRecorder(RecordTrackerTransition)
	tracker.RegisterTickRecorder(RecordAccrualTick)
	session.RegisterMutationRecorder(RecordMutation)
}

// RecordHTTPRequest increments request counters and records duration.
func RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}

	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordTrackerTransition tracks accrual state machine transitions.
func RecordTrackerTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	trackerTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordAccrualTick counts one calorie accrual tick.
func RecordAccrualTick() {
	accrualTicksTotal.Inc()
}

// RecordMutation observes a committed session mutation and refreshes the
// ledger gauges from the resulting snapshot.
func RecordMutation(op string, snap *session.Snapshot) {
	if op == "" {
		op = "unknown"
	}
	ledgerMutationsTotal.WithLabelValues(op).Inc()

	if snap == nil {
		return
	}

	coinBalance.Set(float64(snap.Coins.Balance))
	coinsEarnedTotal.Set(float64(snap.Coins.TotalEarned))
	coinsSpentTotal.Set(float64(snap.Coins.TotalSpent))
	activitiesRecorded.Set(float64(len(snap.Activities)))
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	if code == "" {
		code = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(code, severity).Inc()
}

// RecordPurchase counts one marketplace purchase attempt.
func RecordPurchase(category, status string) {
	if category == "" {
		category = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	purchasesTotal.WithLabelValues(category, status).Inc()
}

// SessionCollector periodically reads the session store and emits gauges.
type SessionCollector struct {
	store *session.Store
}

// NewSessionCollector builds a collector bound to the provided store.
func NewSessionCollector(store *session.Store) *SessionCollector {
	return &SessionCollector{store: store}
}

// Run polls the store every 10 seconds until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}

	for {
		c.collect()

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (c *SessionCollector) collect() {
	coins := c.store.Coins()
	coinBalance.Set(float64(coins.Balance))
	coinsEarnedTotal.Set(float64(coins.TotalEarned))
	coinsSpentTotal.Set(float64(coins.TotalSpent))
	activitiesRecorded.Set(float64(len(c.store.Activities())))

	if c.store.IsTracking() {
		trackingActive.Set(1)
	} else {
		trackingActive.Set(0)
	}
}
