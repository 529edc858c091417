package redis

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
)

var (
	kvRequestsTotal   *prometheus.CounterVec
	kvErrorsTotal     *prometheus.CounterVec
	kvRequestDuration *prometheus.HistogramVec
)

func init() {
	kvRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kv_requests_total",
			Help: "Total number of key-value store requests by method.",
		},
		[]string{"method"},
	)
	kvErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kv_errors_total",
			Help: "Total number of key-value store errors by method.",
		},
		[]string{"method"},
	)
	kvRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kv_request_duration_seconds",
			Help:    "Key-value store request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	prometheus.MustRegister(kvRequestsTotal, kvErrorsTotal, kvRequestDuration)
}

// MetricsClient wraps Client to collect Prometheus metrics.
type MetricsClient struct {
	next *Client
}

// NewMetricsClient creates an instrumented key-value client.
func NewMetricsClient(next *Client) *MetricsClient {
	return &MetricsClient{next: next}
}

// Get instruments Client.Get.
func (m *MetricsClient) Get(ctx context.Context, key string) (string, error) {
	timer := prometheus.NewTimer(kvRequestDuration.WithLabelValues("get"))
	result, err := m.next.Get(ctx, key)
	timer.ObserveDuration()
	kvRequestsTotal.WithLabelValues("get").Inc()
	if err != nil {
		kvErrorsTotal.WithLabelValues("get").Inc()
	}
	return result, err
}

// Set instruments Client.Set.
func (m *MetricsClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	timer := prometheus.NewTimer(kvRequestDuration.WithLabelValues("set"))
	err := m.next.Set(ctx, key, value, ttl)
	timer.ObserveDuration()
	kvRequestsTotal.WithLabelValues("set").Inc()
	if err != nil {
		kvErrorsTotal.WithLabelValues("set").Inc()
	}
	return err
}

// Delete instruments Client.Delete.
func (m *MetricsClient) Delete(ctx context.Context, key string) error {
	timer := prometheus.NewTimer(kvRequestDuration.WithLabelValues("delete"))
	err := m.next.Delete(ctx, key)
	timer.ObserveDuration()
	kvRequestsTotal.WithLabelValues("delete").Inc()
	if err != nil {
		kvErrorsTotal.WithLabelValues("delete").Inc()
	}
	return err
}

// TxPipeline forwards to the underlying client.
func (m *MetricsClient) TxPipeline() goredis.Pipeliner {
	return m.next.TxPipeline()
}

// Close closes the underlying client.
func (m *MetricsClient) Close() error {
	return m.next.Close()
}
