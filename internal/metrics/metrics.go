// Package metrics defines Prometheus metrics for the Helix client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "helix"

// Request outcomes recorded by ObserveRequest.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeAPIError  = "api_error"
	OutcomeTransient = "transient"
	OutcomeAuthError = "auth_error"
)

// Collectors groups the metrics of one client. A nil *Collectors records
// nothing, so callers never need to check whether metrics are enabled.
type Collectors struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec
	TokenRenewals   *prometheus.CounterVec
	BatchKeys       prometheus.Histogram
	ScanPages       prometheus.Histogram
}

// New registers the client metrics with reg. A nil reg returns nil.
func New(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &Collectors{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of Helix calls by path and outcome.",
		}, []string{"path", "outcome"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of Helix calls in seconds, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		RetriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Total number of retried Helix attempts.",
		}, []string{"path"}),

		TokenRenewals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_renewals_total",
			Help:      "Total number of OAuth token exchanges by result.",
		}, []string{"result"}),

		BatchKeys: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_keys",
			Help:      "Number of keys per batch lookup.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),

		ScanPages: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_pages",
			Help:      "Number of pages read per paginated scan.",
			Buckets:   prometheus.LinearBuckets(1, 5, 10),
		}),
	}
}

// ObserveRequest records one finished call.
func (c *Collectors) ObserveRequest(path, outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(path, outcome).Inc()
	c.RequestDuration.WithLabelValues(path).Observe(took.Seconds())
}

// IncRetry records one retried attempt.
func (c *Collectors) IncRetry(path string) {
	if c == nil {
		return
	}
	c.RetriesTotal.WithLabelValues(path).Inc()
}

// TokenRenewal records one token exchange.
func (c *Collectors) TokenRenewal(ok bool) {
	if c == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	c.TokenRenewals.WithLabelValues(result).Inc()
}

// ObserveBatch records the size of one batch lookup.
func (c *Collectors) ObserveBatch(keys int) {
	if c == nil {
		return
	}
	c.BatchKeys.Observe(float64(keys))
}

// ObserveScan records the number of pages one scan read.
func (c *Collectors) ObserveScan(pages int) {
	if c == nil {
		return
	}
	c.ScanPages.Observe(float64(pages))
}
