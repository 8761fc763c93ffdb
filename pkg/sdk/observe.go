package sommelier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels recorded per call. Answers are labelled by what the service did with
// the question; failures by the class of error.
const (
	resultAnswered      = "answered"
	resultCached        = "cached"
	resultClarification = "clarification"
	resultFollowUp      = "follow_up"
	resultOK            = "ok"
	resultUnhealthy     = "unhealthy"
	resultRateLimited   = "rate_limited"
	resultUnauthorized  = "unauthorized"
	resultClientError   = "client_error"
	resultServerError   = "server_error"
	resultTimeout       = "timeout"
	resultTransport     = "transport"
)

type sdkMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sommelier",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Client calls by endpoint and result.",
	}, []string{"endpoint", "result"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sommelier",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Client call latency by endpoint.",
		Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"endpoint"})

	var err error
	if requests, err = reuse(reg, requests); err != nil {
		return nil, err
	}
	if latency, err = reuse(reg, latency); err != nil {
		return nil, err
	}
	return &sdkMetrics{requests: requests, latency: latency}, nil
}

// reuse registers c, or returns the collector already registered under the same
// descriptor so several clients can share one registry.
func reuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("sommelier: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("sommelier: metric registered with type %T", are.ExistingCollector)
	}
	return existing, nil
}

// observer logs and counts client calls. A nil observer records nothing.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// askResult labels a successful answer.
func askResult(a Answer) string {
	switch {
	case a.Clarification:
		return resultClarification
	case a.Cached:
		return resultCached
	case a.FollowUp:
		return resultFollowUp
	default:
		return resultAnswered
	}
}

func healthResult(hs HealthStatus) string {
	if hs.Healthy() {
		return resultOK
	}
	return resultUnhealthy
}

// errorResult classifies a failed call.
func errorResult(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return resultRateLimited
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return resultUnauthorized
		case apiErr.StatusCode >= 500:
			return resultServerError
		default:
			return resultClientError
		}
	case errors.Is(err, context.DeadlineExceeded):
		return resultTimeout
	default:
		return resultTransport
	}
}

// record observes one call. result is ignored when err is set.
func (o *observer) record(endpoint string, start time.Time, result string, err error, attrs ...any) {
	if o == nil {
		return
	}
	if err != nil {
		result = errorResult(err)
	}
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.requests.WithLabelValues(endpoint, result).Inc()
		o.metrics.latency.WithLabelValues(endpoint).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	attrs = append(attrs, "endpoint", endpoint, "result", result, "duration", dur)
	if err != nil {
		o.logger.Warn("sommelier request failed", append(attrs, "error", err)...)
		return
	}
	o.logger.Debug("sommelier request", attrs...)
}
