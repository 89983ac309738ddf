package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTP metric names
const (
	MetricHTTPRequests       = "http_server_request_total"
	MetricHTTPDuration       = "http_server_request_duration_seconds"
	MetricHTTPActiveRequests = "http_server_active_requests"
)

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	m := &httpMetrics{}
	var err error

	if m.requests, err = meter.Int64Counter(MetricHTTPRequests,
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricHTTPRequests, err)
	}
	if m.duration, err = meter.Float64Histogram(MetricHTTPDuration,
		metric.WithDescription("HTTP request latency distribution in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10)); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricHTTPDuration, err)
	}
	if m.active, err = meter.Int64UpDownCounter(MetricHTTPActiveRequests,
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricHTTPActiveRequests, err)
	}
	return m, nil
}

// HTTPMetrics returns middleware recording request count, latency and
// in-flight requests. Routes are labelled by pattern, not by raw path.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		m.active.Add(ctx, 1)
		c.Next()
		m.active.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		base := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		}

		m.requests.Add(ctx, 1, metric.WithAttributes(
			append(base, attribute.String("http.status_class", StatusClass(c.Writer.Status())))...))
		m.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(base...))
	}, nil
}

// StatusClass groups a status code as 2xx, 3xx, 4xx or 5xx
func StatusClass(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "other"
	}
}
