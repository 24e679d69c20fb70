package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// HTTPMetricsMiddleware counts requests and records their latency by method, route
// template and status code. The raw path is never a label: it carries user ids.
// When the instruments cannot be registered the middleware only calls c.Next.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	inst, err := newInstruments(meterProvider.Meter(namespace), instrumentNames{
		count:        namespace + "_http_requests_total",
		countHelp:    "HTTP requests by method, route and status code",
		countUnit:    "{request}",
		duration:     namespace + "_http_request_duration_seconds",
		durationHelp: "HTTP request latency in seconds",
	})
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)

		ctx := c.Request.Context()
		inst.count.Add(ctx, 1, attrs)
		inst.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
