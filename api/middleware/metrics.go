package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/velora/goshop/api/web"
	"github.com/zenazn/goji/web/mutil"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Metrics records a counter and a duration histogram per route. The
// route template (not the raw URL) keeps the label cardinality bounded.
func Metrics(route string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			start := time.Now()

			lw := mutil.WrapWriter(w)
			err := handler(ctx, lw, r)

			requestsTotal.WithLabelValues(
				r.Method,
				route,
				strconv.Itoa(lw.Status()),
			).Inc()

			requestDuration.WithLabelValues(
				r.Method,
				route,
			).Observe(time.Since(start).Seconds())

			return err
		}
		return h
	}
	return m
}
