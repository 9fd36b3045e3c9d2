// Package metrics instruments the HTTP surface and serves the Prometheus
// scrape endpoint.
package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pharmacy"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by status code, method and route.",
		},
		[]string{"code", "method", "path"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds, by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being handled.",
		},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped",
			slog.String("error", err.Error()))
	}
}

// statusRecorder captures the status code written by the handler chain.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{w, http.StatusOK}
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

// Middleware records count, latency and in-flight gauge per request. Paths
// with an {id} segment are collapsed to the route pattern so product and
// order ids don't explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		requestsInFlight.Inc()

		rec := newStatusRecorder(w)

		route := r.URL.Path
		if p := r.PathValue("..."); p != "" {
			route = r.URL.Path[:len(r.URL.Path)-len(p)] + "{...}"
		} else if id := r.PathValue("id"); id != "" {
			route = r.URL.Path[:len(r.URL.Path)-len(id)] + "{id}"
		}

		defer func() {
			duration := time.Since(start)

			requestsTotal.WithLabelValues(strconv.Itoa(rec.statusCode), r.Method, route).Inc()
			requestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
			requestsInFlight.Dec()
		}()

		next.ServeHTTP(rec, r)

	})
}

// Handler serves the scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
