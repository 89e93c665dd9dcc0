package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexnow_submissions_total",
			Help: "Total number of IndexNow submissions sent",
		},
		[]string{"engine", "method", "status"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "indexnow_submission_duration_seconds",
			Help:    "Duration of IndexNow submissions in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"engine"},
	)

	SubmittedURLsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexnow_submitted_urls_total",
			Help: "Total number of URLs carried by accepted submissions",
		},
		[]string{"engine"},
	)

	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexnow_source_fetches_total",
			Help: "Total number of sitemap, robots.txt and page fetches",
		},
		[]string{"kind", "status"},
	)

	ProxyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indexnow_proxy_failures_total",
			Help: "Total number of proxy failures during outbound requests",
		},
		[]string{"proxy_url"},
	)
)

// RecordSubmission updates the submission metrics. statusCode is 0 when the
// request failed before a response arrived.
func RecordSubmission(engine, method string, statusCode int, accepted bool, urls int, d time.Duration) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	SubmissionsTotal.WithLabelValues(engine, method, status).Inc()
	SubmissionDuration.WithLabelValues(engine).Observe(d.Seconds())
	if accepted {
		SubmittedURLsTotal.WithLabelValues(engine).Add(float64(urls))
	}
}

// RecordSourceFetch counts a fetch made while collecting URLs.
func RecordSourceFetch(kind string, statusCode int) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	SourceFetchesTotal.WithLabelValues(kind, status).Inc()
}

// Server exposes /metrics over HTTP.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", srv.Addr, "err", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
