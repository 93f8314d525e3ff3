package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vantage_serp_queries_total",
			Help: "Total number of SERP queries issued",
		},
		[]string{"provider", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vantage_serp_query_duration_seconds",
			Help:    "Duration of SERP queries in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	ResponseBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vantage_serp_bytes_total",
			Help: "Total payload bytes received across all SERP queries",
		},
		[]string{"provider"},
	)

	ExtractedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vantage_extract_records_total",
			Help: "Total number of result records extracted, by payload variant",
		},
		[]string{"variant"},
	)

	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vantage_reports_total",
			Help: "Total number of per-domain research runs by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordQuery updates the query metrics for one SERP request. A status of 0
// indicates a transport-level failure.
func RecordQuery(provider string, status int, duration time.Duration, bytes int) {
	statusStr := strconv.Itoa(status)
	if status == 0 {
		statusStr = "error"
	}

	QueriesTotal.WithLabelValues(provider, statusStr).Inc()
	QueryDuration.WithLabelValues(provider).Observe(duration.Seconds())
	ResponseBytesTotal.WithLabelValues(provider).Add(float64(bytes))
}

// RecordReport counts a finished research run. Outcome is "ok" or "error".
func RecordReport(outcome string) {
	ReportsTotal.WithLabelValues(outcome).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
