package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores process counters exposed on /metrics.
type Metrics struct {
	RequestsTotal  uint64
	RequestsFailed uint64
	AnalysesTotal  uint64
	AnalysesFailed uint64
	StartTime      time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments the total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementFailed increments the failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementAnalyses increments the generated-analysis counter
func IncrementAnalyses() {
	atomic.AddUint64(&globalMetrics.AnalysesTotal, 1)
}

// IncrementAnalysesFailed increments the failed-analysis counter
func IncrementAnalysesFailed() {
	atomic.AddUint64(&globalMetrics.AnalysesFailed, 1)
}

// MetricsMiddleware counts every request and every error response.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 400 {
			IncrementFailed()
		}
	})
}

// MetricsSnapshot is the JSON shape served on /metrics.
type MetricsSnapshot struct {
	RequestsTotal  uint64  `json:"requests_total"`
	RequestsFailed uint64  `json:"requests_failed"`
	AnalysesTotal  uint64  `json:"analyses_total"`
	AnalysesFailed uint64  `json:"analyses_failed"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Goroutines     int     `json:"goroutines"`
}

// MetricsHandler serves the current counters as JSON.
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	snap := MetricsSnapshot{
		RequestsTotal:  atomic.LoadUint64(&globalMetrics.RequestsTotal),
		RequestsFailed: atomic.LoadUint64(&globalMetrics.RequestsFailed),
		AnalysesTotal:  atomic.LoadUint64(&globalMetrics.AnalysesTotal),
		AnalysesFailed: atomic.LoadUint64(&globalMetrics.AnalysesFailed),
		UptimeSeconds:  time.Since(globalMetrics.StartTime).Seconds(),
		Goroutines:     runtime.NumGoroutine(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}
