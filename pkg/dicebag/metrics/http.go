package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPMetrics tracks request statistics for the dashboard API
type HTTPMetrics struct {
	requestCount      int64 // Total requests
	errorCount        int64 // Error responses (>= 400)
	totalResponseTime int64 // Sum of all response times (nanoseconds)
	maxResponseTime   int64 // Maximum response time (nanoseconds)
	pendingRequests   int64 // Currently processing requests
	startTime         time.Time

	routesMu sync.Mutex
	routes   map[string]int64
}

// NewHTTPMetrics creates a new HTTP metrics collector
func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		startTime: time.Now(),
		routes:    make(map[string]int64),
	}
}

// HTTPStats represents current HTTP statistics
type HTTPStats struct {
	RequestCount    int64            `json:"request_count"`
	ErrorCount      int64            `json:"error_count"`
	ErrorRate       float64          `json:"error_rate"`        // Percentage
	RequestRate     float64          `json:"request_rate"`      // Per second
	AvgResponseTime int64            `json:"avg_response_time"` // Nanoseconds
	MaxResponseTime int64            `json:"max_response_time"` // Nanoseconds
	PendingRequests int64            `json:"pending_requests"`
	Routes          map[string]int64 `json:"routes"`
	Timestamp       time.Time        `json:"timestamp"`
}

// ResponseWriter wrapper to capture status codes
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(data)
}

// Middleware wraps next and records one sample per request under route.
// Websocket routes must not be wrapped: the wrapper hides http.Hijacker.
func (h *HTTPMetrics) Middleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		atomic.AddInt64(&h.pendingRequests, 1)
		defer atomic.AddInt64(&h.pendingRequests, -1)

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next(wrapped, r)

		durationNs := time.Since(startTime).Nanoseconds()
		atomic.AddInt64(&h.requestCount, 1)
		atomic.AddInt64(&h.totalResponseTime, durationNs)

		for {
			current := atomic.LoadInt64(&h.maxResponseTime)
			if durationNs <= current {
				break
			}
			if atomic.CompareAndSwapInt64(&h.maxResponseTime, current, durationNs) {
				break
			}
		}

		if wrapped.statusCode >= 400 {
			atomic.AddInt64(&h.errorCount, 1)
		}

		h.routesMu.Lock()
		h.routes[route]++
		h.routesMu.Unlock()
	}
}

// GetStats returns current HTTP statistics
func (h *HTTPMetrics) GetStats() HTTPStats {
	requestCount := atomic.LoadInt64(&h.requestCount)
	errorCount := atomic.LoadInt64(&h.errorCount)
	totalResponseTime := atomic.LoadInt64(&h.totalResponseTime)

	stats := HTTPStats{
		RequestCount:    requestCount,
		ErrorCount:      errorCount,
		MaxResponseTime: atomic.LoadInt64(&h.maxResponseTime),
		PendingRequests: atomic.LoadInt64(&h.pendingRequests),
		Routes:          make(map[string]int64),
		Timestamp:       time.Now(),
	}

	if requestCount > 0 {
		stats.ErrorRate = float64(errorCount) / float64(requestCount) * 100
		stats.AvgResponseTime = totalResponseTime / requestCount
		if uptime := time.Since(h.startTime); uptime > 0 {
			stats.RequestRate = float64(requestCount) / uptime.Seconds()
		}
	}

	h.routesMu.Lock()
	for route, n := range h.routes {
		stats.Routes[route] = n
	}
	h.routesMu.Unlock()

	return stats
}
