package observability

import (
	"sync"
	"time"
)

// Metrics accumulates per-route counters in memory. There is no scrape
// endpoint; totals are read back through RequestCount/ErrorCount.
type Metrics struct {
	mu       sync.Mutex
	requests map[routeKey]routeStats
	errors   map[errorKey]int64
}

type routeKey struct {
	method string
	path   string
	status int
}

type errorKey struct {
	method string
	path   string
	code   string
}

type routeStats struct {
	count   int64
	elapsed time.Duration
}

// NewMetrics returns an empty counter set.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[routeKey]routeStats),
		errors:   make(map[errorKey]int64),
	}
}

// RecordRequest tallies one completed request and its wall time.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := routeKey{method: method, path: path, status: status}
	m.mu.Lock()
	stats := m.requests[key]
	stats.count++
	stats.elapsed += duration
	m.requests[key] = stats
	m.mu.Unlock()
}

// RecordError tallies one failed request under its taxonomy code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.errors[errorKey{method: method, path: path, code: code}]++
	m.mu.Unlock()
}

// RequestCount reports how many requests completed on a route with a status.
func (m *Metrics) RequestCount(method, path string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[routeKey{method: method, path: path, status: status}].count
}

// ErrorCount reports how many requests failed on a route with a taxonomy code.
func (m *Metrics) ErrorCount(method, path, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[errorKey{method: method, path: path, code: code}]
}
