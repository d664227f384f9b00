// Package metrics records request latencies of the dashboard server.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// Requests tracks latency and error counts per route pattern.
type Requests struct {
	mu        sync.Mutex
	routes    map[string]*route
	startTime time.Time
	maxSize   int
}

type route struct {
	latency *Histogram
	count   uint64
	errors  uint64
}

// NewRequests creates an empty registry. maxSamples bounds each route's histogram.
func NewRequests(maxSamples int) *Requests {
	return &Requests{
		routes:    make(map[string]*route),
		startTime: time.Now(),
		maxSize:   maxSamples,
	}
}

// Record adds one finished request. Status codes of 500 and above count as errors.
func (m *Requests) Record(pattern string, status int, d time.Duration) {
	if pattern == "" {
		pattern = "unmatched"
	}

	m.mu.Lock()
	r, ok := m.routes[pattern]
	if !ok {
		r = &route{latency: NewHistogram(m.maxSize)}
		m.routes[pattern] = r
	}
	r.count++
	if status >= 500 {
		r.errors++
	}
	m.mu.Unlock()

	r.latency.Record(d)
}

// RouteStats is the snapshot of one route.
type RouteStats struct {
	Route   string       `json:"route"`
	Count   uint64       `json:"count"`
	Errors  uint64       `json:"errors"`
	Latency LatencyStats `json:"latency"`
}

// Snapshot contains the statistics of every route, sorted by route.
type Snapshot struct {
	Uptime string       `json:"uptime"`
	Routes []RouteStats `json:"routes"`
}

// Snapshot returns the current statistics.
func (m *Requests) Snapshot() Snapshot {
	m.mu.Lock()
	stats := make([]RouteStats, 0, len(m.routes))
	histograms := make([]*Histogram, 0, len(m.routes))
	for pattern, r := range m.routes {
		stats = append(stats, RouteStats{Route: pattern, Count: r.count, Errors: r.errors})
		histograms = append(histograms, r.latency)
	}
	uptime := time.Since(m.startTime).Round(time.Second).String()
	m.mu.Unlock()

	for i, h := range histograms {
		stats[i].Latency = h.Stats()
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Route < stats[j].Route })

	return Snapshot{Uptime: uptime, Routes: stats}
}

// Reset clears all routes.
func (m *Requests) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]*route)
	m.startTime = time.Now()
}
