// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated timings for a single query type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// Snapshot represents the full process statistics at a point in time.
type Snapshot struct {
	UptimeSeconds   float64            `json:"uptime_seconds"`
	CacheHits       int64              `json:"cache_hits"`
	CacheMisses     int64              `json:"cache_misses"`
	UpstreamChunks  int64              `json:"upstream_chunks"`
	UpstreamRecords int64              `json:"upstream_records"`
	UpstreamRetries int64              `json:"upstream_retries"`
	Slice           *OperationSnapshot `json:"posts,omitempty"`
	Anomalies       *OperationSnapshot `json:"anomalies,omitempty"`
	Summary         *OperationSnapshot `json:"summary,omitempty"`
}

// Operation names for the collector.
const (
	OpSlice     = "posts"
	OpAnomalies = "anomalies"
	OpSummary   = "summary"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics

	cacheHits       int64
	cacheMisses     int64
	upstreamChunks  int64
	upstreamRecords int64
	upstreamRetries int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for a query operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordCacheHit counts one cache hit.
func (c *Collector) RecordCacheHit() {
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

// RecordCacheMiss counts one cache miss.
func (c *Collector) RecordCacheMiss() {
	c.mu.Lock()
	c.cacheMisses++
	c.mu.Unlock()
}

// RecordChunk counts one successfully fetched upstream chunk of n records.
func (c *Collector) RecordChunk(n int) {
	c.mu.Lock()
	c.upstreamChunks++
	c.upstreamRecords += int64(n)
	c.mu.Unlock()
}

// RecordRetry counts one upstream retry attempt.
func (c *Collector) RecordRetry() {
	c.mu.Lock()
	c.upstreamRetries++
	c.mu.Unlock()
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	return &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds:   time.Since(c.startTime).Seconds(),
		CacheHits:       c.cacheHits,
		CacheMisses:     c.cacheMisses,
		UpstreamChunks:  c.upstreamChunks,
		UpstreamRecords: c.upstreamRecords,
		UpstreamRetries: c.upstreamRetries,
		Slice:           snapshotOp(c.ops[OpSlice]),
		Anomalies:       snapshotOp(c.ops[OpAnomalies]),
		Summary:         snapshotOp(c.ops[OpSummary]),
	}
}
