// Package service orchestrates the three query pipelines: parameter
// validation, cache consult, upstream fetch, computation and cache fill.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"postwatch/internal/anomaly"
	"postwatch/internal/cache"
	"postwatch/internal/metrics"
	"postwatch/internal/models"
	"postwatch/internal/upstream"
)

// Fetcher is the upstream capability the pipelines consume.
type Fetcher interface {
	FetchSlice(ctx context.Context, filter upstream.Filter, offset, limit, scanCap int) ([]models.Record, models.SourceMeta, error)
	FetchAll(ctx context.Context, filter upstream.Filter, scanCap int) ([]models.Record, error)
}

// ValidationError rejects a query before any fetch or cache interaction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Service answers the slice, anomaly and summary queries.
type Service struct {
	fetcher   Fetcher
	cache     *cache.Cache
	engine    *anomaly.Engine
	collector *metrics.Collector
	ttl       time.Duration
	scanMax   int
	logger    *slog.Logger
}

// Config holds the service settings.
type Config struct {
	// TTL applies to every cached query result.
	TTL time.Duration

	// ScanMax caps how many upstream records a slice query may walk.
	ScanMax int
}

// New creates a service. collector may be nil; logger may be nil.
func New(fetcher Fetcher, c *cache.Cache, collector *metrics.Collector, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:   fetcher,
		cache:     c,
		engine:    anomaly.NewEngine(logger),
		collector: collector,
		ttl:       cfg.TTL,
		scanMax:   cfg.ScanMax,
		logger:    logger,
	}
}

// TTL returns the configured cache TTL (the transport layer surfaces it in
// Cache-Control headers).
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// lookup consults the cache when enabled. The two-value form keeps the
// invariant that a disabled cache records neither hits nor misses.
func (s *Service) lookup(enabled bool, key string) (any, bool) {
	if !enabled {
		return nil, false
	}
	v, ok := s.cache.Get(key)
	if s.collector != nil {
		if ok {
			s.collector.RecordCacheHit()
		} else {
			s.collector.RecordCacheMiss()
		}
	}
	return v, ok
}

// store fills the cache when enabled. Called only on success paths; a
// failed query never leaves anything behind.
func (s *Service) store(enabled bool, key string, value any) {
	if enabled {
		s.cache.Set(key, value, s.ttl)
	}
}

// queryLogger tags pipeline logs with a short per-query id.
func (s *Service) queryLogger(op string) *slog.Logger {
	return s.logger.With("op", op, "query", uuid.NewString()[:8])
}

func (s *Service) recordTiming(op string, start time.Time) {
	if s.collector != nil {
		s.collector.RecordTiming(op, time.Since(start))
	}
}
