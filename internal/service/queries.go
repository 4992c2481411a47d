package service

import (
	"context"
	"fmt"
	"time"

	"postwatch/internal/anomaly"
	"postwatch/internal/metrics"
	"postwatch/internal/models"
	"postwatch/internal/similarity"
	"postwatch/internal/upstream"
	"postwatch/internal/wordstats"
)

// SliceQuery asks for the records whose absolute index lies in
// [Offset, Offset+Limit), optionally filtered to one owner.
type SliceQuery struct {
	Offset  int
	Limit   int
	OwnerID *int
	Cache   bool
}

// Validate rejects out-of-range parameters before any I/O happens.
func (q SliceQuery) Validate() error {
	if q.Offset < 0 {
		return &ValidationError{Field: "offset", Reason: "must be >= 0"}
	}
	if q.Limit < 1 || q.Limit > 1000 {
		return &ValidationError{Field: "limit", Reason: "must be in [1,1000]"}
	}
	if q.OwnerID != nil && (*q.OwnerID < 1 || *q.OwnerID > 10) {
		return &ValidationError{Field: "userId", Reason: "must be in [1,10]"}
	}
	return nil
}

func (q SliceQuery) cacheKey() string {
	owner := "none"
	if q.OwnerID != nil {
		owner = fmt.Sprintf("%d", *q.OwnerID)
	}
	return fmt.Sprintf("posts:%s:%d:%d", owner, q.Offset, q.Limit)
}

// Slice answers the passthrough listing query.
func (s *Service) Slice(ctx context.Context, q SliceQuery) (*models.SliceResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	defer s.recordTiming(metrics.OpSlice, time.Now())

	log := s.queryLogger(metrics.OpSlice)
	key := q.cacheKey()
	if v, ok := s.lookup(q.Cache, key); ok {
		log.Debug("cache hit", "key", key)
		return v.(*models.SliceResult), nil
	}

	records, meta, err := s.fetcher.FetchSlice(ctx, upstream.Filter{OwnerID: q.OwnerID}, q.Offset, q.Limit, s.scanMax)
	if err != nil {
		log.Error("slice fetch failed", "error", err)
		return nil, err
	}

	result := &models.SliceResult{
		Data: records,
		Meta: models.SliceMeta{
			Offset:  q.Offset,
			Limit:   q.Limit,
			OwnerID: q.OwnerID,
		},
	}
	if meta.TotalCount != "" {
		total := meta.TotalCount
		result.Meta.SourceTotal = &total
	}

	s.store(q.Cache, key, result)
	log.Debug("slice answered", "records", len(records))
	return result, nil
}

// AnomalyQuery asks for the short-title / duplicate / suspicious-owner
// report over a capped corpus scan.
type AnomalyQuery struct {
	MinTitleLength      int
	Method              similarity.Method
	SimilarThreshold    float64
	SuspiciousThreshold int
	ScanCap             int
	Cache               bool
}

// Validate rejects out-of-range parameters before any I/O happens.
func (q AnomalyQuery) Validate() error {
	if q.MinTitleLength < 1 {
		return &ValidationError{Field: "min_title_len", Reason: "must be >= 1"}
	}
	if !q.Method.Valid() {
		return &ValidationError{Field: "method", Reason: "must be one of exact, fuzzy, cosine, embedding"}
	}
	if q.SimilarThreshold < 0 || q.SimilarThreshold > 1 {
		return &ValidationError{Field: "similar_threshold", Reason: "must be in [0,1]"}
	}
	if q.SuspiciousThreshold < 1 {
		return &ValidationError{Field: "suspicious_threshold", Reason: "must be >= 1"}
	}
	if q.ScanCap < 1 {
		return &ValidationError{Field: "max_scan", Reason: "must be >= 1"}
	}
	return nil
}

func (q AnomalyQuery) cacheKey() string {
	return fmt.Sprintf("anoms:%d:%s:%g:%d:%d",
		q.MinTitleLength, q.Method, q.SimilarThreshold, q.SuspiciousThreshold, q.ScanCap)
}

// Anomalies answers the duplicate/anomaly report query.
func (s *Service) Anomalies(ctx context.Context, q AnomalyQuery) (*models.AnomalyResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	defer s.recordTiming(metrics.OpAnomalies, time.Now())

	log := s.queryLogger(metrics.OpAnomalies)
	key := q.cacheKey()
	if v, ok := s.lookup(q.Cache, key); ok {
		log.Debug("cache hit", "key", key)
		return v.(*models.AnomalyResult), nil
	}

	records, err := s.fetcher.FetchAll(ctx, upstream.Filter{}, q.ScanCap)
	if err != nil {
		log.Error("anomaly scan fetch failed", "error", err)
		return nil, err
	}

	result, err := s.engine.Run(records, anomaly.Params{
		MinTitleLength:      q.MinTitleLength,
		Method:              q.Method,
		SimilarThreshold:    q.SimilarThreshold,
		SuspiciousThreshold: q.SuspiciousThreshold,
	})
	if err != nil {
		return nil, err
	}
	result.Meta.MaxScan = q.ScanCap

	s.store(q.Cache, key, result)
	log.Debug("anomaly scan answered", "records", len(records), "backend", result.Meta.Backend)
	return result, nil
}

// SummaryQuery asks for the vocabulary ranking over a capped corpus scan.
type SummaryQuery struct {
	TopN          int
	DropStopwords bool
	ScanCap       int
	Cache         bool
}

// Validate rejects out-of-range parameters before any I/O happens.
func (q SummaryQuery) Validate() error {
	if q.TopN < 1 || q.TopN > 50 {
		return &ValidationError{Field: "top_n_users", Reason: "must be in [1,50]"}
	}
	if q.ScanCap < 1 {
		return &ValidationError{Field: "max_scan", Reason: "must be >= 1"}
	}
	return nil
}

func (q SummaryQuery) cacheKey() string {
	return fmt.Sprintf("summary:%d:%t:%d", q.TopN, q.DropStopwords, q.ScanCap)
}

// Summary answers the word-frequency summary query.
func (s *Service) Summary(ctx context.Context, q SummaryQuery) (*models.SummaryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	defer s.recordTiming(metrics.OpSummary, time.Now())

	log := s.queryLogger(metrics.OpSummary)
	key := q.cacheKey()
	if v, ok := s.lookup(q.Cache, key); ok {
		log.Debug("cache hit", "key", key)
		return v.(*models.SummaryResult), nil
	}

	records, err := s.fetcher.FetchAll(ctx, upstream.Filter{}, q.ScanCap)
	if err != nil {
		log.Error("summary scan fetch failed", "error", err)
		return nil, err
	}

	result := wordstats.Aggregate(records, q.TopN, q.DropStopwords)
	result.Meta.MaxScan = q.ScanCap

	s.store(q.Cache, key, result)
	log.Debug("summary answered", "records", len(records))
	return result, nil
}
