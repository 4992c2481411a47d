// Package upstream talks to the paginated record source. The source only
// exposes fixed-size windows via _start/_limit query parameters; Client
// fetches one such chunk with bounded retry/backoff, and Fetcher walks
// chunks to reconstruct arbitrary slices and capped full-corpus scans.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"postwatch/internal/metrics"
	"postwatch/internal/models"
)

const defaultUserAgent = "postwatch/1.0"

// Config holds the client settings.
type Config struct {
	// BaseURL is the record collection endpoint, e.g.
	// https://jsonplaceholder.typicode.com/posts
	BaseURL string

	// Timeout bounds each individual chunk request.
	Timeout time.Duration

	// Attempts is the per-chunk attempt budget including the first try.
	// Zero means the default of 3.
	Attempts int

	// RetryBase is the initial backoff delay, doubled per attempt.
	// Zero means the default of 200ms.
	RetryBase time.Duration
}

// Client fetches record chunks from the upstream source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   int
	retryBase  time.Duration
	logger     *slog.Logger
	metrics    *metrics.Collector
}

// NewClient creates a chunk client. logger and collector may be nil.
func NewClient(cfg Config, logger *slog.Logger, collector *metrics.Collector) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = 200 * time.Millisecond
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		attempts:   attempts,
		retryBase:  retryBase,
		logger:     logger,
		metrics:    collector,
	}
}

// Filter narrows an upstream query with equality parameters.
type Filter struct {
	// OwnerID filters records to one owner when set.
	OwnerID *int
}

func (f Filter) apply(q url.Values) {
	if f.OwnerID != nil {
		q.Set("userId", strconv.Itoa(*f.OwnerID))
	}
}

// Chunk is one fixed-size batch of records plus its response metadata.
type Chunk struct {
	Records []models.Record
	Meta    models.SourceMeta
}

// FetchChunk retrieves records [start, start+limit) from the source,
// retrying each failure with exponential backoff until the attempt budget
// is spent. On exhaustion the last failure is surfaced as ErrTimeout or
// ErrUpstream; no partial chunk is ever returned.
func (c *Client) FetchChunk(ctx context.Context, filter Filter, start, limit int) (*Chunk, error) {
	var chunk *Chunk

	op := func() error {
		var err error
		chunk, err = c.fetchOnce(ctx, filter, start, limit)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBase
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	notify := func(err error, next time.Duration) {
		c.logger.Warn("retrying upstream chunk",
			"start", start, "limit", limit, "wait", next, "error", err)
		if c.metrics != nil {
			c.metrics.RecordRetry()
		}
	}

	err := backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.attempts-1)), ctx),
		notify)
	if err != nil {
		// An abandoned query is the caller's doing, not an upstream fault.
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, classify(err)
	}
	if c.metrics != nil {
		c.metrics.RecordChunk(len(chunk.Records))
	}
	return chunk, nil
}

func (c *Client) fetchOnce(ctx context.Context, filter Filter, start, limit int) (*Chunk, error) {
	q := url.Values{}
	q.Set("_start", strconv.Itoa(start))
	q.Set("_limit", strconv.Itoa(limit))
	filter.apply(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var records []models.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &Chunk{
		Records: records,
		Meta:    models.SourceMeta{TotalCount: resp.Header.Get("X-Total-Count")},
	}, nil
}
