package upstream

import (
	"context"
	"log/slog"

	"postwatch/internal/models"
)

// Fetcher reconstructs arbitrary record windows from the fixed-chunk
// upstream pagination.
type Fetcher struct {
	client     *Client
	chunkLimit int
	logger     *slog.Logger
}

// NewFetcher creates a fetcher walking chunks of chunkLimit records.
func NewFetcher(client *Client, chunkLimit int, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, chunkLimit: chunkLimit, logger: logger}
}

// walk iterates upstream chunks from start, invoking visit for each
// non-empty chunk with its absolute start index. It stops when visit
// returns false, when upstream returns an empty chunk, or once scanCap
// records have been fetched. scanCap of 0 means no cap.
func (f *Fetcher) walk(ctx context.Context, filter Filter, start, scanCap int, visit func(chunk *Chunk, chunkStart int) bool) error {
	fetched := 0
	for {
		limit := f.chunkLimit
		if scanCap > 0 {
			if remaining := scanCap - fetched; remaining < limit {
				limit = remaining
			}
		}
		if limit <= 0 {
			return nil
		}

		chunk, err := f.client.FetchChunk(ctx, filter, start, limit)
		if err != nil {
			return err
		}
		if len(chunk.Records) == 0 {
			return nil
		}
		if !visit(chunk, start) {
			return nil
		}

		fetched += len(chunk.Records)
		start += len(chunk.Records)
		if scanCap > 0 && fetched >= scanCap {
			return nil
		}
	}
}

// FetchSlice returns exactly the records whose absolute index lies in
// [offset, offset+limit), in upstream order, along with the metadata of
// the last chunk seen. The walk starts at the chunk-aligned index below
// offset and stops as soon as the slice is full, upstream runs dry, or
// scanCap is reached. An offset beyond the corpus yields an empty slice,
// not an error.
func (f *Fetcher) FetchSlice(ctx context.Context, filter Filter, offset, limit, scanCap int) ([]models.Record, models.SourceMeta, error) {
	collected := make([]models.Record, 0, limit)
	var meta models.SourceMeta

	targetEnd := offset + limit
	pageStart := (offset / f.chunkLimit) * f.chunkLimit

	err := f.walk(ctx, filter, pageStart, scanCap, func(chunk *Chunk, chunkStart int) bool {
		meta = chunk.Meta
		for i, rec := range chunk.Records {
			idx := chunkStart + i
			if idx >= offset && idx < targetEnd {
				collected = append(collected, rec)
			}
			if len(collected) >= limit {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, models.SourceMeta{}, err
	}

	f.logger.Debug("slice fetched", "offset", offset, "limit", limit, "collected", len(collected))
	return collected, meta, nil
}

// FetchAll scans the corpus from index 0, bounded by scanCap. Used by the
// anomaly and summary queries.
func (f *Fetcher) FetchAll(ctx context.Context, filter Filter, scanCap int) ([]models.Record, error) {
	var out []models.Record
	err := f.walk(ctx, filter, 0, scanCap, func(chunk *Chunk, _ int) bool {
		out = append(out, chunk.Records...)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
