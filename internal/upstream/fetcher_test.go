package upstream_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postwatch/internal/models"
	"postwatch/internal/upstream"
)

// fixturePost is the upstream wire shape used by the test source.
type fixturePost struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// newFixtureSource serves a deterministic corpus of total posts honoring
// the _start/_limit windowing and the optional userId filter.
func newFixtureSource(t *testing.T, total int, calls *atomic.Int64) *httptest.Server {
	t.Helper()

	corpus := make([]fixturePost, total)
	for i := range corpus {
		corpus[i] = fixturePost{
			UserID: i/10 + 1,
			ID:     i + 1,
			Title:  fmt.Sprintf("title number %d", i+1),
			Body:   fmt.Sprintf("body %d", i+1),
		}
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}

		matched := corpus
		if uid := r.URL.Query().Get("userId"); uid != "" {
			n, err := strconv.Atoi(uid)
			require.NoError(t, err)
			matched = nil
			for _, p := range corpus {
				if p.UserID == n {
					matched = append(matched, p)
				}
			}
		}

		start, _ := strconv.Atoi(r.URL.Query().Get("_start"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("_limit"))
		if start > len(matched) {
			start = len(matched)
		}
		end := start + limit
		if end > len(matched) {
			end = len(matched)
		}

		w.Header().Set("X-Total-Count", strconv.Itoa(len(matched)))
		w.Header().Set("Content-Type", "application/json")
		window := matched[start:end]
		if window == nil {
			window = []fixturePost{}
		}
		require.NoError(t, json.NewEncoder(w).Encode(window))
	}))
}

func newFetcher(baseURL string, chunkLimit int) *upstream.Fetcher {
	client := upstream.NewClient(upstream.Config{
		BaseURL:   baseURL,
		Timeout:   2 * time.Second,
		RetryBase: time.Millisecond,
	}, nil, nil)
	return upstream.NewFetcher(client, chunkLimit, nil)
}

func recordIDs(records []models.Record) []int {
	ids := make([]int, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

func TestFetchSliceMatchesFetchAll(t *testing.T) {
	const total = 95
	src := newFixtureSource(t, total, nil)
	defer src.Close()

	f := newFetcher(src.URL, 20)
	ctx := context.Background()

	all, err := f.FetchAll(ctx, upstream.Filter{}, 0)
	require.NoError(t, err)
	require.Len(t, all, total)

	tests := []struct {
		offset, limit int
	}{
		{0, 10},
		{5, 7},
		{19, 2},   // crosses a chunk boundary
		{40, 20},  // chunk aligned
		{90, 10},  // runs past the end
		{94, 1},   // last record
		{200, 10}, // beyond the corpus
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("offset=%d,limit=%d", tt.offset, tt.limit), func(t *testing.T) {
			records, meta, err := f.FetchSlice(ctx, upstream.Filter{}, tt.offset, tt.limit, 0)
			require.NoError(t, err)

			wantLen := tt.limit
			if rest := total - tt.offset; rest < wantLen {
				wantLen = rest
			}
			if wantLen < 0 {
				wantLen = 0
			}
			require.Len(t, records, wantLen)

			if wantLen > 0 {
				assert.Equal(t, recordIDs(all[tt.offset:tt.offset+wantLen]), recordIDs(records))
				assert.Equal(t, "95", meta.TotalCount)
			}
		})
	}
}

func TestFetchSliceOwnerFilter(t *testing.T) {
	src := newFixtureSource(t, 95, nil)
	defer src.Close()

	f := newFetcher(src.URL, 20)
	owner := 3
	records, meta, err := f.FetchSlice(context.Background(), upstream.Filter{OwnerID: &owner}, 0, 100, 0)
	require.NoError(t, err)
	require.Len(t, records, 10)
	for _, r := range records {
		assert.Equal(t, owner, r.OwnerID)
	}
	assert.Equal(t, "10", meta.TotalCount)
}

func TestFetchAllRespectsScanCap(t *testing.T) {
	src := newFixtureSource(t, 95, nil)
	defer src.Close()

	f := newFetcher(src.URL, 20)
	records, err := f.FetchAll(context.Background(), upstream.Filter{}, 30)
	require.NoError(t, err)
	assert.Len(t, records, 30)
}

func TestFetchSliceRespectsScanCap(t *testing.T) {
	src := newFixtureSource(t, 95, nil)
	defer src.Close()

	f := newFetcher(src.URL, 20)
	// The walk starts at the aligned index 0 and may scan at most 10
	// records, so nothing at offset 15 can be collected.
	records, _, err := f.FetchSlice(context.Background(), upstream.Filter{}, 15, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	var calls atomic.Int64
	inner := newFixtureSource(t, 10, nil)
	defer inner.Close()

	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		resp, err := http.Get(inner.URL + "?" + r.URL.RawQuery)
		require.NoError(t, err)
		defer resp.Body.Close()
		w.Header().Set("X-Total-Count", resp.Header.Get("X-Total-Count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.Copy(w, resp.Body)
	}))
	defer flaky.Close()

	f := newFetcher(flaky.URL, 20)
	records, err := f.FetchAll(context.Background(), upstream.Filter{}, 0)
	require.NoError(t, err)
	assert.Len(t, records, 10)
	assert.GreaterOrEqual(t, calls.Load(), int64(3))
}

func TestUpstreamErrorAfterExhaustedRetries(t *testing.T) {
	var calls atomic.Int64
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer src.Close()

	f := newFetcher(src.URL, 20)
	_, err := f.FetchAll(context.Background(), upstream.Filter{}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrUpstream)
	assert.NotErrorIs(t, err, upstream.ErrTimeout)
	assert.Equal(t, int64(3), calls.Load(), "three attempts per chunk")
}

func TestTimeoutReportedDistinctly(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer src.Close()

	client := upstream.NewClient(upstream.Config{
		BaseURL:   src.URL,
		Timeout:   20 * time.Millisecond,
		RetryBase: time.Millisecond,
	}, nil, nil)
	f := upstream.NewFetcher(client, 20, nil)

	_, err := f.FetchAll(context.Background(), upstream.Filter{}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrTimeout)
}

func TestCancellationAbortsWalk(t *testing.T) {
	src := newFixtureSource(t, 95, nil)
	defer src.Close()

	f := newFetcher(src.URL, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FetchAll(ctx, upstream.Filter{}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordPassthroughAttributes(t *testing.T) {
	src := newFixtureSource(t, 5, nil)
	defer src.Close()

	f := newFetcher(src.URL, 20)
	records, err := f.FetchAll(context.Background(), upstream.Filter{}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	// The body attribute is not modeled explicitly but must survive.
	var body string
	require.NoError(t, json.Unmarshal(records[0].Extra["body"], &body))
	assert.Equal(t, "body 1", body)
}
