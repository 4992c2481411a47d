package anomaly_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postwatch/internal/anomaly"
	"postwatch/internal/models"
	"postwatch/internal/similarity"
)

func rec(id, owner int, title string) models.Record {
	return models.Record{ID: id, OwnerID: owner, Title: title}
}

func run(t *testing.T, records []models.Record, p anomaly.Params) *models.AnomalyResult {
	t.Helper()
	result, err := anomaly.NewEngine(nil).Run(records, p)
	require.NoError(t, err)
	return result
}

func TestRunEmptyRecords(t *testing.T) {
	result := run(t, nil, anomaly.Params{Method: similarity.MethodFuzzy, SimilarThreshold: 0.4, SuspiciousThreshold: 5})

	assert.NotNil(t, result.ShortTitles)
	assert.Empty(t, result.ShortTitles)
	assert.NotNil(t, result.DuplicateTitles)
	assert.Empty(t, result.DuplicateTitles)
	assert.NotNil(t, result.SuspiciousUsers)
	assert.Empty(t, result.SuspiciousUsers)
	assert.Equal(t, "fuzzy", result.Meta.Backend)
}

func TestRunUnknownMethod(t *testing.T) {
	_, err := anomaly.NewEngine(nil).Run(nil, anomaly.Params{Method: "soundex"})
	assert.Error(t, err)
}

func TestEmbeddingReportsCosineBackend(t *testing.T) {
	result := run(t, nil, anomaly.Params{Method: similarity.MethodEmbedding})
	assert.Equal(t, "cosine", result.Meta.Backend)
}

func TestShortTitles(t *testing.T) {
	records := []models.Record{
		rec(1, 1, "tiny"),
		rec(2, 1, "a sufficiently long title"),
		rec(3, 2, "also short"),
	}
	result := run(t, records, anomaly.Params{
		MinTitleLength: 15,
		Method:         similarity.MethodExact,
	})

	require.Len(t, result.ShortTitles, 2)
	assert.Equal(t, 1, result.ShortTitles[0].ID)
	assert.Equal(t, 3, result.ShortTitles[1].ID)
}

func TestDuplicateTitlesNormalized(t *testing.T) {
	records := []models.Record{
		rec(1, 1, "Repeated Title!"),
		rec(2, 1, "something else entirely"),
		rec(3, 1, "repeated   title"),
		rec(4, 2, "unique over here"),
	}
	result := run(t, records, anomaly.Params{
		Method:              similarity.MethodExact,
		SuspiciousThreshold: 5,
	})

	require.Len(t, result.DuplicateTitles, 1)
	g := result.DuplicateTitles[0]
	assert.Equal(t, 1, g.OwnerID)
	assert.Equal(t, "Repeated Title!", g.Title, "representative is the first raw title")
	assert.Equal(t, 2, g.Count)
	assert.Equal(t, []int{1, 3}, g.PostIDs)
}

func TestDuplicateTitlesOrdering(t *testing.T) {
	records := []models.Record{
		rec(1, 2, "beta"), rec(2, 2, "beta"),
		rec(3, 1, "alpha"), rec(4, 1, "alpha"),
		rec(5, 1, "gamma"), rec(6, 1, "gamma"), rec(7, 1, "gamma"),
	}
	result := run(t, records, anomaly.Params{
		Method:              similarity.MethodExact,
		SuspiciousThreshold: 100,
	})

	require.Len(t, result.DuplicateTitles, 3)
	// Owner ascending, then count descending within the owner.
	assert.Equal(t, 1, result.DuplicateTitles[0].OwnerID)
	assert.Equal(t, "gamma", result.DuplicateTitles[0].Title)
	assert.Equal(t, 3, result.DuplicateTitles[0].Count)
	assert.Equal(t, "alpha", result.DuplicateTitles[1].Title)
	assert.Equal(t, 2, result.DuplicateTitles[2].OwnerID)
}

func TestExactGrouping(t *testing.T) {
	records := []models.Record{
		rec(1, 1, "same old story"),
		rec(2, 1, "Same Old Story"),
		rec(3, 1, "a different tale"),
	}
	result := run(t, records, anomaly.Params{
		Method:              similarity.MethodExact,
		SuspiciousThreshold: 1,
	})

	require.Len(t, result.SuspiciousUsers, 1)
	owner := result.SuspiciousUsers[0]
	assert.Equal(t, 1, owner.OwnerID)
	assert.Equal(t, 2, owner.TotalSimilarPosts)
	require.Len(t, owner.Groups, 1)
	assert.Equal(t, "same old story", owner.Groups[0].RepTitle)
	assert.Equal(t, []int{1, 2}, owner.Groups[0].PostIDs)
}

func TestFuzzyGreedyGrouping(t *testing.T) {
	records := []models.Record{
		rec(1, 1, "foo bar"),
		rec(2, 1, "foo bar baz"),
		rec(3, 1, "foo bar"),
		rec(4, 1, "completely unrelated words"),
	}
	result := run(t, records, anomaly.Params{
		Method:              similarity.MethodFuzzy,
		SimilarThreshold:    0.6,
		SuspiciousThreshold: 1,
	})

	require.Len(t, result.SuspiciousUsers, 1)
	owner := result.SuspiciousUsers[0]
	assert.Equal(t, 3, owner.TotalSimilarPosts)
	require.Len(t, owner.Groups, 1)
	assert.Equal(t, "foo bar", owner.Groups[0].RepTitle)
	assert.Equal(t, []int{1, 2, 3}, owner.Groups[0].PostIDs)
}

func TestFuzzySingletonGroupsDropped(t *testing.T) {
	records := []models.Record{
		rec(1, 1, "first lonely title here"),
		rec(2, 1, "nothing alike whatsoever"),
	}
	result := run(t, records, anomaly.Params{
		Method:              similarity.MethodFuzzy,
		SimilarThreshold:    0.9,
		SuspiciousThreshold: 0,
	})
	assert.Empty(t, result.SuspiciousUsers)
}

func TestCosineGrouping(t *testing.T) {
	records := []models.Record{
		rec(1, 1, "quantum computing breakthrough"),
		rec(2, 1, "Quantum Computing Breakthrough"),
		rec(3, 1, "gardening tips for spring"),
		rec(4, 1, "ancient roman architecture"),
	}
	result := run(t, records, anomaly.Params{
		Method:              similarity.MethodCosine,
		SimilarThreshold:    0.5,
		SuspiciousThreshold: 1,
	})

	require.Len(t, result.SuspiciousUsers, 1)
	owner := result.SuspiciousUsers[0]
	require.Len(t, owner.Groups, 1)
	assert.Equal(t, []int{1, 2}, owner.Groups[0].PostIDs)
	assert.Equal(t, "cosine", result.Meta.Backend)
}

func TestSuspiciousThresholdIsStrict(t *testing.T) {
	records := []models.Record{
		rec(1, 1, "copied title"),
		rec(2, 1, "copied title"),
	}
	p := anomaly.Params{
		Method:              similarity.MethodExact,
		SuspiciousThreshold: 2,
	}

	// Total of 2 does not exceed 2.
	result := run(t, records, p)
	assert.Empty(t, result.SuspiciousUsers)

	p.SuspiciousThreshold = 1
	result = run(t, records, p)
	assert.Len(t, result.SuspiciousUsers, 1)
}

func TestSuspiciousUsersOrderedByTotal(t *testing.T) {
	records := []models.Record{
		rec(1, 1, "dup a"), rec(2, 1, "dup a"),
		rec(3, 2, "dup b"), rec(4, 2, "dup b"), rec(5, 2, "dup b"),
	}
	result := run(t, records, anomaly.Params{
		Method:              similarity.MethodExact,
		SuspiciousThreshold: 1,
	})

	require.Len(t, result.SuspiciousUsers, 2)
	assert.Equal(t, 2, result.SuspiciousUsers[0].OwnerID)
	assert.Equal(t, 3, result.SuspiciousUsers[0].TotalSimilarPosts)
	assert.Equal(t, 1, result.SuspiciousUsers[1].OwnerID)
}

func TestSingleRecordOwnersSkipped(t *testing.T) {
	records := []models.Record{
		rec(1, 1, "only one record"),
		rec(2, 2, "dup"), rec(3, 2, "dup"),
	}
	result := run(t, records, anomaly.Params{
		Method:              similarity.MethodExact,
		SuspiciousThreshold: 1,
	})

	require.Len(t, result.SuspiciousUsers, 1)
	assert.Equal(t, 2, result.SuspiciousUsers[0].OwnerID)
}

func TestMetaEchoesParameters(t *testing.T) {
	result := run(t, nil, anomaly.Params{
		Method:           similarity.MethodFuzzy,
		SimilarThreshold: 0.73,
	})
	assert.Equal(t, "fuzzy", result.Meta.Backend)
	assert.Equal(t, 0.73, result.Meta.SimilarThreshold)
}
