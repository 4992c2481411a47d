// Package wordstats ranks owners by distinct title vocabulary and tokens
// by global frequency.
package wordstats

import (
	"sort"

	"postwatch/internal/models"
	"postwatch/internal/textutil"
)

// topWordCount is how many tokens the global frequency ranking reports.
const topWordCount = 20

// Aggregate tokenizes every record title and produces the top-N owners by
// distinct-token count plus the globally most frequent tokens. Ties in
// either ranking resolve to first-encounter order. Total function; an
// empty record set yields empty rankings.
func Aggregate(records []models.Record, topN int, dropStopwords bool) *models.SummaryResult {
	ownerWords := make(map[int]map[string]bool)
	var ownerOrder []int

	globalCounts := make(map[string]int)
	var wordOrder []string

	for _, r := range records {
		words := textutil.Tokenize(r.Title, dropStopwords)
		for _, w := range words {
			if globalCounts[w] == 0 {
				wordOrder = append(wordOrder, w)
			}
			globalCounts[w]++
		}
		set, ok := ownerWords[r.OwnerID]
		if !ok {
			set = make(map[string]bool)
			ownerWords[r.OwnerID] = set
			ownerOrder = append(ownerOrder, r.OwnerID)
		}
		for _, w := range words {
			set[w] = true
		}
	}

	owners := make([]models.OwnerWordCount, 0, len(ownerOrder))
	for _, id := range ownerOrder {
		owners = append(owners, models.OwnerWordCount{
			OwnerID:         id,
			UniqueWordCount: len(ownerWords[id]),
		})
	}
	sort.SliceStable(owners, func(i, j int) bool {
		return owners[i].UniqueWordCount > owners[j].UniqueWordCount
	})
	if len(owners) > topN {
		owners = owners[:topN]
	}

	words := make([]models.WordCount, 0, len(wordOrder))
	for _, w := range wordOrder {
		words = append(words, models.WordCount{Word: w, Count: globalCounts[w]})
	}
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Count > words[j].Count
	})
	if len(words) > topWordCount {
		words = words[:topWordCount]
	}

	return &models.SummaryResult{
		TopOwners: owners,
		TopWords:  words,
	}
}
