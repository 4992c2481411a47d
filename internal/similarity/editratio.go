package similarity

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// EditRatio scores titles with the SequenceMatcher ratio: twice the total
// size of the longest matching blocks divided by the combined length.
// Symmetric, and 1.0 for identical strings.
type EditRatio struct{}

var _ Backend = EditRatio{}

func (EditRatio) Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	// Canonical argument order keeps the score symmetric even where the
	// underlying block matching is order-sensitive.
	if a > b {
		a, b = b, a
	}
	// SequenceMatcher aligns element sequences, so compare rune-wise.
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

func (e EditRatio) Matrix(titles []string) [][]float64 {
	return pairwiseMatrix(e, titles)
}
