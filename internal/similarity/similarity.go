// Package similarity provides the pluggable pairwise title-similarity
// backends used by the anomaly engine. Backends are a closed set selected
// by method name; all scores are in [0,1].
package similarity

import (
	"fmt"

	"postwatch/internal/textutil"
)

// Method identifies a similarity backend.
type Method string

const (
	// MethodExact matches on normalized-title equality only.
	MethodExact Method = "exact"

	// MethodFuzzy scores with a longest-matching-blocks edit ratio.
	MethodFuzzy Method = "fuzzy"

	// MethodCosine scores with TF-IDF cosine similarity over the corpus.
	MethodCosine Method = "cosine"

	// MethodEmbedding is accepted for compatibility but always redirected
	// to MethodCosine: pretrained neural embeddings are too costly for
	// this deployment.
	MethodEmbedding Method = "embedding"
)

// Valid reports whether m names a known method.
func (m Method) Valid() bool {
	switch m {
	case MethodExact, MethodFuzzy, MethodCosine, MethodEmbedding:
		return true
	}
	return false
}

// Backend computes similarity scores for titles. Ratio is the pairwise
// form; Matrix scores a whole corpus at once and is what the cosine
// backend is built around (pairwise backends derive it trivially).
type Backend interface {
	// Ratio returns the similarity of a and b in [0,1].
	Ratio(a, b string) float64

	// Matrix returns the square pairwise similarity matrix for titles.
	// The diagonal is 1.0 for any title the backend can represent.
	Matrix(titles []string) [][]float64
}

// ForMethod returns the backend for m along with the method that will
// actually run. The two differ only for MethodEmbedding, which degrades
// to cosine.
func ForMethod(m Method) (Backend, Method, error) {
	switch m {
	case MethodExact:
		return Exact{}, MethodExact, nil
	case MethodFuzzy:
		return EditRatio{}, MethodFuzzy, nil
	case MethodCosine, MethodEmbedding:
		return Cosine{}, MethodCosine, nil
	default:
		return nil, "", fmt.Errorf("unknown similarity method: %s", m)
	}
}

// Exact scores 1.0 iff the normalized titles are equal.
type Exact struct{}

var _ Backend = Exact{}

func (Exact) Ratio(a, b string) float64 {
	if textutil.Normalize(a) == textutil.Normalize(b) {
		return 1.0
	}
	return 0.0
}

func (e Exact) Matrix(titles []string) [][]float64 {
	return pairwiseMatrix(e, titles)
}

// pairwiseMatrix builds a corpus matrix from a pairwise backend.
func pairwiseMatrix(b Backend, titles []string) [][]float64 {
	m := make([][]float64, len(titles))
	for i := range titles {
		m[i] = make([]float64, len(titles))
		m[i][i] = 1.0
		for j := 0; j < i; j++ {
			s := b.Ratio(titles[i], titles[j])
			m[i][j] = s
			m[j][i] = s
		}
	}
	return m
}
