package similarity

import (
	"math"
	"regexp"
	"strings"
)

// Cosine scores a title corpus with TF-IDF cosine similarity over word
// 1-grams and 2-grams (minimum document frequency 1, smoothed idf,
// l2-normalized rows). When no vocabulary can be built at all it degrades
// to a set-overlap cosine over whitespace-split tokens.
type Cosine struct{}

var _ Backend = Cosine{}

var cosineTokenRe = regexp.MustCompile(`\w+`)

// Ratio scores one pair through the corpus path so both forms agree.
func (c Cosine) Ratio(a, b string) float64 {
	return c.Matrix([]string{a, b})[0][1]
}

func (Cosine) Matrix(titles []string) [][]float64 {
	vectors, ok := tfidfVectors(titles)
	if !ok {
		return overlapMatrix(titles)
	}

	n := len(titles)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = selfSimilarity(vectors[i])
		for j := 0; j < i; j++ {
			s := dot(vectors[i], vectors[j])
			m[i][j] = s
			m[j][i] = s
		}
	}
	return m
}

// ngrams returns the 1-gram and 2-gram features of a title.
func ngrams(title string) []string {
	words := cosineTokenRe.FindAllString(strings.ToLower(title), -1)
	feats := make([]string, 0, 2*len(words))
	feats = append(feats, words...)
	for i := 0; i+1 < len(words); i++ {
		feats = append(feats, words[i]+" "+words[i+1])
	}
	return feats
}

// tfidfVectors builds l2-normalized tf-idf vectors, represented sparsely as
// feature→weight maps. Returns ok=false when the corpus yields no features
// at all, which triggers the overlap fallback.
func tfidfVectors(titles []string) ([]map[string]float64, bool) {
	n := len(titles)
	counts := make([]map[string]float64, n)
	df := make(map[string]int)

	anyFeature := false
	for i, t := range titles {
		counts[i] = make(map[string]float64)
		for _, f := range ngrams(t) {
			if counts[i][f] == 0 {
				df[f]++
			}
			counts[i][f]++
			anyFeature = true
		}
	}
	if !anyFeature {
		return nil, false
	}

	// Smoothed idf: ln((1+n)/(1+df)) + 1.
	for i := range counts {
		var norm float64
		for f, tf := range counts[i] {
			w := tf * (math.Log(float64(1+n)/float64(1+df[f])) + 1)
			counts[i][f] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for f := range counts[i] {
				counts[i][f] /= norm
			}
		}
	}
	return counts, true
}

// selfSimilarity is 1.0 for any title with at least one feature, 0.0 for a
// title that vectorized to nothing.
func selfSimilarity(v map[string]float64) float64 {
	if len(v) == 0 {
		return 0.0
	}
	return 1.0
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var s float64
	for f, w := range a {
		s += w * b[f]
	}
	return s
}

// overlapMatrix is the degraded path: cosine over raw whitespace-split
// token sets, |A∩B| / sqrt(|A|·|B|). Two empty sets score 1.0.
func overlapMatrix(titles []string) [][]float64 {
	sets := make([]map[string]bool, len(titles))
	for i, t := range titles {
		sets[i] = make(map[string]bool)
		for _, w := range strings.Fields(t) {
			sets[i][w] = true
		}
	}

	m := make([][]float64, len(titles))
	for i := range m {
		m[i] = make([]float64, len(titles))
		for j := range m[i] {
			m[i][j] = overlap(sets[i], sets[j])
		}
	}
	return m
}

func overlap(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	denom := math.Sqrt(float64(len(a)) * float64(len(b)))
	if denom == 0 {
		denom = 1.0
	}
	return float64(inter) / denom
}
