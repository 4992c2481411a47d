// Package textutil provides the text transforms shared by the anomaly and
// summary pipelines: title normalization and word tokenization.
package textutil

import (
	"regexp"
	"strings"
)

var (
	punctRe = regexp.MustCompile(`[^\w\s]`)
	spaceRe = regexp.MustCompile(`\s+`)
	wordRe  = regexp.MustCompile(`[a-zA-Z0-9']+`)
)

// Normalize lowercases s, strips everything that is not alphanumeric,
// underscore or whitespace, and collapses whitespace runs to a single space.
// Total function: any input yields a (possibly empty) result.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize extracts lowercased word tokens (letters, digits, apostrophes)
// in first-occurrence order, keeping duplicates. With dropStopwords set,
// tokens found in the stopword set are removed.
func Tokenize(text string, dropStopwords bool) []string {
	matches := wordRe.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		t := strings.ToLower(m)
		if dropStopwords && stopwords[t] {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// IsStopword reports whether the token is in the configured stopword set.
// Matching is case-insensitive.
func IsStopword(token string) bool {
	return stopwords[strings.ToLower(token)]
}
