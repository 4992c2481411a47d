package textutil

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and trim", "  Hello, WORLD!!!  ", "hello world"},
		{"already clean", "hello world", "hello world"},
		{"collapse whitespace", "a \t b\n\nc", "a b c"},
		{"punctuation stripped", "qui-est; rerum!", "quiest rerum"},
		{"underscores kept", "foo_bar baz", "foo_bar baz"},
		{"digits kept", "post 42", "post 42"},
		{"empty string", "", ""},
		{"only punctuation", "?!...", ""},
		{"trailing punctuation", "sunt aut !", "sunt aut"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"  Hello, WORLD!!!  ", "a  b", "qui est"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		drop bool
		want []string
	}{
		{"order preserved", "Sunt Aut Facere", false, []string{"sunt", "aut", "facere"}},
		{"duplicates kept", "lorem lorem ipsum", false, []string{"lorem", "lorem", "ipsum"}},
		{"apostrophes joined", "don't stop", false, []string{"don't", "stop"}},
		{"stopwords dropped", "qui est rerum et voluptatem", true, []string{"est", "rerum", "voluptatem"}},
		{"stopwords kept without flag", "qui est rerum", false, []string{"qui", "est", "rerum"}},
		{"case-insensitive stopwords", "QUI Rerum ET", true, []string{"rerum"}},
		{"empty input", "", true, []string{}},
		{"punctuation split", "foo,bar;baz", false, []string{"foo", "bar", "baz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in, tt.drop)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q, %v) = %v, want %v", tt.in, tt.drop, got, tt.want)
			}
		})
	}
}

func TestStopwordSet(t *testing.T) {
	for _, w := range []string{"qui", "et", "in", "non", "ut", "QUAM"} {
		if !IsStopword(w) {
			t.Errorf("expected %q to be a stopword", w)
		}
	}
	for _, w := range []string{"rerum", "voluptatem", "facere"} {
		if IsStopword(w) {
			t.Errorf("did not expect %q to be a stopword", w)
		}
	}
}
