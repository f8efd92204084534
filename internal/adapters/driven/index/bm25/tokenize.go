package bm25

import (
	"strings"
	"unicode"
)

// stopwords are dropped from documents and queries.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "in": true,
	"is": true, "it": true, "its": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "this": true, "to": true, "was": true,
	"were": true, "what": true, "which": true, "will": true, "with": true,
}

// Tokenize lower-cases text and splits it into terms on any rune that is not
// a letter or digit. Stopwords are removed.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := fields[:0]
	for _, f := range fields {
		if !stopwords[f] {
			terms = append(terms, f)
		}
	}
	return terms
}

// termFrequencies counts terms and returns the counts with the term total.
func termFrequencies(text string) (map[string]int, int) {
	terms := Tokenize(text)
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return tf, len(terms)
}
