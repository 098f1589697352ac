// Package keywords turns free text into the keyword sets used for relevance scoring.
package keywords

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinLength is the shortest token kept; shorter tokens carry no signal.
const MinLength = 3

// stopWords covers German and English function words plus domain-generic
// terms ("tool", "ki", "ai") that would otherwise match every candidate.
var stopWords = toSet(
	// German
	"der", "die", "das", "und", "oder", "für", "mit", "von", "zu", "in", "auf", "ist", "sind",
	"ein", "eine", "einer", "einem", "einen", "wie", "was", "wer", "wo", "wann", "warum",
	"welche", "welcher", "welches", "gibt", "es", "ich", "sie", "er", "wir", "ihr",
	"bitte", "können", "kann", "werden", "wurde", "haben", "hat", "sein", "bei", "am",
	"den", "dem", "des", "sich", "uns", "unser", "unsere", "nicht", "auch", "noch", "nach",
	"werkzeug", "werkzeuge",
	// English
	"the", "a", "an", "and", "or", "for", "with", "of", "to", "on", "is", "are",
	"how", "what", "who", "where", "when", "why", "can", "could", "would", "should",
	"our", "you", "your", "which", "there", "does", "that", "this", "from",
	// Domain-generic
	"tools", "tool", "ki", "ai", "beste", "besten", "best", "gut", "good",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Set is an unordered keyword collection.
type Set map[string]struct{}

// Extract lower-cases text, splits it into letter/digit runs and drops stop
// words and tokens shorter than MinLength. Input is NFC-normalized so composed
// and decomposed umlauts produce the same keyword.
func Extract(text string) Set {
	keywords := make(Set)
	if text == "" {
		return keywords
	}

	lowered := strings.ToLower(norm.NFC.String(text))
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < MinLength {
			continue
		}
		if IsStopWord(tok) {
			continue
		}
		keywords[tok] = struct{}{}
	}
	return keywords
}

// IsStopWord reports whether the lower-cased token is filtered out.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Intersect counts keywords present in both sets.
func (s Set) Intersect(other Set) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for w := range small {
		if large.Contains(w) {
			n++
		}
	}
	return n
}

// Sorted returns the keywords in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Join renders the set as space-separated text, suitable for re-extraction.
func (s Set) Join() string {
	return strings.Join(s.Sorted(), " ")
}
