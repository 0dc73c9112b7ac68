package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLength is the shortest token kept; anything of this length or
// shorter is dropped.
const minTokenLength = 2

// DefaultStopWords are articles, prepositions and filler nouns that carry no
// product signal.
var DefaultStopWords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of",
	"with", "by", "i", "need", "want", "looking", "that", "thing", "stuff", "item",
}

// DefaultSynonyms expand a token into related tokens that are inserted
// right after it.
var DefaultSynonyms = map[string][]string{
	"foldable": {"fold", "collapsible", "portable"},
	"bottle":   {"container", "flask"},
	"light":    {"lamp", "flashlight", "torch"},
	"bed":      {"cot", "sleeping"},
	"chair":    {"seat"},
	"water":    {"drink", "liquid"},
	"filter":   {"purifier", "clean"},
}

// Extractor turns free text into an ordered token sequence.
type Extractor struct {
	stopWords map[string]struct{}
	synonyms  map[string][]string
}

var defaultExtractor = NewExtractor(DefaultStopWords, DefaultSynonyms)

// NewExtractor builds an extractor with the given stop words and synonym
// table. Both are copied.
func NewExtractor(stopWords []string, synonyms map[string][]string) *Extractor {
	e := &Extractor{
		stopWords: make(map[string]struct{}, len(stopWords)),
		synonyms:  make(map[string][]string, len(synonyms)),
	}
	for _, w := range stopWords {
		e.stopWords[strings.ToLower(w)] = struct{}{}
	}
	for k, v := range synonyms {
		expansions := make([]string, 0, len(v))
		for _, s := range v {
			s = strings.ToLower(s)
			if e.keep(s) {
				expansions = append(expansions, s)
			}
		}
		e.synonyms[strings.ToLower(k)] = expansions
	}
	return e
}

// DefaultExtractor returns the extractor configured with DefaultStopWords
// and DefaultSynonyms.
func DefaultExtractor() *Extractor {
	return defaultExtractor
}

// Extract normalizes text, drops stop words and short tokens, and expands
// synonyms inline. Token order follows the input; duplicates are kept
// because they weight the match. Blank input yields an empty slice.
func (e *Extractor) Extract(text string) []string {
	words := strings.Fields(normalize(text))
	tokens := make([]string, 0, len(words))

	for _, w := range words {
		if !e.keep(w) {
			continue
		}
		tokens = append(tokens, w)
		tokens = append(tokens, e.synonyms[w]...)
	}
	return tokens
}

// IsStopWord reports whether w is in the extractor's stop-word set.
func (e *Extractor) IsStopWord(w string) bool {
	_, ok := e.stopWords[w]
	return ok
}

func (e *Extractor) keep(w string) bool {
	if utf8.RuneCountInString(w) <= minTokenLength {
		return false
	}
	return !e.IsStopWord(w)
}

// Extract runs the default extractor.
func Extract(text string) []string {
	return defaultExtractor.Extract(text)
}

// normalize lowercases text and removes every rune that is not a letter,
// digit or whitespace.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
