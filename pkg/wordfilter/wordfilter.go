// Package wordfilter matches chat messages against a blocked word list.
// Words and phrases are compared on whole tokens after lower-casing and
// stripping diacritics, so "PÍCA" matches "pica" but "picante" does not.
// Entries with punctuation, such as invite links, match as plain substrings.
package wordfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

type entry struct {
	word      string
	tokens    []string
	substring string
}

// Filter is immutable and safe for concurrent use.
type Filter struct {
	entries []entry
}

// New builds a filter. Blank entries are ignored.
func New(words []string) *Filter {
	f := &Filter{}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if nonTokenChars.MatchString(strings.ReplaceAll(w, " ", "")) {
			f.entries = append(f.entries, entry{word: w, substring: fold(strings.ToLower(w))})
			continue
		}
		if tokens := Tokenize(w); len(tokens) > 0 {
			f.entries = append(f.entries, entry{word: w, tokens: tokens})
		}
	}
	return f
}

// Len returns the number of usable entries.
func (f *Filter) Len() int {
	return len(f.entries)
}

// Match returns the first configured entry found in text.
func (f *Filter) Match(text string) (string, bool) {
	if len(f.entries) == 0 || text == "" {
		return "", false
	}

	tokens := Tokenize(text)
	lowered := fold(strings.ToLower(text))
	for _, e := range f.entries {
		if e.substring != "" {
			if strings.Contains(lowered, e.substring) {
				return e.word, true
			}
			continue
		}
		if containsRun(tokens, e.tokens) {
			return e.word, true
		}
	}
	return "", false
}

// Tokenize lower-cases text, removes punctuation and diacritics, and splits on whitespace.
func Tokenize(text string) []string {
	bare := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	return strings.Fields(fold(bare))
}

func fold(s string) string {
	// transformers carry state, so a fresh chain is built per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// containsRun reports whether needle appears as a contiguous run in haystack.
func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, tok := range needle {
			if haystack[i+j] != tok {
				continue outer
			}
		}
		return true
	}
	return false
}
