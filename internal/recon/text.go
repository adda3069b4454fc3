package recon

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// normalizeText lowercases and collapses whitespace so phrase and name
// comparisons are insensitive to casing and spacing differences between
// statement formats.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// tokenize splits a normalized description into tokens of at least minLen
// runes, stripping surrounding punctuation.
func tokenize(s string, minLen int) []string {
	var out []string
	for _, f := range strings.Fields(normalizeText(s)) {
		f = strings.Trim(f, ".,:;()[]\"'")
		if len([]rune(f)) >= minLen {
			out = append(out, f)
		}
	}
	return out
}

// sharedTokenCount counts tokens present in both descriptions.
func sharedTokenCount(a, b string, minLen int) int {
	set := make(map[string]bool)
	for _, tok := range tokenize(a, minLen) {
		set[tok] = true
	}
	n := 0
	seen := make(map[string]bool)
	for _, tok := range tokenize(b, minLen) {
		if set[tok] && !seen[tok] {
			seen[tok] = true
			n++
		}
	}
	return n
}

// partialMatch reports whether two strings are close enough to be considered
// the same narration: containment either way, or a Levenshtein distance
// within driftPercent of the longer string.
func partialMatch(a, b string, driftPercent float64) bool {
	a = normalizeText(a)
	b = normalizeText(b)
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	allowed := int(float64(maxLen) * driftPercent / 100)
	return distance <= allowed
}
