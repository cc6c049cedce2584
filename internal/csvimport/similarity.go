package csvimport

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	scoreExact     = 1.0
	scoreContained = 0.8
)

// abbreviations are expanded as whole words after normalization.
var abbreviations = map[string]string{
	"aa":       "aire acondicionado",
	"ac":       "aire acondicionado",
	"heladera": "refrigerador",
	"refri":    "refrigerador",
	"tv":       "television",
}

// Normalize lowercases s, strips diacritics and collapses whitespace.
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(stripper, lowered)
	if err != nil {
		folded = lowered
	}
	return strings.Join(strings.Fields(folded), " ")
}

func expandAbbreviations(normalized string) string {
	words := strings.Fields(normalized)
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// canonicalName is the form product names are compared in.
func canonicalName(s string) string {
	return expandAbbreviations(Normalize(s))
}

// Similarity scores two product names in [0,1]: 1 when they are equal after
// normalization, 0.8 when one contains the other, otherwise the share of
// distinct common words over the word count of the longer name.
func Similarity(a, b string) float64 {
	return scoreCanonical(canonicalName(a), canonicalName(b))
}

func scoreCanonical(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return scoreExact
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return scoreContained
	}

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)

	inB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		inB[w] = struct{}{}
	}

	counted := make(map[string]struct{}, len(wordsA))
	common := 0
	for _, w := range wordsA {
		if _, ok := inB[w]; !ok {
			continue
		}
		if _, dup := counted[w]; dup {
			continue
		}
		counted[w] = struct{}{}
		common++
	}

	longer := max(len(wordsA), len(wordsB))
	return float64(common) / float64(longer)
}
