// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"math"
	"strings"
	"unicode"
)

// fingerprint is a token-frequency vector over a normalized title.
type fingerprint struct {
	tokens map[string]float64
	norm   float64
}

func newFingerprint(s string) fingerprint {
	tokens := make(map[string]float64)
	for _, tok := range tokenize(s) {
		tokens[tok]++
	}
	var sum float64
	for _, c := range tokens {
		sum += c * c
	}
	return fingerprint{tokens: tokens, norm: math.Sqrt(sum)}
}

// TitleSimilarity returns the cosine similarity of the two titles' token
// fingerprints, in [0, 1]. Zero when either title has no tokens.
func TitleSimilarity(a, b string) float64 {
	fa, fb := newFingerprint(a), newFingerprint(b)
	if fa.norm == 0 || fb.norm == 0 {
		return 0
	}
	var dot float64
	for tok, count := range fa.tokens {
		if other, ok := fb.tokens[tok]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (fa.norm * fb.norm)
}

func tokenize(s string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}
