// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identify

import (
	"regexp"
	"sort"
	"strings"
)

// skipFragments mark lines that are headers, footers, or journal boilerplate
// rather than a title.
var skipFragments = []string{
	"page", "vol.", "no.", "journal", "copyright", "doi:",
	"issn", "isbn", "published", "received", "accepted",
	"edited by", "reviewed by", "keywords", "abstract",
	"article", "original research", "brief report",
	"frontiers in", "www.",
}

var (
	urlRe       = regexp.MustCompile(`https?://\S+|www\.\S+`)
	spaceRe     = regexp.MustCompile(`\s+`)
	articleIDRe = regexp.MustCompile(`^[a-z]+-\d{4}-\d{6}`)
)

type titleCandidate struct {
	line     int
	text     string
	capRatio float64
}

// GuessTitle applies linewise heuristics to the first page's text and
// returns the most title-like line, or "" when nothing qualifies. The guess
// seeds the title-search fallback; it is never trusted as a final title.
func GuessTitle(firstPage string) string {
	text := cleanPageText(firstPage)
	text = urlRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	if len(lines) > 30 {
		lines = lines[:30]
	}

	var candidates []titleCandidate
	for i, line := range lines {
		line = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
		if len(line) <= 20 || len(line) >= 200 || strings.HasSuffix(line, ":") {
			continue
		}
		lower := strings.ToLower(line)
		if articleIDRe.MatchString(lower) || containsAny(lower, skipFragments) {
			continue
		}
		if symbolHeavy(line) {
			continue
		}

		words := strings.Fields(line)
		if len(words) < 3 {
			continue
		}
		capped := 0
		for _, w := range words {
			if w[0] >= 'A' && w[0] <= 'Z' {
				capped++
			}
		}
		ratio := float64(capped) / float64(len(words))
		if ratio > 0.5 {
			candidates = append(candidates, titleCandidate{line: i, text: line, capRatio: ratio})
		}
	}

	if len(candidates) == 0 {
		return ""
	}
	// Prefer earlier lines, break ties on capitalization.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].line != candidates[j].line {
			return candidates[i].line < candidates[j].line
		}
		return candidates[i].capRatio > candidates[j].capRatio
	})
	return candidates[0].text
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// symbolHeavy reports whether more than 30% of a line is digits or brackets,
// which marks reference lists and tables rather than titles.
func symbolHeavy(line string) bool {
	if line == "" {
		return false
	}
	n := 0
	for _, r := range line {
		if (r >= '0' && r <= '9') || strings.ContainsRune("()[]{}", r) {
			n++
		}
	}
	return float64(n)/float64(len(line)) > 0.3
}
