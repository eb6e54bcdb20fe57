// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identify scans extracted page text for bibliographic identifiers.
// It recognizes DOIs, ISBN-10/13 (checksum validated), and modern or legacy
// arXiv IDs, and returns them ordered by first occurrence, deduplicated by
// canonical form. No network access happens here.
package identify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/shelfmark/pkg/types"
)

// doiPattern matches bare DOIs: "10.1000/xyz123".
var doiPattern = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[-._;()/:a-z0-9]+`)

// doiPrefixPattern matches DOIs behind an explicit label: "doi: 10.1000/xyz123".
var doiPrefixPattern = regexp.MustCompile(`(?i)doi:\s*(10\.\d{4,9}/[-._;()/:a-z0-9]+)`)

// frontiersPattern matches Frontiers article slugs like "feduc-2021-667869",
// which encode the DOI 10.3389/feduc.2021.667869.
var frontiersPattern = regexp.MustCompile(`(?i)\b(f[a-z]+)-(\d{4})-(\d{6})\b`)

// arxivModernPattern matches post-2007 arXiv IDs: "2301.07041", optionally
// with an "arXiv:" label or a version suffix.
var arxivModernPattern = regexp.MustCompile(`(?i)\b(?:arxiv:\s*)?(\d{4}\.\d{4,5})(?:v\d+)?\b`)

// arxivLegacyPattern matches pre-2007 IDs: "math.GT/0309136", "hep-th/9901001".
var arxivLegacyPattern = regexp.MustCompile(`(?i)\b(?:arxiv:\s*)?([a-z][a-z-]{2,}(?:\.[a-z]{2})?/\d{7})\b`)

// isbnPattern matches a labeled ISBN with optional hyphen/space separators.
var isbnPattern = regexp.MustCompile(`(?i)\bISBN(?:[-\x{2010}\x{2013}]?1[03])?:?\s*((?:97[89][- ]?)?(?:\d[- ]?){9}[\dXx])`)

// positioned pairs an identifier with its first byte offset in the scanned text.
type positioned struct {
	pos int
	id  types.Identifier
}

// Extract scans the given pages in order and returns every valid identifier,
// ordered by first occurrence and deduplicated by canonical form. ISBN
// candidates with a failing checksum are discarded, not surfaced.
func Extract(pages []string) []types.Identifier {
	var found []positioned
	offset := 0

	for _, page := range pages {
		text := cleanPageText(page)
		found = append(found, scanPage(text, offset)...)
		offset += len(text) + 1
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	seen := make(map[string]bool)
	var ids []types.Identifier
	for _, f := range found {
		key := string(f.id.Kind) + ":" + f.id.Value
		if seen[key] {
			continue
		}
		seen[key] = true
		ids = append(ids, f.id)
	}
	return ids
}

// First returns the first identifier of the given kind, if any.
func First(ids []types.Identifier, kind types.IdentifierKind) (types.Identifier, bool) {
	for _, id := range ids {
		if id.Kind == kind {
			return id, true
		}
	}
	return types.Identifier{}, false
}

func scanPage(text string, offset int) []positioned {
	var found []positioned

	for _, loc := range doiPattern.FindAllStringIndex(text, -1) {
		doi := trimDOI(text[loc[0]:loc[1]])
		if doi != "" {
			found = append(found, positioned{offset + loc[0], types.Identifier{Kind: types.KindDOI, Value: doi}})
		}
	}
	for _, loc := range doiPrefixPattern.FindAllStringSubmatchIndex(text, -1) {
		doi := trimDOI(text[loc[2]:loc[3]])
		if doi != "" {
			found = append(found, positioned{offset + loc[0], types.Identifier{Kind: types.KindDOI, Value: doi}})
		}
	}
	for _, loc := range frontiersPattern.FindAllStringSubmatchIndex(text, -1) {
		journal := strings.ToLower(text[loc[2]:loc[3]])
		year := text[loc[4]:loc[5]]
		article := text[loc[6]:loc[7]]
		doi := fmt.Sprintf("10.3389/%s.%s.%s", journal, year, article)
		found = append(found, positioned{offset + loc[0], types.Identifier{Kind: types.KindDOI, Value: doi}})
	}

	// DOI suffixes contain digit runs that look like arXiv IDs, so DOI
	// spans are blanked out before the arXiv scan.
	masked := maskMatches(text, doiPattern)

	for _, loc := range arxivModernPattern.FindAllStringSubmatchIndex(masked, -1) {
		id := masked[loc[2]:loc[3]]
		if !plausibleArxivMonth(id) {
			continue
		}
		found = append(found, positioned{offset + loc[0], types.Identifier{Kind: types.KindArxiv, Value: id}})
	}
	for _, loc := range arxivLegacyPattern.FindAllStringSubmatchIndex(masked, -1) {
		id := strings.ToLower(masked[loc[2]:loc[3]])
		if !plausibleLegacyArxiv(id) {
			continue
		}
		found = append(found, positioned{offset + loc[0], types.Identifier{Kind: types.KindArxiv, Value: id}})
	}

	for _, loc := range isbnPattern.FindAllStringSubmatchIndex(text, -1) {
		isbn, ok := normalizeISBN(text[loc[2]:loc[3]])
		if !ok {
			continue
		}
		found = append(found, positioned{offset + loc[0], types.Identifier{Kind: types.KindISBN, Value: isbn}})
	}

	return found
}

// trimDOI strips trailing punctuation a sentence context attaches to a DOI.
func trimDOI(doi string) string {
	doi = strings.TrimRight(doi, ".,;:")
	// A trailing ")" without a matching "(" in the suffix is sentence
	// punctuation, not part of the DOI.
	if strings.HasSuffix(doi, ")") && !strings.Contains(doi, "(") {
		doi = strings.TrimSuffix(doi, ")")
	}
	if !strings.Contains(doi, "/") {
		return ""
	}
	return doi
}

// plausibleArxivMonth rejects modern-format candidates whose month digits
// fall outside 01-12 (mostly DOI fragments and reference numbers).
func plausibleArxivMonth(id string) bool {
	if len(id) < 4 {
		return false
	}
	mm := (int(id[2]-'0') * 10) + int(id[3]-'0')
	return mm >= 1 && mm <= 12
}

func plausibleLegacyArxiv(id string) bool {
	slash := strings.IndexByte(id, '/')
	if slash < 0 || len(id)-slash-1 != 7 {
		return false
	}
	digits := id[slash+1:]
	mm := (int(digits[2]-'0') * 10) + int(digits[3]-'0')
	return mm >= 1 && mm <= 12
}

// maskMatches replaces every match of re with spaces, preserving offsets.
func maskMatches(text string, re *regexp.Regexp) string {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	b := []byte(text)
	for _, loc := range locs {
		for i := loc[0]; i < loc[1]; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// cleanPageText removes NULs and non-breaking spaces PDF extraction leaves
// behind, and joins line breaks so identifiers split across lines still match.
func cleanPageText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return text
}
