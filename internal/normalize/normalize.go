// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns resolved metadata into safe, predictable
// filenames. Every transformation here is idempotent: normalizing an
// already-normalized string returns it unchanged.
package normalize

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultMaxTitleLen bounds the title portion of a filename.
	DefaultMaxTitleLen = 70

	// maxTitleLenCap is the hard ceiling regardless of configuration.
	maxTitleLenCap = 120

	// DefaultColonReplacement stands in for colons, which are unsafe on
	// several filesystems.
	DefaultColonReplacement = " -"

	// truncateFloor is the fraction of the budget below which a
	// word-boundary cut is abandoned for a hard cut.
	truncateFloor = 0.7
)

// Normalizer builds filename components under configured length and
// character constraints. The zero value uses the defaults.
type Normalizer struct {
	MaxTitleLen int
	ColonRepl   string
}

// FilenameComponents is the normalized triple a filename is built from.
type FilenameComponents struct {
	Surname string
	Year    int
	Title   string
}

// Filename renders the canonical "Surname - Year - Title.pdf" form.
func (c FilenameComponents) Filename() string {
	return fmt.Sprintf("%s - %d - %s.pdf", c.Surname, c.Year, c.Title)
}

// Components normalizes the raw metadata fields into filename-safe parts.
func (n Normalizer) Components(surname string, year int, title string) FilenameComponents {
	return FilenameComponents{
		Surname: n.CleanSurname(surname),
		Year:    year,
		Title:   n.CleanTitle(title),
	}
}

// CleanSurname transliterates, sanitizes, and title-cases a surname.
func (n Normalizer) CleanSurname(surname string) string {
	s := Transliterate(surname)
	s = n.sanitize(s)
	s = repairCase(s)
	return s
}

// CleanTitle transliterates, sanitizes, repairs shouting case, and
// truncates a title to the configured budget.
func (n Normalizer) CleanTitle(title string) string {
	s := Transliterate(title)
	s = n.sanitize(s)
	s = repairCase(s)
	return truncate(s, n.maxTitleLen())
}

func (n Normalizer) maxTitleLen() int {
	max := n.MaxTitleLen
	if max <= 0 {
		max = DefaultMaxTitleLen
	}
	if max > maxTitleLenCap {
		max = maxTitleLenCap
	}
	return max
}

func (n Normalizer) colonRepl() string {
	if n.ColonRepl == "" {
		return DefaultColonReplacement
	}
	return n.ColonRepl
}

// illegalChars are rejected by at least one mainstream filesystem.
const illegalChars = `<>"/\|?*`

func (n Normalizer) sanitize(s string) string {
	s = strings.ReplaceAll(s, ":", n.colonRepl())

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case strings.ContainsRune(illegalChars, r):
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	s = strings.Join(strings.Fields(b.String()), " ")
	return strings.Trim(s, ". ")
}

// truncate cuts s to at most max bytes, preferring a word boundary when
// one falls within the floor, and never leaves trailing punctuation.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndexByte(cut, ' '); idx >= int(float64(max)*truncateFloor) {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,;:-")
}

// smallWords stay lowercase when repairing an all-caps title.
var smallWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true,
	"but": true, "by": true, "for": true, "in": true, "is": true,
	"of": true, "on": true, "or": true, "the": true, "to": true,
	"via": true, "with": true,
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// repairCase rewrites ALL-CAPS text into title case, leaving mixed-case
// input untouched. Words after the first keep lowercase when they are
// articles or short prepositions.
func repairCase(s string) string {
	if !isShouting(s) {
		return s
	}

	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if i > 0 && smallWords[w] {
			continue
		}
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

// isShouting reports whether every letter in s is uppercase and there are
// enough letters for case repair to be meaningful.
func isShouting(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsLower(r) {
			return false
		}
	}
	return letters >= 4
}

// ValidYear reports whether y is a plausible publication year. The lower
// bound predates movable type only slightly; the upper bound allows
// papers dated into next year.
func ValidYear(y int) bool {
	return y >= 1400 && y <= time.Now().Year()+1
}
