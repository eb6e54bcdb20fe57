// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters and removes the combining
// marks, turning "é" into "e" and "ü" into "u".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// charMap covers letters that do not decompose into base + mark.
var charMap = map[rune]string{
	'ł': "l", 'Ł': "L",
	'ß': "ss",
	'ø': "o", 'Ø': "O",
	'æ': "ae", 'Æ': "Ae",
	'œ': "oe", 'Œ': "Oe",
	'đ': "d", 'Đ': "D",
	'þ': "th", 'Þ': "Th",
	'ð': "d", 'Ð': "D",
	// Common Cyrillic letters seen in untranslated author names.
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "i", 'к': "k", 'л': "l",
	'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s",
	'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ы': "y", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Transliterate reduces a string to printable ASCII: accents are
// stripped, known special letters are mapped, anything else non-ASCII is
// dropped.
func Transliterate(s string) string {
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case charMap[r] != "":
			b.WriteString(charMap[r])
		case charMap[unicode.ToLower(r)] != "":
			b.WriteString(strings.ToUpper(charMap[unicode.ToLower(r)][:1]) + charMap[unicode.ToLower(r)][1:])
		}
	}
	return b.String()
}
