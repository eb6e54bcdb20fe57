// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identify

import "strings"

// normalizeISBN strips separators from a raw ISBN candidate and validates
// its checksum. Returns the canonical digit string and whether it is valid.
func normalizeISBN(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	isbn := b.String()

	switch len(isbn) {
	case 10:
		return isbn, validISBN10(isbn)
	case 13:
		return isbn, validISBN13(isbn)
	default:
		return isbn, false
	}
}

// validISBN10 checks the weighted mod-11 checksum. "X" is only legal as the
// final check digit.
func validISBN10(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r == 'X' && i == 9:
			v = 10
		default:
			return false
		}
		sum += (i + 1) * v
	}
	return sum%11 == 0
}

// validISBN13 checks the alternating 1/3-weighted mod-10 checksum.
func validISBN13(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		if r < '0' || r > '9' {
			return false
		}
		v := int(r - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}
