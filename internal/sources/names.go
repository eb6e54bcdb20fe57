// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import "strings"

var honorificPrefixes = []string{"Dr.", "Prof.", "Professor", "Mr.", "Ms.", "Mrs."}

var honorificSuffixes = []string{"Ph.D.", "PhD", "M.D.", "MD", "Jr.", "Sr.", "III", "II"}

// Surname extracts a family name from a free-form author name. It handles
// "Family, Given" order, strips honorifics, and otherwise takes the last
// word of "Given Family". Returns "" for an empty name.
func Surname(name string) string {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" {
		return ""
	}

	for _, p := range honorificPrefixes {
		if strings.HasPrefix(cleaned, p) {
			cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, p))
		}
	}
	for _, s := range honorificSuffixes {
		if strings.HasSuffix(cleaned, s) {
			cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, s))
			cleaned = strings.TrimRight(cleaned, ", ")
		}
	}

	if comma := strings.IndexByte(cleaned, ','); comma >= 0 {
		return strings.TrimSpace(cleaned[:comma])
	}

	parts := strings.Fields(cleaned)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
