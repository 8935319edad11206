package util

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify lowercases s and collapses every run of characters that are not
// letters or digits into a single underscore, trimming underscores at the
// ends. "&" reads as "and", so "Work, Energy & Power" becomes
// "work_energy_and_power".
func Slugify(s string) string {
	s = strings.ReplaceAll(s, "&", " and ")
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// ConceptID returns the identifier of the index-th concept of a discipline,
// e.g. "physics_0007".
func ConceptID(discipline string, index int) string {
	return fmt.Sprintf("%s_%04d", Slugify(discipline), index)
}
