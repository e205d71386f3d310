// Package names canonicalises the identifiers used in directive lists.
// Section names, variable names and custom resource names are all matched
// case-insensitively, the same way the surrounding configuration loader
// treats its keys.
package names

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the canonical (case-folded, trimmed) form of an identifier.
// A Caser is stateful, so a fresh one is built per call.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Equal reports whether two identifiers refer to the same object.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// HasPrefix reports whether s starts with prefix, ignoring case.
func HasPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return Equal(s[:len(prefix)], prefix)
}
