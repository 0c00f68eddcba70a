package utils

import (
	"regexp"
	"strings"
)

var assertionRefRe = regexp.MustCompile(`\b([rpg][0-9]*)\.`)

// EscapeAssertion rewrites section references in a matcher expression into
// identifiers the expression evaluator accepts: "r.sub" becomes "r_sub",
// "p2.eft" becomes "p2_eft".
func EscapeAssertion(expr string) string {
	return assertionRefRe.ReplaceAllString(expr, "${1}_")
}

// RemoveComments strips an end-of-line comment introduced by '#'.
func RemoveComments(s string) string {
	if i := strings.Index(s, "#"); i != -1 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// SplitTokens splits a comma-separated token list, trimming whitespace and
// dropping empty entries.
func SplitTokens(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ArrayEquals reports whether two string slices are element-wise equal.
func ArrayEquals(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Array2DEquals reports whether two rule lists are element-wise equal.
func Array2DEquals(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ArrayEquals(a[i], b[i]) {
			return false
		}
	}
	return true
}
