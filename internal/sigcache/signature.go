// Package sigcache resolves previously seen categorizations by a normalized
// description signature, without any external call.
package sigcache

import (
	"regexp"
	"strings"
)

var (
	datePattern      = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(/\d{2,4})?\b`)
	referencePattern = regexp.MustCompile(`\bREF:\s*\S+`)
	numberPattern    = regexp.MustCompile(`\b\d+([.,]\d+)?\b`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// Signature derives the stable lookup key for a transaction description.
// Dates, reference tokens, and amounts are stripped so that recurring
// merchants collapse to one key regardless of the statement line's specifics.
func Signature(description string) string {
	s := strings.ToUpper(description)
	s = datePattern.ReplaceAllString(s, " ")
	s = referencePattern.ReplaceAllString(s, " ")
	s = numberPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
