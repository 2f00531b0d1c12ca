// Package normalizer handles bank-specific money and date parsing.
// Converts raw statement text into signed decimal amounts and calendar dates.
package normalizer

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrMalformedAmount = errors.New("malformed amount")
	ErrUnparseableDate = errors.New("unparseable date")
)

var spacePattern = regexp.MustCompile(`\s+`)

// CleanDescription normalizes merchant/description text
func CleanDescription(raw string) string {
	return spacePattern.ReplaceAllString(strings.TrimSpace(raw), " ")
}

// JoinDescription cleans each part and joins the non-empty ones with a space.
func JoinDescription(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := CleanDescription(p); c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " ")
}
