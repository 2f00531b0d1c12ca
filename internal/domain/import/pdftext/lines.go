package pdftext

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultLinePattern matches "05 Nov GROCERY MART 1,234.56 CR" style lines.
const DefaultLinePattern = `^\s*(?P<date>\d{1,2} [A-Za-z]{3})\s+` +
	`(?P<description>[A-Za-z0-9 ./\-]+?)\s+` +
	`(?P<amount>(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2})` +
	`(?:\s*(?P<credit>(?i:cr)))?\s*$`

// RawMatch is one statement line recognised as a transaction.
type RawMatch struct {
	Line        int
	Text        string
	Date        string
	Description string
	Amount      string
	Credit      string // empty unless the credit marker was present
}

// LineMatcher applies one compiled line pattern. Safe for concurrent use.
type LineMatcher struct {
	re                                 *regexp.Regexp
	dateIdx, descIdx, amountIdx, crIdx int
}

// NewLineMatcher compiles pattern, which must name the groups date,
// description and amount; credit is optional.
func NewLineMatcher(pattern string) (*LineMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid line pattern: %w", err)
	}
	m := &LineMatcher{
		re:        re,
		dateIdx:   re.SubexpIndex("date"),
		descIdx:   re.SubexpIndex("description"),
		amountIdx: re.SubexpIndex("amount"),
		crIdx:     re.SubexpIndex("credit"),
	}
	if m.dateIdx < 0 || m.descIdx < 0 || m.amountIdx < 0 {
		return nil, fmt.Errorf("line pattern %q must name groups date, description and amount", pattern)
	}
	return m, nil
}

// ExtractTransactionLines splits the concatenated page text into lines and
// keeps those matching the pattern. Each transaction must sit on one line.
func (m *LineMatcher) ExtractTransactionLines(pages []string) []RawMatch {
	text := strings.ReplaceAll(strings.Join(pages, "\n"), "\r\n", "\n")

	var matches []RawMatch
	for i, line := range strings.Split(text, "\n") {
		sub := m.re.FindStringSubmatch(line)
		if sub == nil {
			continue
		}
		match := RawMatch{
			Line:        i + 1,
			Text:        line,
			Date:        sub[m.dateIdx],
			Description: strings.TrimSpace(sub[m.descIdx]),
			Amount:      sub[m.amountIdx],
		}
		if m.crIdx >= 0 {
			match.Credit = sub[m.crIdx]
		}
		matches = append(matches, match)
	}
	return matches
}
