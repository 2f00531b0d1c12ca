// Package tabular reads row/column statement data from delimited text and
// spreadsheet workbooks.
package tabular

import (
	"iter"
	"strings"
)

// RawRow is one non-blank data row.
type RawRow struct {
	// Number is the 1-based physical row in the file or sheet.
	Number int
	Fields []string
}

// Field returns the trimmed value at index i and whether the row has it.
func (r RawRow) Field(i int) (string, bool) {
	if i < 0 || i >= len(r.Fields) {
		return "", false
	}
	return strings.TrimSpace(r.Fields[i]), true
}

// Rows yields the records after the first headerSkip physical rows, skipping
// blank rows. records[i] must hold physical row i+1, with nil for blank lines.
func Rows(records [][]string, headerSkip int) iter.Seq[RawRow] {
	if headerSkip < 0 {
		headerSkip = 0
	}
	return func(yield func(RawRow) bool) {
		for i := headerSkip; i < len(records); i++ {
			if isBlank(records[i]) {
				continue
			}
			if !yield(RawRow{Number: i + 1, Fields: records[i]}) {
				return
			}
		}
	}
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
