package tabular

import (
	"bytes"
	"strings"
)

// Kind is the physical shape of a document.
type Kind string

const (
	KindUnknown     Kind = ""
	KindDelimited   Kind = "tabular-delimited"
	KindSpreadsheet Kind = "tabular-spreadsheet"
	KindPDF         Kind = "pdf"
)

var (
	pdfMagic  = []byte("%PDF-")
	zipMagic  = []byte("PK\x03\x04")
	oleMagic  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
	sniffSize = 4096
)

// Statement header keywords seen in bank exports
var headerKeywords = []string{
	"date", "description", "amount", "debit", "credit", "balance", "reference",
	"transaction", "remarks", "withdrawal", "deposit",
}

// DetectKind classifies content by its leading bytes. Anything else without
// NUL bytes in its first block is delimited text, whatever its encoding.
func DetectKind(content []byte) Kind {
	switch {
	case len(content) == 0:
		return KindUnknown
	case bytes.HasPrefix(content, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(content, zipMagic), bytes.HasPrefix(content, oleMagic):
		return KindSpreadsheet
	}

	sample := bytes.TrimPrefix(content, utf8BOM)
	if len(sample) > sniffSize {
		sample = sample[:sniffSize]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return KindUnknown
	}
	return KindDelimited
}

// DetectDelimiter guesses the field delimiter of delimited text. A line that
// looks like a header decides; otherwise the delimiter seen most often in the
// first lines wins. Defaults to ','.
func DetectDelimiter(content []byte) rune {
	text := string(bytes.TrimPrefix(content, utf8BOM))
	lines := strings.Split(text, "\n")
	if len(lines) > 20 {
		lines = lines[:20]
	}

	if d, ok := findHeaderRow(lines); ok {
		return d
	}

	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		count := 0
		for _, line := range lines {
			count += strings.Count(line, string(d))
		}
		if count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

var candidateDelimiters = []rune{',', ';', '\t', '|'}

// findHeaderRow locates a header-looking line and returns its delimiter
func findHeaderRow(lines []string) (rune, bool) {
	for _, line := range lines {
		lineLower := strings.ToLower(line)

		hasKeyword := false
		for _, kw := range headerKeywords {
			if strings.Contains(lineLower, kw) {
				hasKeyword = true
				break
			}
		}
		if !hasKeyword {
			continue
		}

		for _, d := range candidateDelimiters {
			if strings.Count(line, string(d)) >= 2 { // at least 3 columns
				return d, true
			}
		}
	}
	return 0, false
}
