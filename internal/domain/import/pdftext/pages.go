// Package pdftext pulls transaction lines out of PDF card statements.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

var (
	ErrNotPDF     = errors.New("content is not a PDF document")
	ErrCorruptPDF = errors.New("PDF could not be decoded")
)

const (
	// glyphs whose baselines differ by less than this share a line
	lineTolerance = 2.0
	// a horizontal gap wider than this fraction of the font size is a space
	spaceRatio = 0.2
)

// ExtractPages returns the text of each page, one physical line per "\n".
func ExtractPages(content []byte) (pages []string, err error) {
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}

	// the decoder panics on malformed object streams
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: %v", ErrCorruptPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPDF, err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pages = append(pages, layoutLines(p.Content().Text))
	}
	return pages, nil
}

// layoutLines rebuilds reading order from positioned text runs: top to
// bottom, then left to right.
func layoutLines(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines [][]pdf.Text
	var current []pdf.Text
	lineY := sorted[0].Y
	for _, t := range sorted {
		if math.Abs(t.Y-lineY) > lineTolerance {
			lines = append(lines, current)
			current = nil
			lineY = t.Y
		}
		current = append(current, t)
	}
	lines = append(lines, current)

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })

		var b strings.Builder
		for i, t := range line {
			if i > 0 {
				prev := line[i-1]
				gap := t.X - (prev.X + prev.W)
				if gap > prev.FontSize*spaceRatio && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
					b.WriteByte(' ')
				}
			}
			b.WriteString(t.S)
		}
		out = append(out, strings.TrimSpace(b.String()))
	}
	return strings.Join(out, "\n")
}
