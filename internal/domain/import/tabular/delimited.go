package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrNotDelimited    = errors.New("content is not delimited text")
	ErrNotSpreadsheet  = errors.New("content is not a spreadsheet workbook")
	ErrCorruptDocument = errors.New("document could not be decoded")
)

// ReadDelimited decodes delimited text into one entry per physical line:
// records[i] is the record starting on line i+1, and lines that start no
// record (blank lines, continuations of quoted fields) are nil. A zero
// delimiter is detected from the content. Text that is not valid UTF-8 is
// decoded as Windows-1252.
func ReadDelimited(content []byte, delimiter rune) ([][]string, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyFile
	}
	if DetectKind(content) != KindDelimited {
		return nil, ErrNotDelimited
	}

	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		content = decoded
	}
	if delimiter == 0 {
		delimiter = DetectDelimiter(content)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // Allow variable fields

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		// encoding/csv drops empty lines; keep the physical numbering
		line, _ := reader.FieldPos(0)
		for len(records) < line-1 {
			records = append(records, nil)
		}
		records = append(records, record)
	}
	return records, nil
}
