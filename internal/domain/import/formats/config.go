// Package formats holds the static table describing how each supported bank
// document is laid out.
package formats

import (
	"errors"
	"fmt"
	"slices"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/pdftext"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/tabular"
)

// Strategy selects the extractor used for a format.
type Strategy string

const (
	StrategyDelimited   Strategy = "tabular-delimited"
	StrategySpreadsheet Strategy = "tabular-spreadsheet-multi-table"
	StrategyPDFLines    Strategy = "pdf-line-pattern"
)

// NoColumn marks a field the layout does not carry.
const NoColumn = -1

var ErrInvalidFormat = errors.New("invalid format config")

// Columns maps transaction fields to zero-based column indexes.
type Columns struct {
	Date         int
	Description  []int // joined with a space
	Description2 int
	Amount       int
	Debit        int
	Credit       int
}

// maxIndex returns the highest column index referenced.
func (c Columns) maxIndex() int {
	m := max(c.Date, c.Description2, c.Amount, c.Debit, c.Credit)
	for _, d := range c.Description {
		m = max(m, d)
	}
	return m
}

func (c Columns) validate(rule normalizer.SignRule) error {
	if c.Date < 0 {
		return errors.New("date column is required")
	}
	if rule == normalizer.SignRuleDebitCreditColumns {
		if c.Debit < 0 || c.Credit < 0 {
			return errors.New("debit and credit columns are required")
		}
	} else if c.Amount < 0 {
		return errors.New("amount column is required")
	}
	for _, d := range c.Description {
		if d < 0 {
			return fmt.Errorf("description column %d is negative", d)
		}
	}
	return nil
}

// TableLayout describes one named sheet of a multi-table workbook.
type TableLayout struct {
	Name       string
	HeaderSkip int
	Columns    Columns
	MinColumns int
}

// Width is the number of cells a row needs to cover every mapped column.
// Workbook readers drop trailing empty cells, so shorter rows are padded.
func (t TableLayout) Width() int {
	return t.Columns.maxIndex() + 1
}

// FormatConfig describes how to parse one bank/document format. Values are
// built once at startup and never mutated.
type FormatConfig struct {
	ID           int
	Name         string
	Strategy     Strategy
	HeaderSkip   int
	Delimiter    rune // 0 detects the delimiter from content
	Columns      Columns
	MinColumns   int
	Tables       []TableLayout
	LinePattern  string
	DatePatterns []normalizer.DatePattern
	SignRule     normalizer.SignRule
	CreditMarker string
	// DescriptionFallback fills an empty description with "credit" or "debit".
	DescriptionFallback bool

	matcher *pdftext.LineMatcher
}

// Kind is the document kind the format's content must have.
func (f FormatConfig) Kind() tabular.Kind {
	switch f.Strategy {
	case StrategyDelimited:
		return tabular.KindDelimited
	case StrategySpreadsheet:
		return tabular.KindSpreadsheet
	case StrategyPDFLines:
		return tabular.KindPDF
	}
	return tabular.KindUnknown
}

// RequiredColumns is the row width below which a delimited row is skipped.
func (f FormatConfig) RequiredColumns() int {
	return max(f.MinColumns, f.Columns.maxIndex()+1)
}

// Table returns the layout registered for a sheet name.
func (f FormatConfig) Table(name string) (TableLayout, bool) {
	for _, t := range f.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableLayout{}, false
}

// LineMatcher returns the compiled line pattern of a PDF format. It is nil
// until the config has been registered.
func (f FormatConfig) LineMatcher() *pdftext.LineMatcher {
	return f.matcher
}

// Marker returns the configured credit marker or the default.
func (f FormatConfig) Marker() string {
	if f.CreditMarker == "" {
		return normalizer.DefaultCreditMarker
	}
	return f.CreditMarker
}

// Validate checks the config is internally consistent.
func (f FormatConfig) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidFormat, f.ID)
	}
	if f.Name == "" {
		return fmt.Errorf("%w: format %d has no name", ErrInvalidFormat, f.ID)
	}
	if !f.SignRule.Valid() {
		return fmt.Errorf("%w: format %d: unknown sign rule %q", ErrInvalidFormat, f.ID, f.SignRule)
	}
	if len(f.DatePatterns) == 0 {
		return fmt.Errorf("%w: format %d: no date patterns", ErrInvalidFormat, f.ID)
	}
	for _, p := range f.DatePatterns {
		if !p.Valid() {
			return fmt.Errorf("%w: format %d: unknown date pattern %q", ErrInvalidFormat, f.ID, p)
		}
	}
	if f.HeaderSkip < 0 {
		return fmt.Errorf("%w: format %d: negative header skip", ErrInvalidFormat, f.ID)
	}

	switch f.Strategy {
	case StrategyDelimited:
		if err := f.Columns.validate(f.SignRule); err != nil {
			return fmt.Errorf("%w: format %d: %v", ErrInvalidFormat, f.ID, err)
		}
	case StrategySpreadsheet:
		if len(f.Tables) == 0 {
			return fmt.Errorf("%w: format %d: no tables", ErrInvalidFormat, f.ID)
		}
		seen := make(map[string]bool, len(f.Tables))
		for _, t := range f.Tables {
			if t.Name == "" || seen[t.Name] {
				return fmt.Errorf("%w: format %d: table names must be unique and non-empty", ErrInvalidFormat, f.ID)
			}
			seen[t.Name] = true
			if t.HeaderSkip < 0 {
				return fmt.Errorf("%w: format %d table %q: negative header skip", ErrInvalidFormat, f.ID, t.Name)
			}
			if err := t.Columns.validate(f.SignRule); err != nil {
				return fmt.Errorf("%w: format %d table %q: %v", ErrInvalidFormat, f.ID, t.Name, err)
			}
		}
	case StrategyPDFLines:
		if f.SignRule == normalizer.SignRuleDebitCreditColumns {
			return fmt.Errorf("%w: format %d: PDF lines carry a single amount", ErrInvalidFormat, f.ID)
		}
		if _, err := pdftext.NewLineMatcher(f.LinePattern); err != nil {
			return fmt.Errorf("%w: format %d: %v", ErrInvalidFormat, f.ID, err)
		}
	default:
		return fmt.Errorf("%w: format %d: unknown strategy %q", ErrInvalidFormat, f.ID, f.Strategy)
	}
	return nil
}

func (f FormatConfig) clone() FormatConfig {
	f.Columns.Description = slices.Clone(f.Columns.Description)
	f.DatePatterns = slices.Clone(f.DatePatterns)
	tables := make([]TableLayout, len(f.Tables))
	for i, t := range f.Tables {
		t.Columns.Description = slices.Clone(t.Columns.Description)
		tables[i] = t
	}
	if f.Tables != nil {
		f.Tables = tables
	}
	return f
}
