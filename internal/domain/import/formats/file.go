package formats

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/pdftext"
)

type fileColumns struct {
	Date         *int  `mapstructure:"date"`
	Description  []int `mapstructure:"description"`
	Description2 *int  `mapstructure:"description_2"`
	Amount       *int  `mapstructure:"amount"`
	Debit        *int  `mapstructure:"debit"`
	Credit       *int  `mapstructure:"credit"`
}

type fileTable struct {
	Name       string      `mapstructure:"name"`
	HeaderSkip int         `mapstructure:"header_skip"`
	MinColumns int         `mapstructure:"min_columns"`
	Columns    fileColumns `mapstructure:"columns"`
}

type fileFormat struct {
	ID                  int         `mapstructure:"id"`
	Name                string      `mapstructure:"name"`
	Strategy            string      `mapstructure:"strategy"`
	HeaderSkip          int         `mapstructure:"header_skip"`
	Delimiter           string      `mapstructure:"delimiter"`
	MinColumns          int         `mapstructure:"min_columns"`
	Columns             fileColumns `mapstructure:"columns"`
	Tables              []fileTable `mapstructure:"tables"`
	LinePattern         string      `mapstructure:"line_pattern"`
	DatePatterns        []string    `mapstructure:"date_patterns"`
	SignRule            string      `mapstructure:"sign_rule"`
	CreditMarker        string      `mapstructure:"credit_marker"`
	DescriptionFallback bool        `mapstructure:"description_fallback"`
}

// LoadFile reads format definitions from a YAML, JSON or TOML file and merges
// them over base: an entry with a known id replaces it, new ids are appended.
//
//	formats:
//	  - id: 10
//	    name: my-bank-csv
//	    strategy: tabular-delimited
//	    header_skip: 3
//	    columns: {date: 0, description: [2], amount: 4}
//	    date_patterns: ["DD/MM/YYYY"]
//	    sign_rule: positive-is-debit
func LoadFile(path string, base []FormatConfig) ([]FormatConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read formats file: %w", err)
	}

	var file struct {
		Formats []fileFormat `mapstructure:"formats"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode formats file: %w", err)
	}

	merged := make([]FormatConfig, 0, len(base)+len(file.Formats))
	index := make(map[int]int, len(base))
	for _, c := range base {
		index[c.ID] = len(merged)
		merged = append(merged, c)
	}

	for _, ff := range file.Formats {
		c, err := ff.toConfig()
		if err != nil {
			return nil, fmt.Errorf("%w: format %d: %v", ErrInvalidFormat, ff.ID, err)
		}
		if i, ok := index[c.ID]; ok {
			merged[i] = c
			continue
		}
		index[c.ID] = len(merged)
		merged = append(merged, c)
	}
	return merged, nil
}

func (ff fileFormat) toConfig() (FormatConfig, error) {
	delim, err := parseDelimiter(ff.Delimiter)
	if err != nil {
		return FormatConfig{}, err
	}

	c := FormatConfig{
		ID:                  ff.ID,
		Name:                ff.Name,
		Strategy:            Strategy(ff.Strategy),
		HeaderSkip:          ff.HeaderSkip,
		Delimiter:           delim,
		MinColumns:          ff.MinColumns,
		Columns:             ff.Columns.toColumns(),
		LinePattern:         ff.LinePattern,
		SignRule:            normalizer.SignRule(ff.SignRule),
		CreditMarker:        ff.CreditMarker,
		DescriptionFallback: ff.DescriptionFallback,
	}
	if c.Strategy == StrategyPDFLines && c.LinePattern == "" {
		c.LinePattern = pdftext.DefaultLinePattern
	}
	for _, p := range ff.DatePatterns {
		c.DatePatterns = append(c.DatePatterns, normalizer.DatePattern(p))
	}
	for _, t := range ff.Tables {
		c.Tables = append(c.Tables, TableLayout{
			Name:       t.Name,
			HeaderSkip: t.HeaderSkip,
			MinColumns: t.MinColumns,
			Columns:    t.Columns.toColumns(),
		})
	}
	return c, nil
}

func (fc fileColumns) toColumns() Columns {
	col := func(p *int) int {
		if p == nil {
			return NoColumn
		}
		return *p
	}
	return Columns{
		Date:         col(fc.Date),
		Description:  fc.Description,
		Description2: col(fc.Description2),
		Amount:       col(fc.Amount),
		Debit:        col(fc.Debit),
		Credit:       col(fc.Credit),
	}
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
