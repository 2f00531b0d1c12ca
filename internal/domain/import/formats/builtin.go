package formats

import (
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/pdftext"
)

// Built-in format ids. They match the bank_file_format table.
const (
	BankCSV                = 1
	CreditCardCSV          = 2
	CreditCardWorkbook     = 3
	CreditCardPDF          = 4
	CardCSVPositiveIsDebit = 5
)

// Builtin returns the formats shipped with the service.
func Builtin() []FormatConfig {
	return []FormatConfig{
		{
			ID:         BankCSV,
			Name:       "bank-csv",
			Strategy:   StrategyDelimited,
			HeaderSkip: 1,
			Delimiter:  ',',
			MinColumns: 7,
			Columns: Columns{
				Date:         0,
				Description:  []int{4, 5, 6},
				Description2: 1,
				Amount:       NoColumn,
				Debit:        2,
				Credit:       3,
			},
			DatePatterns: []normalizer.DatePattern{
				normalizer.DatePatternDayMonthYear,
				normalizer.DatePatternDMYSlash,
				normalizer.DatePatternISO,
			},
			SignRule: normalizer.SignRuleDebitCreditColumns,
		},
		{
			ID:         CreditCardCSV,
			Name:       "sc-credit-card-csv",
			Strategy:   StrategyDelimited,
			HeaderSkip: 16,
			Delimiter:  ',',
			MinColumns: 15,
			Columns: Columns{
				Date:         0,
				Description:  []int{3},
				Description2: NoColumn,
				Amount:       14,
				Debit:        NoColumn,
				Credit:       NoColumn,
			},
			DatePatterns: []normalizer.DatePattern{
				normalizer.DatePatternDMYSlash,
				normalizer.DatePatternDayMonthYear,
				normalizer.DatePatternDayMonth,
				normalizer.DatePatternISO,
			},
			SignRule:            normalizer.SignRuleCreditSuffix,
			CreditMarker:        normalizer.DefaultCreditMarker,
			DescriptionFallback: true,
		},
		{
			ID:       CreditCardWorkbook,
			Name:     "sc-credit-card-xlsx",
			Strategy: StrategySpreadsheet,
			Tables: []TableLayout{
				{
					Name:       "Table 1",
					HeaderSkip: 1,
					Columns:    Columns{Date: 0, Description: []int{3}, Description2: 10, Amount: 14, Debit: NoColumn, Credit: NoColumn},
				},
				{
					Name:       "Table 2",
					HeaderSkip: 1,
					Columns:    Columns{Date: 0, Description: []int{2}, Description2: 3, Amount: 4, Debit: NoColumn, Credit: NoColumn},
				},
			},
			DatePatterns: []normalizer.DatePattern{normalizer.DatePatternDayMonth},
			SignRule:     normalizer.SignRuleCreditSuffix,
			CreditMarker: normalizer.DefaultCreditMarker,
		},
		{
			ID:           CreditCardPDF,
			Name:         "sc-credit-card-pdf",
			Strategy:     StrategyPDFLines,
			LinePattern:  pdftext.DefaultLinePattern,
			DatePatterns: []normalizer.DatePattern{normalizer.DatePatternDayMonth},
			SignRule:     normalizer.SignRuleCreditSuffix,
			CreditMarker: normalizer.DefaultCreditMarker,
		},
		{
			ID:         CardCSVPositiveIsDebit,
			Name:       "card-csv-positive-debit",
			Strategy:   StrategyDelimited,
			HeaderSkip: 1,
			Columns: Columns{
				Date:         0,
				Description:  []int{1},
				Description2: NoColumn,
				Amount:       2,
				Debit:        NoColumn,
				Credit:       NoColumn,
			},
			DatePatterns: []normalizer.DatePattern{normalizer.DatePatternISO},
			SignRule:     normalizer.SignRulePositiveIsDebit,
		},
	}
}
