// Package export writes normalized transactions to spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/service"
)

// SheetName is the worksheet the transactions are written to.
const SheetName = "Transactions"

var headers = []any{"Date", "Amount", "Description", "Description 2", "Format"}

// WriteWorkbook writes one row per transaction under a header row.
func WriteWorkbook(w io.Writer, txs []service.NormalizedTransaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	for i, tx := range txs {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			tx.Date.Format("2006-01-02"),
			tx.Amount.InexactFloat64(),
			tx.Description,
			tx.Description2,
			tx.SourceFormat,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	if len(txs) > 0 {
		last, _ := excelize.CoordinatesToCellName(2, len(txs)+1)
		if err := f.SetCellStyle(SheetName, "B2", last, amountStyle); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		return fmt.Errorf("date column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "C", "D", 40); err != nil {
		return fmt.Errorf("description column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
