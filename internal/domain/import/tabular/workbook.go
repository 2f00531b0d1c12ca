package tabular

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Sheet is one named table of a workbook.
type Sheet struct {
	Name    string
	Records [][]string
}

// Workbook holds every sheet of a spreadsheet in file order.
type Workbook struct {
	Sheets []Sheet
}

// OpenWorkbook decodes an xlsx (Office Open XML) or legacy xls workbook.
func OpenWorkbook(content []byte) (*Workbook, error) {
	switch {
	case len(content) == 0:
		return nil, ErrEmptyFile
	case bytes.HasPrefix(content, zipMagic):
		return openXLSX(content)
	case bytes.HasPrefix(content, oleMagic):
		return openXLS(content)
	}
	return nil, ErrNotSpreadsheet
}

func openXLSX(content []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrCorruptDocument, name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Records: rows})
	}
	return wb, nil
}

func openXLS(content []byte) (wb *Workbook, err error) {
	// the xls decoder panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("%w: %v", ErrCorruptDocument, r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	wb = &Workbook{}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		var records [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				records = append(records, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := range cells {
				cells[c] = row.Col(c)
			}
			records = append(records, cells)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: sheet.Name, Records: records})
	}
	return wb, nil
}
