package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/formats"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/tabular"
)

var fixedNow = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func newTestParser(t testing.TB) *Parser {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewParser(formats.Default(), logger, WithClock(func() time.Time { return fixedNow }))
}

func amountOf(t *testing.T, tx NormalizedTransaction) string {
	t.Helper()
	return tx.Amount.StringFixed(2)
}

func creditCardCSV(dataRows ...string) string {
	var b strings.Builder
	b.WriteString("Standard Chartered Bank\n")
	for i := 1; i < 15; i++ {
		fmt.Fprintf(&b, "Statement line %d\n", i)
	}
	b.WriteString("Date,Posting,Ref,Description,,,,,,,,,,,Amount\n")
	for _, r := range dataRows {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	return b.String()
}

func ccRow(date, desc, amount string) string {
	return fmt.Sprintf("%s,,,%s,,,,,,,,,,,%s", date, desc, amount)
}

func TestParseDocument_CreditCardCSV_HeaderSkip(t *testing.T) {
	content := creditCardCSV(
		ccRow("02/01/2025", "GROCERY MART", "123.45"),
		ccRow("03/01/2025", "REFUND", "50.00 CR"),
		ccRow("04/01/2025", "\"LAPTOP, 15 INCH\"", "\"1,299.00\""),
		ccRow("05/01/2025", "", "20.00CR"),
		ccRow("28 Dec", "HOTEL", "300.00"),
	)

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{
		FormatID: formats.CreditCardCSV,
		Content:  []byte(content),
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 5)
	assert.Empty(t, res.Diagnostics)

	txs := res.Transactions
	assert.Equal(t, "-123.45", amountOf(t, txs[0]))
	assert.Equal(t, "GROCERY MART", txs[0].Description)
	assert.Equal(t, 17, txs[0].Row)
	assert.Equal(t, "2025-01-02", txs[0].Date.Format("2006-01-02"))

	assert.Equal(t, "50.00", amountOf(t, txs[1]))
	assert.Equal(t, "-1299.00", amountOf(t, txs[2]))
	assert.Equal(t, "LAPTOP, 15 INCH", txs[2].Description)

	assert.Equal(t, "credit", txs[3].Description)

	assert.Equal(t, "2024-12-28", txs[4].Date.Format("2006-01-02"))

	for _, tx := range txs {
		assert.Equal(t, res.DocumentID, tx.DocumentID)
		assert.Equal(t, formats.CreditCardCSV, tx.SourceFormat)
	}
}

func bankRow(date, ref, debit, credit, r1, r2, r3 string) string {
	return strings.Join([]string{date, ref, debit, credit, r1, r2, r3}, ",")
}

func TestParseDocument_CreditCardCSV_BlankPreambleLines(t *testing.T) {
	var b strings.Builder
	b.WriteString("Standard Chartered Bank\n")
	for i := 1; i < 15; i++ {
		if i%3 == 0 && i < 13 {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "Statement line %d\n", i)
	}
	b.WriteString("Date,Posting,Ref,Description,,,,,,,,,,,Amount\n")
	for i := 1; i <= 5; i++ {
		b.WriteString(ccRow(fmt.Sprintf("%02d/01/2025", i), fmt.Sprintf("SHOP %d", i), "1.00"))
		b.WriteByte('\n')
	}

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{
		FormatID: formats.CreditCardCSV,
		Content:  []byte(b.String()),
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 5)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, "SHOP 1", res.Transactions[0].Description)
	assert.Equal(t, 17, res.Transactions[0].Row)
	assert.Equal(t, 21, res.Transactions[4].Row)
}

func TestParseDocument_Windows1252CSV(t *testing.T) {
	content := []byte("date,description,amount\n2024-12-01,CAF\xc9 RIO,4.50\n2024-12-02,NA\xefVE,1.00\n")

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{
		FormatID: formats.CardCSVPositiveIsDebit,
		Content:  content,
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "CAFÉ RIO", res.Transactions[0].Description)
	assert.Equal(t, "NAÏVE", res.Transactions[1].Description)
	assert.Equal(t, "-4.50", amountOf(t, res.Transactions[0]))
}

func TestParseDocument_BankCSV_OneMalformedRow(t *testing.T) {
	rows := []string{"Transaction Date,Reference,Debit Amount,Credit Amount,Transaction Ref1,Transaction Ref2,Transaction Ref3"}
	for i := 1; i <= 10; i++ {
		rows = append(rows, bankRow(fmt.Sprintf("%02d Nov 2024", i), "POS", fmt.Sprintf("%d.50", i), "", "SHOP", fmt.Sprintf("NO %d", i), ""))
		if i == 5 {
			rows = append(rows, bankRow("31 Nov 2024", "POS", "1.00", "", "BAD", "DATE", ""))
		}
	}

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{
		FormatID: formats.BankCSV,
		Kind:     tabular.KindDelimited,
		Content:  []byte(strings.Join(rows, "\n")),
	})
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 10)
	require.Len(t, res.Diagnostics, 1)

	d := res.Diagnostics[0]
	assert.Equal(t, DiagnosticRowSkipped, d.Kind)
	assert.Equal(t, ReasonUnparseableDate, d.Reason)
	assert.Equal(t, 7, d.Row)
	assert.Equal(t, "31 Nov 2024", d.Raw)

	first := res.Transactions[0]
	assert.Equal(t, "-1.50", amountOf(t, first))
	assert.Equal(t, "SHOP NO 1", first.Description)
	assert.Equal(t, "POS", first.Description2)
}

func TestParseDocument_NineOfTen(t *testing.T) {
	rows := []string{"Transaction Date,Reference,Debit Amount,Credit Amount,Ref1,Ref2,Ref3"}
	for i := 1; i <= 10; i++ {
		debit := fmt.Sprintf("%d.00", i)
		if i == 4 {
			debit = "twelve"
		}
		rows = append(rows, bankRow(fmt.Sprintf("%02d Oct 2024", i), "ICT", debit, "", "X", "", ""))
	}

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{
		FormatID: formats.BankCSV,
		Content:  []byte(strings.Join(rows, "\n")),
	})
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 9)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, ReasonMalformedAmount, res.Diagnostics[0].Reason)
	assert.Equal(t, 5, res.Diagnostics[0].Row)
}

func TestParseDocument_DebitCreditSign(t *testing.T) {
	content := strings.Join([]string{
		"Transaction Date,Reference,Debit Amount,Credit Amount,Ref1,Ref2,Ref3",
		bankRow("01 Nov 2024", "POS", "10.00", "", "A", "", ""),
		bankRow("02 Nov 2024", "ICT", "", "\"2,500.00\"", "SALARY", "", ""),
		bankRow("03 Nov 2024", "ICT", "5.00", "7.50", "NET", "", ""),
		bankRow("04 Nov 2024", "ICT", "", "", "ZERO", "", ""),
	}, "\n")

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{FormatID: formats.BankCSV, Content: []byte(content)})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 4)

	want := []string{"-10.00", "2500.00", "2.50", "0.00"}
	for i, w := range want {
		assert.Equal(t, w, amountOf(t, res.Transactions[i]), "row %d", i)
	}
	assert.True(t, res.Transactions[0].Amount.IsNegative())
}

func TestParseDocument_ShortRow(t *testing.T) {
	content := strings.Join([]string{
		"Transaction Date,Reference,Debit Amount,Credit Amount,Ref1,Ref2,Ref3",
		"01 Nov 2024,POS,10.00",
		bankRow("02 Nov 2024", "POS", "3.00", "", "OK", "", ""),
	}, "\n")

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{FormatID: formats.BankCSV, Content: []byte(content)})
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 1)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, ReasonInsufficientColumns, res.Diagnostics[0].Reason)
	assert.Equal(t, 2, res.Diagnostics[0].Row)
}

func TestParseDocument_PositiveIsDebit(t *testing.T) {
	content := "date,description,amount\n2024-12-01,Coffee,4.50\n2024-12-02,Refund,-20.00\n"

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{
		FormatID: formats.CardCSVPositiveIsDebit,
		Content:  []byte(content),
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "-4.50", amountOf(t, res.Transactions[0]))
	assert.Equal(t, "20.00", amountOf(t, res.Transactions[1]))
}

func TestParseDocument_UnsupportedFormat(t *testing.T) {
	res, err := newTestParser(t).ParseDocument(context.Background(), Document{FormatID: 42, Content: []byte("a,b\n")})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, FailureUnsupportedFormat, failure.Kind)
	assert.Equal(t, 42, failure.FormatID)
}

func TestParseDocument_UnreadableDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"pdf bytes for csv format", Document{FormatID: formats.BankCSV, Content: []byte("%PDF-1.4\n...")}},
		{"declared kind mismatch", Document{FormatID: formats.BankCSV, Kind: tabular.KindPDF, Content: []byte("a,b,c\n")}},
		{"empty content", Document{FormatID: formats.CreditCardCSV}},
		{"csv for workbook format", Document{FormatID: formats.CreditCardWorkbook, Content: []byte("a,b\n")}},
		{"corrupt workbook", Document{FormatID: formats.CreditCardWorkbook, Content: []byte("PK\x03\x04not a zip")}},
		{"corrupt pdf", Document{FormatID: formats.CreditCardPDF, Content: []byte("%PDF-1.4\nbroken")}},
		{"binary", Document{FormatID: formats.CardCSVPositiveIsDebit, Content: []byte{0x00, 0x01, 0x02}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := newTestParser(t).ParseDocument(context.Background(), tc.doc)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnreadableDocument)
			assert.NotErrorIs(t, err, ErrUnsupportedFormat)
		})
	}
}

func workbook(t *testing.T, sheets []string, rows map[string][][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func table1Row(date, desc, desc2, amount string) []any {
	row := make([]any, 15)
	for i := range row {
		row[i] = ""
	}
	row[0], row[3], row[10], row[14] = date, desc, desc2, amount
	return row
}

func TestParseDocument_MultiTableWorkbook(t *testing.T) {
	content := workbook(t, []string{"Table 1", "Table 2", "Summary"}, map[string][][]any{
		"Table 1": {
			table1Row("Date", "", "", "Amount"),
			table1Row("16 Nov", "GROCERY MART", "SINGAPORE", "1,234.56"),
			table1Row("31 Dec", "REFUND", "", "45.00 CR"),
			table1Row("Total", "", "", "1,189.56"),
		},
		"Table 2": {
			{"Date", "Posting", "Description", "Ref", "Amount"},
			{"02 Jan", "03 Jan", "CAFE", "REF1", "8.20"},
			{"03 Jan", "", "NO AMOUNT"},
		},
		"Summary": {
			{"Total", "999"},
		},
	})

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{
		FormatID: formats.CreditCardWorkbook,
		Kind:     tabular.KindSpreadsheet,
		Content:  content,
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 4)

	txs := res.Transactions
	assert.Equal(t, "-1234.56", amountOf(t, txs[0]))
	assert.Equal(t, "GROCERY MART", txs[0].Description)
	assert.Equal(t, "SINGAPORE", txs[0].Description2)
	assert.Equal(t, "2024-11-16", txs[0].Date.Format("2006-01-02"))

	assert.Equal(t, "45.00", amountOf(t, txs[1]))
	assert.Equal(t, "2024-12-31", txs[1].Date.Format("2006-01-02"))

	assert.Equal(t, "-8.20", amountOf(t, txs[2]))
	assert.Equal(t, "CAFE", txs[2].Description)
	assert.Equal(t, "REF1", txs[2].Description2)
	assert.Equal(t, "2025-01-02", txs[2].Date.Format("2006-01-02"))

	assert.Equal(t, "0.00", amountOf(t, txs[3]))

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, Diagnostic{Kind: DiagnosticRowSkipped, Row: 4, Table: "Table 1", Reason: ReasonUnparseableDate, Raw: "Total"}, res.Diagnostics[0])
	assert.Equal(t, Diagnostic{Kind: DiagnosticSheetSkipped, Table: "Summary", Reason: ReasonUnknownTable}, res.Diagnostics[1])
}

func TestParseDocument_PDF(t *testing.T) {
	doc := buildPDF(
		"STANDARD CHARTERED CREDIT CARD",
		"05 Nov GROCERY MART 123.45",
		"05 Nov REFUND 50.00 CR",
		"07 Xyz BAD MONTH 1.00",
		"TOTAL 73.45",
	)

	res, err := newTestParser(t).ParseDocument(context.Background(), Document{
		FormatID: formats.CreditCardPDF,
		Kind:     tabular.KindPDF,
		Content:  doc,
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "-123.45", amountOf(t, res.Transactions[0]))
	assert.Equal(t, "GROCERY MART", res.Transactions[0].Description)
	assert.Equal(t, "50.00", amountOf(t, res.Transactions[1]))
	assert.Equal(t, "2024-11-05", res.Transactions[1].Date.Format("2006-01-02"))

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, ReasonUnparseableDate, res.Diagnostics[0].Reason)
	assert.Equal(t, 4, res.Diagnostics[0].Row)
}

func TestParseDocument_ConcurrentCalls(t *testing.T) {
	p := newTestParser(t)
	content := []byte(creditCardCSV(ccRow("02/01/2025", "A", "1.00"), ccRow("03/01/2025", "B", "2.00 CR")))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.ParseDocument(context.Background(), Document{FormatID: formats.CreditCardCSV, Content: content})
			if err != nil {
				t.Errorf("ParseDocument: %v", err)
				return
			}
			if len(res.Transactions) != 2 {
				t.Errorf("expected 2 transactions, got %d", len(res.Transactions))
			}
		}()
	}
	wg.Wait()
}

func TestSummarize(t *testing.T) {
	txs := []NormalizedTransaction{
		{Amount: decimal.RequireFromString("-10.00")},
		{Amount: decimal.RequireFromString("-2.50")},
		{Amount: decimal.RequireFromString("100.00")},
	}

	s := Summarize(txs)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "12.50", s.Debited.StringFixed(2))
	assert.Equal(t, "100.00", s.Credited.StringFixed(2))

	empty := Summarize(nil)
	assert.True(t, empty.Debited.IsZero())
}

func BenchmarkParseDocument_CreditCardCSV(b *testing.B) {
	rows := make([]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		rows = append(rows, ccRow("02/01/2025", fmt.Sprintf("MERCHANT %d", i), fmt.Sprintf("%d.%02d", i, i%100)))
	}
	content := []byte(creditCardCSV(rows...))
	p := newTestParser(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.ParseDocument(context.Background(), Document{FormatID: formats.CreditCardCSV, Content: content}); err != nil {
			b.Fatal(err)
		}
	}
}

// buildPDF writes a one-page PDF with each line as its own text object.
func buildPDF(lines ...string) []byte {
	var content bytes.Buffer
	for i, line := range lines {
		fmt.Fprintf(&content, "BT /F1 10 Tf 50 %d Td (%s) Tj ET\n", 700-14*i, line)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}
