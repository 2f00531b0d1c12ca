package pdftext

import (
	"testing"

	"github.com/dslipak/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementPage1 = `STANDARD CHARTERED BANK
Statement Date 20 Nov 2024
Transaction Date Description Amount
05 Nov GROCERY MART 123.45
05 Nov REFUND 50.00 CR
Page 1 of 2`

const statementPage2 = `07 Nov GRAB-TRANSPORT/SG 1,234.56
08 Nov PAYMENT THANK YOU 2,000.00 cr
09 Nov CAFÉ LATTE 4.50
TOTAL 3,408.01`

func TestExtractTransactionLines_DefaultPattern(t *testing.T) {
	m, err := NewLineMatcher(DefaultLinePattern)
	require.NoError(t, err)

	got := m.ExtractTransactionLines([]string{statementPage1, statementPage2})
	require.Len(t, got, 4)

	assert.Equal(t, RawMatch{
		Line: 4, Text: "05 Nov GROCERY MART 123.45",
		Date: "05 Nov", Description: "GROCERY MART", Amount: "123.45",
	}, got[0])

	assert.Equal(t, "REFUND", got[1].Description)
	assert.Equal(t, "50.00", got[1].Amount)
	assert.Equal(t, "CR", got[1].Credit)

	assert.Equal(t, 7, got[2].Line)
	assert.Equal(t, "GRAB-TRANSPORT/SG", got[2].Description)
	assert.Equal(t, "1,234.56", got[2].Amount)
	assert.Empty(t, got[2].Credit)

	assert.Equal(t, "cr", got[3].Credit)
	assert.Equal(t, "PAYMENT THANK YOU", got[3].Description)
}

func TestExtractTransactionLines_DropsNoise(t *testing.T) {
	m, err := NewLineMatcher(DefaultLinePattern)
	require.NoError(t, err)

	lines := []string{
		"",
		"Page 1 of 2",
		"05 Nov GROCERY MART 123.4",  // one decimal
		"05 Nov GROCERY MART",        // no amount
		"Nov 05 GROCERY MART 123.45", // month first
		"05 Nov GROCERY\r",
	}
	assert.Empty(t, m.ExtractTransactionLines(lines))
}

func TestExtractTransactionLines_NoCrossLineMerge(t *testing.T) {
	m, err := NewLineMatcher(DefaultLinePattern)
	require.NoError(t, err)

	page := "05 Nov VERY LONG MERCHANT\nNAME CONTINUED 10.00\n06 Nov SHOP 2.00\r\n"
	got := m.ExtractTransactionLines([]string{page})
	require.Len(t, got, 1)
	assert.Equal(t, "SHOP", got[0].Description)
	assert.Equal(t, 3, got[0].Line)
}

func TestNewLineMatcher_Validation(t *testing.T) {
	_, err := NewLineMatcher(`(?P<date>\d+`)
	assert.Error(t, err)

	_, err = NewLineMatcher(`(?P<date>\S+) (?P<amount>\S+)`)
	assert.Error(t, err)

	m, err := NewLineMatcher(`^(?P<date>\S+ \S+) (?P<description>.+) (?P<amount>\S+)$`)
	require.NoError(t, err)
	got := m.ExtractTransactionLines([]string{"01 Jan A B 1.00"})
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Credit)
}

func TestExtractPages_Rejects(t *testing.T) {
	_, err := ExtractPages([]byte("Date,Amount\n"))
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = ExtractPages([]byte("%PDF-1.4\nthis is not really a pdf"))
	assert.ErrorIs(t, err, ErrCorruptPDF)
}

func TestLayoutLines(t *testing.T) {
	texts := []pdf.Text{
		{S: "123.45", X: 300, Y: 700, W: 30, FontSize: 10},
		{S: "05 Nov", X: 50, Y: 700.5, W: 30, FontSize: 10},
		{S: "GROCERY", X: 100, Y: 699.5, W: 40, FontSize: 10},
		{S: "MART", X: 145, Y: 700, W: 20, FontSize: 10},
		{S: "Page 1", X: 50, Y: 40, W: 30, FontSize: 8},
	}

	got := layoutLines(texts)
	assert.Equal(t, "05 Nov GROCERY MART 123.45\nPage 1", got)
	assert.Empty(t, layoutLines(nil))
}

func TestLayoutLines_JoinsAdjacentGlyphs(t *testing.T) {
	texts := []pdf.Text{
		{S: "C", X: 10, Y: 100, W: 5, FontSize: 10},
		{S: "R", X: 15, Y: 100, W: 5, FontSize: 10},
	}
	assert.Equal(t, "CR", layoutLines(texts))
}
