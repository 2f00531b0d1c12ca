package tabular

import (
	"strings"
	"testing"
)

// Debit/credit bank export
const sampleBankCSV = `Transaction Date,Reference,Debit Amount,Credit Amount,Transaction Ref1,Transaction Ref2,Transaction Ref3
05 Nov 2024,POS,12.50,,NTUC FAIRPRICE,SINGAPORE,
06 Nov 2024,ICT,,1500.00,SALARY,ACME PTE LTD,NOV
`

// Semicolon export with no recognisable header
const sampleSemicolon = `2024-01-02;Coffee;3.50
2024-01-03;Books;20.00
`

const sampleTSV = "Date\tDescription\tAmount\n2024-01-02\tCoffee\t3.50\n"

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		expected Kind
	}{
		{"csv", []byte(sampleBankCSV), KindDelimited},
		{"csv with bom", append([]byte{0xEF, 0xBB, 0xBF}, sampleSemicolon...), KindDelimited},
		{"pdf", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj"), KindPDF},
		{"xlsx", []byte("PK\x03\x04\x14\x00\x06\x00"), KindSpreadsheet},
		{"xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}, KindSpreadsheet},
		{"binary", []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, KindUnknown},
		{"nul bytes", []byte("a,b\x00,c"), KindUnknown},
		{"windows-1252 text", []byte("Date,Description,Amount\n2024-01-02,CAF\xc9 RIO,3.50\n"), KindDelimited},
		{"empty", nil, KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectKind(tc.content); got != tc.expected {
				t.Errorf("DetectKind = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestDetectKind_LongTextWithMultibyteAtCut(t *testing.T) {
	content := strings.Repeat("a", sniffSize-1) + "€,1.00\n"
	if got := DetectKind([]byte(content)); got != KindDelimited {
		t.Errorf("DetectKind = %q, want %q", got, KindDelimited)
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected rune
	}{
		{"header comma", sampleBankCSV, ','},
		{"no header semicolon", sampleSemicolon, ';'},
		{"tsv", sampleTSV, '\t'},
		{"single column", "hello\nworld\n", ','},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectDelimiter([]byte(tc.content)); got != tc.expected {
				t.Errorf("DetectDelimiter = %q, want %q", got, tc.expected)
			}
		})
	}
}
