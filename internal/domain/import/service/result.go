package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/tabular"
)

// Document is one uploaded file to parse.
type Document struct {
	FormatID int
	// Kind is the kind declared by the uploader. Empty means "as the format says".
	Kind    tabular.Kind
	Content []byte
}

// NormalizedTransaction is the canonical output unit. Amount is negative for
// money spent and positive for money received, whatever the bank prints.
type NormalizedTransaction struct {
	DocumentID   uuid.UUID       `json:"document_id"`
	SourceFormat int             `json:"source_format"`
	Row          int             `json:"row"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Description2 string          `json:"description_2,omitempty"`
}

// DiagnosticKind classifies a non-fatal parse anomaly.
type DiagnosticKind string

const (
	DiagnosticRowSkipped   DiagnosticKind = "row-skipped"
	DiagnosticSheetSkipped DiagnosticKind = "sheet-skipped"
)

// Diagnostic reasons.
const (
	ReasonUnparseableDate     = normalizer.ReasonUnparseableDate
	ReasonMalformedAmount     = "malformed-amount"
	ReasonInsufficientColumns = "insufficient-columns"
	ReasonUnknownTable        = "unknown-table"
)

// Diagnostic records a row, line or sheet left out of the result.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Row    int            `json:"row,omitempty"`
	Table  string         `json:"table,omitempty"`
	Reason string         `json:"reason"`
	Raw    string         `json:"raw,omitempty"`
}

// ParseResult is everything recovered from one document.
type ParseResult struct {
	DocumentID   uuid.UUID               `json:"document_id"`
	FormatID     int                     `json:"format_id"`
	FormatName   string                  `json:"format_name"`
	Transactions []NormalizedTransaction `json:"transactions"`
	Diagnostics  []Diagnostic            `json:"diagnostics"`
}

func (r *ParseResult) skip(row int, table, reason, raw string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Kind:   DiagnosticRowSkipped,
		Row:    row,
		Table:  table,
		Reason: reason,
		Raw:    raw,
	})
}
