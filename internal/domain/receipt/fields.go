// Package receipt resolves receipt fields from the key/value bag returned by
// an expense document analyzer.
package receipt

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/normalizer"
)

// Field is a receipt attribute resolved from aliases.
type Field string

const (
	FieldTotal     Field = "total"
	FieldDate      Field = "date"
	FieldReceiptID Field = "receipt_id"
	FieldVendor    Field = "vendor"
	FieldCurrency  Field = "currency"
)

// DefaultAliases lists analyzer type names per field, highest priority first.
var DefaultAliases = map[Field][]string{
	FieldTotal:     {"TOTAL", "GRAND_TOTAL", "AMOUNT_PAID", "AMOUNT_DUE", "SUBTOTAL"},
	FieldDate:      {"INVOICE_RECEIPT_DATE", "DATE", "TRANSACTION_DATE", "ORDER_DATE"},
	FieldReceiptID: {"INVOICE_RECEIPT_ID", "RECEIPT_ID", "INVOICE_NUMBER", "RECEIPT_NUMBER", "ORDER_ID"},
	FieldVendor:    {"VENDOR_NAME", "NAME", "MERCHANT_NAME", "VENDOR", "SUPPLIER_NAME"},
	FieldCurrency:  {"CURRENCY", "CURRENCY_CODE"},
}

var (
	reAmount     = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
	reCurrCode   = regexp.MustCompile(`\b[A-Z]{3}\b`)
	reShortDate  = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})$`)
	currencySyms = []struct{ sym, code string }{
		{"€", "EUR"},
		{"£", "GBP"},
		{"$", "USD"},
	}
)

// Fields is the best-effort result for one receipt. Empty strings and nil
// pointers mean the field was absent.
type Fields struct {
	Vendor     string           `json:"vendor,omitempty"`
	ReceiptID  string           `json:"receipt_id,omitempty"`
	Date       string           `json:"date,omitempty"` // YYYY-MM-DD when parsed, the raw text otherwise
	ParsedDate *time.Time       `json:"-"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	Currency   string           `json:"currency,omitempty"`
}

// Extractor resolves receipt fields. It is safe for concurrent use.
type Extractor struct {
	aliases map[Field][]string
	now     func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used to resolve dates without a year.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithAliases replaces the alias list of one field.
func WithAliases(field Field, aliases ...string) Option {
	return func(e *Extractor) { e.aliases[field] = slices.Clone(aliases) }
}

// NewExtractor creates an extractor with the default aliases.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		aliases: make(map[Field][]string, len(DefaultAliases)),
		now:     time.Now,
	}
	for f, a := range DefaultAliases {
		e.aliases[f] = slices.Clone(a)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails: anything it cannot resolve is left empty.
func (e *Extractor) Extract(bag map[string]string) Fields {
	upper := make(map[string]string, len(bag))
	for k, v := range bag {
		upper[strings.ToUpper(strings.TrimSpace(k))] = v
	}

	var out Fields
	out.Vendor = normalizer.CleanDescription(e.lookup(upper, FieldVendor))
	out.ReceiptID = strings.TrimSpace(e.lookup(upper, FieldReceiptID))

	totalRaw := e.lookup(upper, FieldTotal)
	out.Total = parseTotal(totalRaw)

	if raw := strings.TrimSpace(e.lookup(upper, FieldDate)); raw != "" {
		if t, ok := e.parseDate(raw); ok {
			out.ParsedDate = &t
			out.Date = t.Format("2006-01-02")
		} else {
			out.Date = raw
		}
	}

	out.Currency = normalizeCurrency(e.lookup(upper, FieldCurrency))
	if out.Currency == "" {
		out.Currency = inferCurrency(totalRaw)
	}
	return out
}

// lookup returns the first non-empty value among the field's aliases.
func (e *Extractor) lookup(bag map[string]string, f Field) string {
	for _, alias := range e.aliases[f] {
		if v, ok := bag[strings.ToUpper(alias)]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseTotal(raw string) *decimal.Decimal {
	m := reAmount.FindString(raw)
	if m == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return nil
	}
	return &d
}

// parseDate prefers the most recent past day for year-less dates ("DD Mon",
// "DD/MM", "MM/DD") and hands everything else to dateparse.
func (e *Extractor) parseDate(raw string) (time.Time, bool) {
	now := e.now()
	if t, err := normalizer.NormalizeDate(raw, normalizer.DatePatternDayMonth, now); err == nil {
		return t, true
	}
	if m := reShortDate.FindStringSubmatch(raw); m != nil {
		return shortDate(m[1], m[2], now)
	}
	t, err := dateparse.ParseIn(raw, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	if t.Year() == 0 {
		// month and day only: fall back on the year-less rule
		short := t.Format("2 Jan")
		if rt, err := normalizer.NormalizeDate(short, normalizer.DatePatternDayMonth, now); err == nil {
			return rt, true
		}
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// shortDate resolves a numeric day/month pair. Day first unless only the
// month-first reading is a valid date.
func shortDate(a, b string, now time.Time) (time.Time, bool) {
	x, _ := strconv.Atoi(a)
	y, _ := strconv.Atoi(b)
	day, month := x, y
	if month > 12 {
		day, month = y, x
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t, err := normalizer.NormalizeDate(fmt.Sprintf("%d %s", day, time.Month(month).String()[:3]), normalizer.DatePatternDayMonth, now)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func normalizeCurrency(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, s := range currencySyms {
		if raw == s.sym {
			return s.code
		}
	}
	if code := reCurrCode.FindString(strings.ToUpper(raw)); code != "" {
		return code
	}
	return ""
}

func inferCurrency(totalRaw string) string {
	for _, s := range currencySyms {
		if strings.Contains(totalRaw, s.sym) {
			return s.code
		}
	}
	return reCurrCode.FindString(totalRaw)
}
