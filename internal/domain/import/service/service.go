// Package service provides the statement parsing orchestration logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/formats"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/pdftext"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/tabular"
	"github.com/FACorreiaa/statement-normalizer/pkg/observability"
)

// Parser turns uploaded statements into normalized transactions. It holds no
// mutable state and is safe for concurrent use.
type Parser struct {
	registry *formats.Registry
	logger   *slog.Logger
	now      func() time.Time
	tracer   trace.Tracer
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the clock used to resolve year-less dates.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithTracer sets the tracer used for parse spans.
func WithTracer(tr trace.Tracer) Option {
	return func(p *Parser) { p.tracer = tr }
}

// NewParser creates a parser over a format registry
func NewParser(registry *formats.Registry, logger *slog.Logger, opts ...Option) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tracer = observability.Tracer(p.tracer)
	return p
}

// Formats lists the registered formats.
func (p *Parser) Formats() []formats.FormatConfig {
	return p.registry.List()
}

// ParseDocument parses one document. Unknown formats and unreadable content
// return a *Failure and no result; bad rows become diagnostics.
func (p *Parser) ParseDocument(ctx context.Context, doc Document) (result *ParseResult, err error) {
	started := time.Now()
	ctx, finish := observability.StartSpan(ctx, p.tracer, "statement.ParseDocument",
		attribute.Int("format.id", doc.FormatID),
		attribute.Int("document.bytes", len(doc.Content)),
	)
	defer func() { finish(err) }()

	l := p.logger.With(slog.String("method", "ParseDocument"), slog.Int("format_id", doc.FormatID))

	cfg, ok := p.registry.Lookup(doc.FormatID)
	if !ok {
		observability.ObserveParse("unknown", string(FailureUnsupportedFormat), started, 0)
		l.WarnContext(ctx, "unsupported format")
		return nil, &Failure{Kind: FailureUnsupportedFormat, FormatID: doc.FormatID}
	}
	label := strconv.Itoa(cfg.ID)

	result, err = p.parse(cfg, doc)
	if err != nil {
		observability.ObserveParse(label, string(FailureUnreadableDocument), started, 0)
		l.WarnContext(ctx, "unreadable document", slog.String("format", cfg.Name), slog.Any("error", err))
		return nil, err
	}

	for _, d := range result.Diagnostics {
		observability.RowsSkipped.WithLabelValues(label, d.Reason).Inc()
	}
	observability.ObserveParse(label, "ok", started, len(result.Transactions))

	l.InfoContext(ctx, "document parsed",
		slog.String("document_id", result.DocumentID.String()),
		slog.String("format", cfg.Name),
		slog.Int("transactions", len(result.Transactions)),
		slog.Int("diagnostics", len(result.Diagnostics)),
	)
	return result, nil
}

func (p *Parser) parse(cfg formats.FormatConfig, doc Document) (*ParseResult, error) {
	want := cfg.Kind()
	if doc.Kind != tabular.KindUnknown && doc.Kind != want {
		return nil, unreadable(cfg.ID, fmt.Errorf("declared kind %q does not match format kind %q", doc.Kind, want))
	}
	if got := tabular.DetectKind(doc.Content); got != want {
		return nil, unreadable(cfg.ID, fmt.Errorf("content looks like %q, format expects %q", kindName(got), want))
	}

	c := &collector{
		cfg: cfg,
		now: p.now(),
		res: &ParseResult{
			DocumentID:   uuid.New(),
			FormatID:     cfg.ID,
			FormatName:   cfg.Name,
			Transactions: []NormalizedTransaction{},
			Diagnostics:  []Diagnostic{},
		},
	}

	var err error
	switch cfg.Strategy {
	case formats.StrategyDelimited:
		err = c.delimited(doc.Content)
	case formats.StrategySpreadsheet:
		err = c.spreadsheet(doc.Content)
	case formats.StrategyPDFLines:
		err = c.pdfLines(doc.Content)
	default:
		err = fmt.Errorf("no extractor for strategy %q", cfg.Strategy)
	}
	if err != nil {
		return nil, unreadable(cfg.ID, err)
	}
	return c.res, nil
}

func kindName(k tabular.Kind) string {
	if k == tabular.KindUnknown {
		return "binary or empty"
	}
	return string(k)
}

// collector accumulates the result of one parse call.
type collector struct {
	cfg formats.FormatConfig
	now time.Time
	res *ParseResult
}

func (c *collector) delimited(content []byte) error {
	records, err := tabular.ReadDelimited(content, c.cfg.Delimiter)
	if err != nil {
		return err
	}
	required := c.cfg.RequiredColumns()
	for row := range tabular.Rows(records, c.cfg.HeaderSkip) {
		if len(row.Fields) < required {
			c.res.skip(row.Number, "", ReasonInsufficientColumns, strings.Join(row.Fields, ","))
			continue
		}
		c.addRow("", c.cfg.Columns, row)
	}
	return nil
}

func (c *collector) spreadsheet(content []byte) error {
	wb, err := tabular.OpenWorkbook(content)
	if err != nil {
		return err
	}
	for _, sheet := range wb.Sheets {
		layout, ok := c.cfg.Table(sheet.Name)
		if !ok {
			c.res.Diagnostics = append(c.res.Diagnostics, Diagnostic{
				Kind:   DiagnosticSheetSkipped,
				Table:  sheet.Name,
				Reason: ReasonUnknownTable,
			})
			continue
		}
		width := layout.Width()
		for row := range tabular.Rows(sheet.Records, layout.HeaderSkip) {
			if len(row.Fields) < layout.MinColumns {
				c.res.skip(row.Number, sheet.Name, ReasonInsufficientColumns, strings.Join(row.Fields, ","))
				continue
			}
			if len(row.Fields) < width {
				padded := make([]string, width)
				copy(padded, row.Fields)
				row.Fields = padded
			}
			c.addRow(sheet.Name, layout.Columns, row)
		}
	}
	return nil
}

func (c *collector) pdfLines(content []byte) error {
	pages, err := pdftext.ExtractPages(content)
	if err != nil {
		return err
	}
	matcher := c.cfg.LineMatcher()
	if matcher == nil {
		return fmt.Errorf("format %d has no compiled line pattern", c.cfg.ID)
	}

	for _, m := range matcher.ExtractTransactionLines(pages) {
		date, err := normalizer.NormalizeDateAny(m.Date, c.cfg.DatePatterns, c.now)
		if err != nil {
			c.res.skip(m.Line, "", ReasonUnparseableDate, m.Text)
			continue
		}

		// a captured credit marker always means money in
		var amount decimal.Decimal
		if m.Credit != "" {
			amount, err = normalizer.NormalizeAmount(m.Amount+" "+c.cfg.Marker(), normalizer.SignRuleCreditSuffix, c.cfg.Marker())
		} else {
			amount, err = normalizer.NormalizeAmount(m.Amount, c.cfg.SignRule, c.cfg.Marker())
		}
		if err != nil {
			c.res.skip(m.Line, "", ReasonMalformedAmount, m.Text)
			continue
		}

		c.add(NormalizedTransaction{
			Row:         m.Line,
			Date:        date,
			Amount:      amount,
			Description: c.describe(normalizer.CleanDescription(m.Description), amount),
		})
	}
	return nil
}

// addRow normalizes one tabular row, or records why it was skipped.
func (c *collector) addRow(table string, cols formats.Columns, row tabular.RawRow) {
	dateRaw, _ := row.Field(cols.Date)
	date, err := normalizer.NormalizeDateAny(dateRaw, c.cfg.DatePatterns, c.now)
	if err != nil {
		c.res.skip(row.Number, table, ReasonUnparseableDate, dateRaw)
		return
	}

	var amount decimal.Decimal
	var amountRaw string
	if c.cfg.SignRule == normalizer.SignRuleDebitCreditColumns {
		debit, _ := row.Field(cols.Debit)
		credit, _ := row.Field(cols.Credit)
		amountRaw = debit + "|" + credit
		amount, err = normalizer.NormalizeDebitCredit(debit, credit)
	} else {
		amountRaw, _ = row.Field(cols.Amount)
		amount, err = normalizer.NormalizeAmount(amountRaw, c.cfg.SignRule, c.cfg.Marker())
	}
	if err != nil {
		c.res.skip(row.Number, table, ReasonMalformedAmount, amountRaw)
		return
	}

	parts := make([]string, 0, len(cols.Description))
	for _, i := range cols.Description {
		v, _ := row.Field(i)
		parts = append(parts, v)
	}
	var desc2 string
	if cols.Description2 != formats.NoColumn {
		v, _ := row.Field(cols.Description2)
		desc2 = normalizer.CleanDescription(v)
	}

	c.add(NormalizedTransaction{
		Row:          row.Number,
		Date:         date,
		Amount:       amount,
		Description:  c.describe(normalizer.JoinDescription(parts...), amount),
		Description2: desc2,
	})
}

func (c *collector) describe(desc string, amount decimal.Decimal) string {
	if desc != "" || !c.cfg.DescriptionFallback {
		return desc
	}
	if amount.IsPositive() {
		return "credit"
	}
	return "debit"
}

func (c *collector) add(tx NormalizedTransaction) {
	tx.DocumentID = c.res.DocumentID
	tx.SourceFormat = c.cfg.ID
	c.res.Transactions = append(c.res.Transactions, tx)
}
