package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsParsed tracks parse calls by format and outcome
	DocumentsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statement_documents_parsed_total",
			Help: "Total number of statement documents parsed",
		},
		[]string{"format", "outcome"},
	)

	// RowsSkipped tracks rows dropped with a diagnostic
	RowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statement_rows_skipped_total",
			Help: "Total number of statement rows skipped during parsing",
		},
		[]string{"format", "reason"},
	)

	// TransactionsNormalized tracks transactions produced
	TransactionsNormalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statement_transactions_normalized_total",
			Help: "Total number of normalized transactions produced",
		},
		[]string{"format"},
	)

	// ParseDuration tracks parse duration
	ParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statement_parse_duration_seconds",
			Help:    "Statement parse duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
)

// ObserveParse records the outcome of one parse call.
func ObserveParse(format, outcome string, started time.Time, transactions int) {
	DocumentsParsed.WithLabelValues(format, outcome).Inc()
	ParseDuration.WithLabelValues(format).Observe(time.Since(started).Seconds())
	if transactions > 0 {
		TransactionsNormalized.WithLabelValues(format).Add(float64(transactions))
	}
}
