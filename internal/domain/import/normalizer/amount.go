package normalizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// SignRule tells how a bank encodes money in versus money out.
type SignRule string

const (
	// SignRuleCreditSuffix marks credits with a trailing token such as "CR";
	// unmarked amounts are debits.
	SignRuleCreditSuffix SignRule = "credit-suffix-marker"
	// SignRuleDebitCreditColumns keeps debits and credits in separate columns.
	SignRuleDebitCreditColumns SignRule = "separate-debit-credit-columns"
	// SignRulePositiveIsDebit prints money spent as a positive number.
	SignRulePositiveIsDebit SignRule = "positive-is-debit"
)

// DefaultCreditMarker is used when a format does not name its own marker.
const DefaultCreditMarker = "CR"

// Valid reports whether r is a known sign rule.
func (r SignRule) Valid() bool {
	switch r {
	case SignRuleCreditSuffix, SignRuleDebitCreditColumns, SignRulePositiveIsDebit:
		return true
	}
	return false
}

// NormalizeAmount converts a single raw amount into a signed decimal where
// negative means money spent. On malformed input it returns zero together
// with an error wrapping ErrMalformedAmount.
//
// SignRuleDebitCreditColumns needs two fields; use NormalizeDebitCredit.
func NormalizeAmount(raw string, rule SignRule, marker string) (decimal.Decimal, error) {
	switch rule {
	case SignRuleCreditSuffix:
		if marker == "" {
			marker = DefaultCreditMarker
		}
		cleaned, credit := cutFold(raw, marker)
		if strings.TrimSpace(cleaned) == "" {
			if credit {
				return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
			}
			return decimal.Zero, nil
		}
		val, err := parseDecimal(cleaned)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
		}
		if credit {
			return val.Abs(), nil
		}
		return val.Abs().Neg(), nil

	case SignRulePositiveIsDebit:
		if strings.TrimSpace(raw) == "" {
			return decimal.Zero, nil
		}
		val, err := parseDecimal(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
		}
		return val.Neg(), nil

	case SignRuleDebitCreditColumns:
		return NormalizeDebitCredit(raw, "")
	}

	return decimal.Zero, fmt.Errorf("%w: unknown sign rule %q", ErrMalformedAmount, rule)
}

// NormalizeDebitCredit merges separate debit and credit columns into a single
// signed amount: credit - debit. A blank field counts as zero.
func NormalizeDebitCredit(debitStr, creditStr string) (decimal.Decimal, error) {
	debit, err := parseOptional(debitStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: debit %q", ErrMalformedAmount, debitStr)
	}
	credit, err := parseOptional(creditStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: credit %q", ErrMalformedAmount, creditStr)
	}
	return credit.Sub(debit), nil
}

func parseOptional(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return parseDecimal(raw)
}

// parseDecimal strips whitespace and thousands separators before parsing.
func parseDecimal(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' {
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return decimal.Zero, ErrMalformedAmount
	}
	return decimal.NewFromString(cleaned)
}

// cutFold removes every case-insensitive occurrence of token from s and
// reports whether any was found. token must be ASCII.
func cutFold(s, token string) (string, bool) {
	if token == "" {
		return s, false
	}
	upper := strings.ToUpper(s)
	token = strings.ToUpper(token)
	if len(upper) != len(s) {
		// non-ASCII case mapping changed byte offsets; fall back to exact match
		upper = s
	}

	var b strings.Builder
	found := false
	for {
		i := strings.Index(upper, token)
		if i < 0 {
			b.WriteString(s)
			break
		}
		found = true
		b.WriteString(s[:i])
		s = s[i+len(token):]
		upper = upper[i+len(token):]
	}
	return b.String(), found
}
