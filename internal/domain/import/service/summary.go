package service

import "github.com/shopspring/decimal"

// Summary totals money out and money in separately. Combining them into a
// "total spent" figure is left to reporting code.
type Summary struct {
	Count    int             `json:"count"`
	Debited  decimal.Decimal `json:"debited"`  // sum of money out, as a positive number
	Credited decimal.Decimal `json:"credited"` // sum of money in
}

// Summarize totals a list of normalized transactions.
func Summarize(txs []NormalizedTransaction) Summary {
	s := Summary{Count: len(txs), Debited: decimal.Zero, Credited: decimal.Zero}
	for _, tx := range txs {
		if tx.Amount.IsNegative() {
			s.Debited = s.Debited.Add(tx.Amount.Neg())
		} else {
			s.Credited = s.Credited.Add(tx.Amount)
		}
	}
	return s
}
