// Package txfilter implements the transaction filter (C2): rejecting
// aggregator transactions that are pending, non-debit, or otherwise
// ineligible.
package txfilter

import (
	"regexp"

	"github.com/rounduppay/core/pkg/model"
)

var dateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDate reports whether date is a syntactically valid YYYY-MM-DD
// string. It does not validate calendar correctness (e.g. "2024-02-30"
// passes) since the aggregator is trusted to emit real dates; the filter
// only guards against malformed or missing values.
func ValidDate(date string) bool {
	return dateRE.MatchString(date)
}

// Eligible reports whether a single raw transaction survives the filter:
// not pending, a positive (debit) amount, a syntactically valid date, and
// a non-empty id.
func Eligible(tx model.RawTransaction) bool {
	return !tx.Pending && tx.Amount.IsPositive() && ValidDate(tx.Date) && tx.ID != ""
}

// Filter keeps only the eligible transactions, preserving input order.
// Filter(T1 ++ T2) == Filter(T1) ++ Filter(T2) for any split of the input,
// since each transaction is judged independently of its neighbors.
func Filter(txs []model.RawTransaction) []model.RawTransaction {
	out := make([]model.RawTransaction, 0, len(txs))
	for _, tx := range txs {
		if Eligible(tx) {
			out = append(out, tx)
		}
	}
	return out
}
