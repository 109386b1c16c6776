// Package reports derives financial statements by replaying ledger history.
// Every report composes the same primitive: opening balance before the
// window, period movement inside it, closing = opening + movement.
package reports

import (
	"github.com/shopspring/decimal"
)

// Tolerance is the rounding slack used by every self-consistency check.
var Tolerance = decimal.New(1, -2) // 0.01

// AccountBalance models an account with aggregated balances for a window.
// Opening is the net debit-minus-credit balance strictly before the window;
// Debit and Credit are the period movement sums.
type AccountBalance struct {
	HeadCode string
	HeadName string
	HeadType string
	Opening  decimal.Decimal
	Debit    decimal.Decimal
	Credit   decimal.Decimal
}

// Closing computes the closing balance for the account.
func (a AccountBalance) Closing() decimal.Decimal {
	return a.Opening.Add(a.Debit).Sub(a.Credit)
}

// Net returns the period movement without the opening balance.
func (a AccountBalance) Net() decimal.Decimal {
	return a.Debit.Sub(a.Credit)
}

// SumClosing totals closing balances across a set of accounts.
func SumClosing(accounts []AccountBalance) decimal.Decimal {
	total := decimal.Zero
	for _, acc := range accounts {
		total = total.Add(acc.Closing())
	}
	return total
}
