package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's line in the trial balance. The closing
// balance lands in the debit column when positive and the credit column when
// negative, stored as an absolute value.
type TrialBalanceRow struct {
	HeadCode      string          `json:"head_code"`
	HeadName      string          `json:"head_name"`
	HeadType      string          `json:"head_type"`
	Opening       decimal.Decimal `json:"opening"`
	PeriodDebit   decimal.Decimal `json:"period_debit"`
	PeriodCredit  decimal.Decimal `json:"period_credit"`
	ClosingDebit  decimal.Decimal `json:"closing_debit"`
	ClosingCredit decimal.Decimal `json:"closing_credit"`
}

// TrialBalance is the assembled report.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Difference  decimal.Decimal   `json:"difference"`
	IsBalanced  bool              `json:"is_balanced"`
}

// BuildTrialBalance converts account balances into the trial balance.
// Accounts whose closing debit and credit are both zero are omitted. When
// withOpening is false the opening balance is excluded from the closing
// columns and reported as zero.
func BuildTrialBalance(accounts []AccountBalance, withOpening bool) TrialBalance {
	result := TrialBalance{
		Rows:        []TrialBalanceRow{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, acc := range accounts {
		opening := acc.Opening
		if !withOpening {
			opening = decimal.Zero
		}
		closing := opening.Add(acc.Net())
		row := TrialBalanceRow{
			HeadCode:      acc.HeadCode,
			HeadName:      acc.HeadName,
			HeadType:      acc.HeadType,
			Opening:       opening,
			PeriodDebit:   acc.Debit,
			PeriodCredit:  acc.Credit,
			ClosingDebit:  decimal.Zero,
			ClosingCredit: decimal.Zero,
		}
		if closing.IsPositive() {
			row.ClosingDebit = closing
		} else if closing.IsNegative() {
			row.ClosingCredit = closing.Abs()
		}
		if row.ClosingDebit.IsZero() && row.ClosingCredit.IsZero() {
			continue
		}
		result.Rows = append(result.Rows, row)
		result.TotalDebit = result.TotalDebit.Add(row.ClosingDebit)
		result.TotalCredit = result.TotalCredit.Add(row.ClosingCredit)
	}

	sort.Slice(result.Rows, func(i, j int) bool {
		return result.Rows[i].HeadCode < result.Rows[j].HeadCode
	})
	result.Difference = result.TotalDebit.Sub(result.TotalCredit).Abs()
	result.IsBalanced = result.Difference.LessThan(Tolerance)
	return result
}
