package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceSheetRow summarises one account as of the report date.
type BalanceSheetRow struct {
	HeadCode string          `json:"head_code"`
	HeadName string          `json:"head_name"`
	Balance  decimal.Decimal `json:"balance"`
}

// BalanceSheetSection contains the accounts and total for a classification.
type BalanceSheetSection struct {
	Label    string            `json:"label"`
	Accounts []BalanceSheetRow `json:"accounts"`
	Total    decimal.Decimal   `json:"total"`
}

// BalanceSheet is the structured response for the balance sheet report.
// Equity is derived as assets minus liabilities; IsBalanced is part of the
// wire contract even though it holds by construction.
type BalanceSheet struct {
	Assets      BalanceSheetSection `json:"assets"`
	Liabilities BalanceSheetSection `json:"liabilities"`
	Equity      decimal.Decimal     `json:"equity"`
	IsBalanced  bool                `json:"is_balanced"`
}

// BuildBalanceSheet aggregates closing balances into asset and liability
// sections. Liability accounts carry a natural credit balance, so their
// reported balance is the negated closing.
func BuildBalanceSheet(accounts []AccountBalance) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets", Accounts: []BalanceSheetRow{}, Total: decimal.Zero}
	liabilities := BalanceSheetSection{Label: "Liabilities", Accounts: []BalanceSheetRow{}, Total: decimal.Zero}

	for _, acc := range accounts {
		switch acc.HeadType {
		case "Asset":
			row := BalanceSheetRow{HeadCode: acc.HeadCode, HeadName: acc.HeadName, Balance: acc.Closing()}
			assets.Accounts = append(assets.Accounts, row)
			assets.Total = assets.Total.Add(row.Balance)
		case "Liability":
			row := BalanceSheetRow{HeadCode: acc.HeadCode, HeadName: acc.HeadName, Balance: acc.Closing().Neg()}
			liabilities.Accounts = append(liabilities.Accounts, row)
			liabilities.Total = liabilities.Total.Add(row.Balance)
		}
	}

	sort.Slice(assets.Accounts, func(i, j int) bool { return assets.Accounts[i].HeadCode < assets.Accounts[j].HeadCode })
	sort.Slice(liabilities.Accounts, func(i, j int) bool { return liabilities.Accounts[i].HeadCode < liabilities.Accounts[j].HeadCode })

	equity := assets.Total.Sub(liabilities.Total)
	diff := assets.Total.Sub(liabilities.Total.Add(equity)).Abs()
	return BalanceSheet{
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      equity,
		IsBalanced:  diff.LessThan(Tolerance),
	}
}
