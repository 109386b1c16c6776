package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ProfitAndLossRow summarises one income or expense account for the period.
type ProfitAndLossRow struct {
	HeadCode string          `json:"head_code"`
	HeadName string          `json:"head_name"`
	Amount   decimal.Decimal `json:"amount"`
}

// ProfitAndLossSection groups accounts by nature.
type ProfitAndLossSection struct {
	Label    string             `json:"label"`
	Accounts []ProfitAndLossRow `json:"accounts"`
	Total    decimal.Decimal    `json:"total"`
}

// ProfitAndLoss contains the structured output for the report.
type ProfitAndLoss struct {
	Income   ProfitAndLossSection `json:"income"`
	Expense  ProfitAndLossSection `json:"expense"`
	Net      decimal.Decimal      `json:"net"`
	IsProfit bool                 `json:"is_profit"`
}

// BuildProfitAndLoss aggregates period movements into income and expense
// sections. Income accounts carry a natural credit balance, so their amount
// is credit minus debit.
func BuildProfitAndLoss(accounts []AccountBalance) ProfitAndLoss {
	income := ProfitAndLossSection{Label: "Income", Accounts: []ProfitAndLossRow{}, Total: decimal.Zero}
	expense := ProfitAndLossSection{Label: "Expense", Accounts: []ProfitAndLossRow{}, Total: decimal.Zero}

	for _, acc := range accounts {
		switch acc.HeadType {
		case "Income":
			row := ProfitAndLossRow{HeadCode: acc.HeadCode, HeadName: acc.HeadName, Amount: acc.Net().Neg()}
			income.Accounts = append(income.Accounts, row)
			income.Total = income.Total.Add(row.Amount)
		case "Expense":
			row := ProfitAndLossRow{HeadCode: acc.HeadCode, HeadName: acc.HeadName, Amount: acc.Net()}
			expense.Accounts = append(expense.Accounts, row)
			expense.Total = expense.Total.Add(row.Amount)
		}
	}

	sort.Slice(income.Accounts, func(i, j int) bool { return income.Accounts[i].HeadCode < income.Accounts[j].HeadCode })
	sort.Slice(expense.Accounts, func(i, j int) bool { return expense.Accounts[i].HeadCode < expense.Accounts[j].HeadCode })

	net := income.Total.Sub(expense.Total)
	return ProfitAndLoss{
		Income:   income,
		Expense:  expense,
		Net:      net,
		IsProfit: net.IsPositive(),
	}
}
