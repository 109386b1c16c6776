package reports

import (
	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/ledger"
)

// BookRow is one cash or bank book line; receipts are debits into the
// account set, payments are credits out of it.
type BookRow struct {
	VoucherNo       string          `json:"voucher_no"`
	VoucherType     string          `json:"voucher_type"`
	VoucherDate     string          `json:"voucher_date"`
	AccountHeadCode string          `json:"account_head_code"`
	AccountHeadName string          `json:"account_head_name"`
	Narration       string          `json:"narration,omitempty"`
	Receipt         decimal.Decimal `json:"receipt"`
	Payment         decimal.Decimal `json:"payment"`
	Balance         decimal.Decimal `json:"balance"`
}

// Book is a running-balance statement over a set of accounts selected by
// the legacy name-substring heuristic.
type Book struct {
	Accounts       []string        `json:"accounts"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TotalReceipts  decimal.Decimal `json:"total_receipts"`
	TotalPayments  decimal.Decimal `json:"total_payments"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Rows           []BookRow       `json:"rows"`
}

// BuildBook walks the union of lines for the account set in
// (voucher_date, voucher_no) order, carrying one running balance across the
// whole set.
func BuildBook(accountCodes []string, accountNames map[string]string, opening decimal.Decimal, lines []ledger.Line) Book {
	if accountCodes == nil {
		accountCodes = []string{}
	}
	result := Book{
		Accounts:       accountCodes,
		OpeningBalance: opening,
		TotalReceipts:  decimal.Zero,
		TotalPayments:  decimal.Zero,
		ClosingBalance: opening,
		Rows:           []BookRow{},
	}
	balance := opening
	for _, line := range lines {
		balance = balance.Add(line.Debit).Sub(line.Credit)
		result.TotalReceipts = result.TotalReceipts.Add(line.Debit)
		result.TotalPayments = result.TotalPayments.Add(line.Credit)
		result.Rows = append(result.Rows, BookRow{
			VoucherNo:       line.VoucherNo,
			VoucherType:     string(line.VoucherType),
			VoucherDate:     line.VoucherDate.Format("2006-01-02"),
			AccountHeadCode: line.AccountHeadCode,
			AccountHeadName: accountNames[line.AccountHeadCode],
			Narration:       line.Narration,
			Receipt:         line.Debit,
			Payment:         line.Credit,
			Balance:         balance,
		})
	}
	result.ClosingBalance = balance
	return result
}
