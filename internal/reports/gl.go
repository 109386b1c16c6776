package reports

import (
	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/ledger"
)

// GeneralLedgerRow is one ledger line with the cumulative balance after it.
type GeneralLedgerRow struct {
	VoucherNo   string          `json:"voucher_no"`
	VoucherType string          `json:"voucher_type"`
	VoucherDate string          `json:"voucher_date"`
	Narration   string          `json:"narration,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// GeneralLedger is the running-balance statement for one account.
type GeneralLedger struct {
	HeadCode       string             `json:"head_code"`
	HeadName       string             `json:"head_name"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
	Rows           []GeneralLedgerRow `json:"rows"`
}

// BuildGeneralLedger walks posted lines in (voucher_date, voucher_no) order,
// emitting one row per line with the cumulative balance after that line.
func BuildGeneralLedger(headCode, headName string, opening decimal.Decimal, lines []ledger.Line) GeneralLedger {
	result := GeneralLedger{
		HeadCode:       headCode,
		HeadName:       headName,
		OpeningBalance: opening,
		ClosingBalance: opening,
		Rows:           []GeneralLedgerRow{},
	}
	balance := opening
	for _, line := range lines {
		balance = balance.Add(line.Debit).Sub(line.Credit)
		result.Rows = append(result.Rows, GeneralLedgerRow{
			VoucherNo:   line.VoucherNo,
			VoucherType: string(line.VoucherType),
			VoucherDate: line.VoucherDate.Format("2006-01-02"),
			Narration:   line.Narration,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Balance:     balance,
		})
	}
	result.ClosingBalance = balance
	return result
}
