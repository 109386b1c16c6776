package vouchers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/ledger"
)

// AmountEntryRequest names an account and a single-sided amount.
type AmountEntryRequest struct {
	AccountHeadCode string          `json:"account_head_code" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
}

// DebitVoucherRequest is the wire shape for a debit voucher.
type DebitVoucherRequest struct {
	VoucherDate  string               `json:"voucher_date" validate:"required"`
	DebitAccount string               `json:"debit_account" validate:"required"`
	Amount       decimal.Decimal      `json:"amount" validate:"required"`
	Credits      []AmountEntryRequest `json:"credits" validate:"required,min=1,dive"`
	Narration    string               `json:"narration,omitempty"`
}

// CreditVoucherRequest is the wire shape for a credit voucher.
type CreditVoucherRequest struct {
	VoucherDate   string               `json:"voucher_date" validate:"required"`
	CreditAccount string               `json:"credit_account" validate:"required"`
	Amount        decimal.Decimal      `json:"amount" validate:"required"`
	Debits        []AmountEntryRequest `json:"debits" validate:"required,min=1,dive"`
	Narration     string               `json:"narration,omitempty"`
}

// ContraVoucherRequest is the wire shape for a contra voucher.
type ContraVoucherRequest struct {
	VoucherDate   string          `json:"voucher_date" validate:"required"`
	DebitAccount  string          `json:"debit_account" validate:"required"`
	CreditAccount string          `json:"credit_account" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Narration     string          `json:"narration,omitempty"`
}

// JournalEntryRequest is one verbatim journal voucher line.
type JournalEntryRequest struct {
	AccountHeadCode string          `json:"account_head_code" validate:"required"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
}

// JournalVoucherRequest is the wire shape for a journal voucher.
type JournalVoucherRequest struct {
	VoucherDate string                `json:"voucher_date" validate:"required"`
	Entries     []JournalEntryRequest `json:"entries" validate:"required,min=2,dive"`
	Narration   string                `json:"narration,omitempty"`
}

// UpdateVoucherRequest carries whole-set fields for an unapproved voucher.
type UpdateVoucherRequest struct {
	VoucherDate *string `json:"voucher_date,omitempty"`
	Narration   *string `json:"narration,omitempty"`
}

// LineView is the JSON shape of one ledger line.
type LineView struct {
	ID              int64           `json:"id"`
	VoucherNo       string          `json:"voucher_no"`
	VoucherType     string          `json:"voucher_type"`
	VoucherDate     string          `json:"voucher_date"`
	AccountHeadCode string          `json:"account_head_code"`
	Narration       string          `json:"narration,omitempty"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	IsPosted        bool            `json:"is_posted"`
	IsApproved      bool            `json:"is_approved"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toLineViews(lines []ledger.Line) []LineView {
	out := make([]LineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineView{
			ID:              l.ID,
			VoucherNo:       l.VoucherNo,
			VoucherType:     string(l.VoucherType),
			VoucherDate:     l.VoucherDate.Format("2006-01-02"),
			AccountHeadCode: l.AccountHeadCode,
			Narration:       l.Narration,
			Debit:           l.Debit,
			Credit:          l.Credit,
			IsPosted:        l.IsPosted,
			IsApproved:      l.IsApproved,
			CreatedAt:       l.CreatedAt,
		})
	}
	return out
}

func toAmountEntries(entries []AmountEntryRequest) []AmountEntry {
	out := make([]AmountEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, AmountEntry{AccountHeadCode: e.AccountHeadCode, Amount: e.Amount})
	}
	return out
}

func toJournalEntries(entries []JournalEntryRequest) []JournalEntryInput {
	out := make([]JournalEntryInput, 0, len(entries))
	for _, e := range entries {
		out = append(out, JournalEntryInput{AccountHeadCode: e.AccountHeadCode, Debit: e.Debit, Credit: e.Credit})
	}
	return out
}
