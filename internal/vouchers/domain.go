// Package vouchers implements the voucher posting engine: validation,
// number allocation, and atomic writes of balanced ledger line sets.
package vouchers

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/ledger"
)

// Tolerance is the rounding slack allowed when comparing debit and credit
// totals.
var Tolerance = decimal.New(1, -2) // 0.01

var (
	// ErrTooFewLines indicates a voucher with less than two lines.
	ErrTooFewLines = errors.New("vouchers: voucher requires at least two lines")
	// ErrNegativeAmount indicates a negative debit or credit amount.
	ErrNegativeAmount = errors.New("vouchers: amounts must be non-negative")
)

// UnbalancedError reports the mismatched totals of a rejected voucher.
type UnbalancedError struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("vouchers: debit total %s does not equal credit total %s", e.Debit, e.Credit)
}

// InvalidAccountError reports an account that cannot receive postings.
type InvalidAccountError struct {
	HeadCode string
	Reason   string
}

func (e *InvalidAccountError) Error() string {
	return fmt.Sprintf("vouchers: account %s %s", e.HeadCode, e.Reason)
}

// AmountEntry names an account and a single-sided amount.
type AmountEntry struct {
	AccountHeadCode string
	Amount          decimal.Decimal
}

// JournalEntryInput is one verbatim line of a journal voucher.
type JournalEntryInput struct {
	AccountHeadCode string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
}

// DebitVoucherInput debits one account against multiple credit accounts.
type DebitVoucherInput struct {
	VoucherDate  time.Time
	DebitAccount string
	Amount       decimal.Decimal
	Credits      []AmountEntry
	Narration    string
}

// CreditVoucherInput credits one account against multiple debit accounts.
type CreditVoucherInput struct {
	VoucherDate   time.Time
	CreditAccount string
	Amount        decimal.Decimal
	Debits        []AmountEntry
	Narration     string
}

// ContraVoucherInput moves an amount between exactly two accounts.
type ContraVoucherInput struct {
	VoucherDate   time.Time
	DebitAccount  string
	CreditAccount string
	Amount        decimal.Decimal
	Narration     string
}

// JournalVoucherInput carries an arbitrary balanced entry list.
type JournalVoucherInput struct {
	VoucherDate time.Time
	Entries     []JournalEntryInput
	Narration   string
}

// posting is the normalised form every voucher shape expands into.
type posting struct {
	voucherType ledger.VoucherType
	voucherDate time.Time
	narration   string
	entries     []JournalEntryInput
}

func (in DebitVoucherInput) toPosting() posting {
	entries := make([]JournalEntryInput, 0, len(in.Credits)+1)
	entries = append(entries, JournalEntryInput{AccountHeadCode: in.DebitAccount, Debit: in.Amount})
	for _, c := range in.Credits {
		entries = append(entries, JournalEntryInput{AccountHeadCode: c.AccountHeadCode, Credit: c.Amount})
	}
	return posting{voucherType: ledger.TypeDebitVoucher, voucherDate: in.VoucherDate, narration: in.Narration, entries: entries}
}

func (in CreditVoucherInput) toPosting() posting {
	entries := make([]JournalEntryInput, 0, len(in.Debits)+1)
	for _, d := range in.Debits {
		entries = append(entries, JournalEntryInput{AccountHeadCode: d.AccountHeadCode, Debit: d.Amount})
	}
	entries = append(entries, JournalEntryInput{AccountHeadCode: in.CreditAccount, Credit: in.Amount})
	return posting{voucherType: ledger.TypeCreditVoucher, voucherDate: in.VoucherDate, narration: in.Narration, entries: entries}
}

func (in ContraVoucherInput) toPosting() posting {
	return posting{
		voucherType: ledger.TypeContraVoucher,
		voucherDate: in.VoucherDate,
		narration:   in.Narration,
		entries: []JournalEntryInput{
			{AccountHeadCode: in.DebitAccount, Debit: in.Amount},
			{AccountHeadCode: in.CreditAccount, Credit: in.Amount},
		},
	}
}

func (in JournalVoucherInput) toPosting() posting {
	return posting{voucherType: ledger.TypeJournalVoucher, voucherDate: in.VoucherDate, narration: in.Narration, entries: in.Entries}
}

// validate enforces the voucher-level balance invariant before any write.
func (p posting) validate() error {
	if p.voucherDate.IsZero() {
		return errors.New("vouchers: voucher date required")
	}
	if len(p.entries) < 2 {
		return ErrTooFewLines
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for idx, entry := range p.entries {
		if entry.AccountHeadCode == "" {
			return fmt.Errorf("vouchers: entry %d missing account", idx)
		}
		if entry.Debit.IsNegative() || entry.Credit.IsNegative() {
			return ErrNegativeAmount
		}
		debit = debit.Add(entry.Debit)
		credit = credit.Add(entry.Credit)
	}
	if debit.Sub(credit).Abs().GreaterThanOrEqual(Tolerance) {
		return &UnbalancedError{Debit: debit, Credit: credit}
	}
	return nil
}

var voucherPrefixes = map[ledger.VoucherType]string{
	ledger.TypeDebitVoucher:   "DV",
	ledger.TypeCreditVoucher:  "CV",
	ledger.TypeContraVoucher:  "CNV",
	ledger.TypeJournalVoucher: "JV",
}

// FormatVoucherNo renders an engine-allocated voucher number.
func FormatVoucherNo(voucherType ledger.VoucherType, seq int64) string {
	prefix, ok := voucherPrefixes[voucherType]
	if !ok {
		prefix = string(voucherType)
	}
	return fmt.Sprintf("%s-%06d", prefix, seq)
}
