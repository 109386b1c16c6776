// Package ledger stores the double-entry journal of posted voucher lines.
package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType tags the origin of a line set. It is an open string tag, not a
// closed enum: collaborator modules mint their own types and reports only
// filter by exact match.
type VoucherType string

// Types minted by the voucher posting engine.
const (
	TypeDebitVoucher   VoucherType = "DebitVoucher"
	TypeCreditVoucher  VoucherType = "CreditVoucher"
	TypeContraVoucher  VoucherType = "ContraVoucher"
	TypeJournalVoucher VoucherType = "JournalVoucher"
)

// Line is one side of a balanced voucher. Debit and credit are non-negative;
// the net effect of a line is always debit minus credit.
type Line struct {
	ID              int64
	VoucherNo       string
	VoucherType     VoucherType
	VoucherDate     time.Time
	AccountHeadCode string
	Narration       string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	IsPosted        bool
	IsApproved      bool
	CreatedBy       int64
	UpdatedBy       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VoucherFields is the whole-set mutable subset of an unapproved voucher.
type VoucherFields struct {
	VoucherDate *time.Time
	Narration   *string
}

// PostingAccount carries the flags checked before a line may reference an
// account.
type PostingAccount struct {
	HeadCode      string
	HeadName      string
	IsActive      bool
	IsTransaction bool
}

var (
	// ErrVoucherNotFound indicates no lines exist for the voucher number.
	ErrVoucherNotFound = errors.New("ledger: voucher not found")
	// ErrAlreadyApproved blocks mutating an approved voucher.
	ErrAlreadyApproved = errors.New("ledger: voucher already approved")
	// ErrVoucherNumberConflict indicates a concurrent allocation collided on
	// the (voucher_type, voucher_no) registry; callers may retry.
	ErrVoucherNumberConflict = errors.New("ledger: voucher number conflict")
	// ErrAccountNotFound indicates the referenced head code is unknown.
	ErrAccountNotFound = errors.New("ledger: account not found")
)
