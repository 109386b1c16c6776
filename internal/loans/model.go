// Package loans records staff loans and posts their grant and settlement to
// the ledger.
package loans

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan statuses.
const (
	StatusGranted = "granted"
	StatusSettled = "settled"
)

// Loan is one granted principal. ReceivableHeadCode is the asset account
// carrying the outstanding balance; CashHeadCode is the account paid from and
// repaid into.
type Loan struct {
	ID                 uuid.UUID
	Borrower           string
	Principal          decimal.Decimal
	ReceivableHeadCode string
	CashHeadCode       string
	Status             string
	GrantVoucherNo     string
	SettleVoucherNo    string
	CreatedBy          int64
	CreatedAt          time.Time
	SettledAt          *time.Time
}

var (
	// ErrLoanNotFound indicates no loan exists for the id.
	ErrLoanNotFound = errors.New("loans: loan not found")
	// ErrAlreadySettled blocks settling a loan twice.
	ErrAlreadySettled = errors.New("loans: loan already settled")
)
