// Package payroll records salary runs and posts their disbursement to the
// ledger.
package payroll

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run statuses.
const (
	StatusDraft = "draft"
	StatusPaid  = "paid"
)

// Run is one salary disbursement batch. DebitHeadCode is the salary expense
// account; CreditHeadCode is the cash or bank account paid from.
type Run struct {
	ID             uuid.UUID
	EmployeeName   string
	Period         string
	GrossAmount    decimal.Decimal
	DebitHeadCode  string
	CreditHeadCode string
	Status         string
	VoucherNo      string
	CreatedBy      int64
	CreatedAt      time.Time
	PaidAt         *time.Time
}

var (
	// ErrRunNotFound indicates no run exists for the id.
	ErrRunNotFound = errors.New("payroll: run not found")
	// ErrAlreadyPaid blocks disbursing a run twice.
	ErrAlreadyPaid = errors.New("payroll: run already paid")
)
