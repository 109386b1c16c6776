// Package coa manages the chart of accounts hierarchy.
package coa

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// HeadType enumerates account categories.
type HeadType string

const (
	HeadTypeAsset     HeadType = "Asset"
	HeadTypeLiability HeadType = "Liability"
	HeadTypeIncome    HeadType = "Income"
	HeadTypeExpense   HeadType = "Expense"
)

// HeadTypeFromCode maps the legacy single-letter codes onto HeadType.
func HeadTypeFromCode(code string) (HeadType, error) {
	switch code {
	case "A":
		return HeadTypeAsset, nil
	case "L":
		return HeadTypeLiability, nil
	case "I":
		return HeadTypeIncome, nil
	case "E":
		return HeadTypeExpense, nil
	}
	return "", fmt.Errorf("coa: unknown head type code %q", code)
}

// Valid reports whether the head type is one of the four categories.
func (t HeadType) Valid() bool {
	switch t {
	case HeadTypeAsset, HeadTypeLiability, HeadTypeIncome, HeadTypeExpense:
		return true
	}
	return false
}

// Account models a chart of accounts node. The hierarchy is keyed by
// ParentHeadName referencing another account's HeadName; that is the legacy
// storage contract and is resolved to codes once per load when building trees.
type Account struct {
	HeadCode         string
	HeadName         string
	ParentHeadName   *string
	HeadLevel        int
	HeadType         HeadType
	IsActive         bool
	IsTransaction    bool
	IsGeneralLedger  bool
	IsBudget         bool
	IsDepreciation   bool
	DepreciationRate decimal.Decimal
	CreatedBy        int64
	UpdatedBy        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UpdateFields is the mutable subset of an account. Identity fields
// (head code, name, parent, level, type) are fixed after creation.
type UpdateFields struct {
	IsActive         *bool
	IsTransaction    *bool
	IsGeneralLedger  *bool
	IsBudget         *bool
	IsDepreciation   *bool
	DepreciationRate *decimal.Decimal
}

var (
	// ErrDuplicateHead indicates head code or head name already exists.
	ErrDuplicateHead = errors.New("coa: head code or head name already exists")
	// ErrAccountNotFound indicates the head code is unknown.
	ErrAccountNotFound = errors.New("coa: account not found")
	// ErrHasTransactions blocks deleting an account with ledger lines.
	ErrHasTransactions = errors.New("coa: account has ledger transactions")
	// ErrHasChildren blocks deleting an account with child accounts.
	ErrHasChildren = errors.New("coa: account has child accounts")
	// ErrCycle indicates a corrupted parent chain detected at tree build.
	ErrCycle = errors.New("coa: cycle in account hierarchy")
)

// Validate checks the fields required at creation time.
func (a Account) Validate() error {
	if a.HeadCode == "" {
		return errors.New("coa: head code required")
	}
	if a.HeadName == "" {
		return errors.New("coa: head name required")
	}
	if !a.HeadType.Valid() {
		return fmt.Errorf("coa: invalid head type %q", a.HeadType)
	}
	if a.ParentHeadName != nil && *a.ParentHeadName == a.HeadName {
		return fmt.Errorf("coa: account %q cannot be its own parent", a.HeadName)
	}
	return nil
}
