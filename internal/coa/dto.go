package coa

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAccountRequest carries fields for a new chart of accounts node.
type CreateAccountRequest struct {
	HeadCode         string           `json:"head_code" validate:"required,max=20"`
	HeadName         string           `json:"head_name" validate:"required,max=100"`
	ParentHeadName   *string          `json:"parent_head_name,omitempty" validate:"omitempty,max=100"`
	HeadLevel        int              `json:"head_level" validate:"gte=0,lte=10"`
	HeadType         string           `json:"head_type" validate:"required"`
	IsActive         bool             `json:"is_active"`
	IsTransaction    bool             `json:"is_transaction"`
	IsGeneralLedger  bool             `json:"is_general_ledger"`
	IsBudget         bool             `json:"is_budget"`
	IsDepreciation   bool             `json:"is_depreciation"`
	DepreciationRate *decimal.Decimal `json:"depreciation_rate,omitempty"`
}

// UpdateAccountRequest carries the mutable field subset.
type UpdateAccountRequest struct {
	IsActive         *bool            `json:"is_active,omitempty"`
	IsTransaction    *bool            `json:"is_transaction,omitempty"`
	IsGeneralLedger  *bool            `json:"is_general_ledger,omitempty"`
	IsBudget         *bool            `json:"is_budget,omitempty"`
	IsDepreciation   *bool            `json:"is_depreciation,omitempty"`
	DepreciationRate *decimal.Decimal `json:"depreciation_rate,omitempty"`
}

// RenameAccountRequest carries a head name change.
type RenameAccountRequest struct {
	HeadName string `json:"head_name" validate:"required,max=100"`
}

// AccountView is the JSON shape returned for an account.
type AccountView struct {
	HeadCode         string          `json:"head_code"`
	HeadName         string          `json:"head_name"`
	ParentHeadName   *string         `json:"parent_head_name,omitempty"`
	HeadLevel        int             `json:"head_level"`
	HeadType         string          `json:"head_type"`
	IsActive         bool            `json:"is_active"`
	IsTransaction    bool            `json:"is_transaction"`
	IsGeneralLedger  bool            `json:"is_general_ledger"`
	IsBudget         bool            `json:"is_budget"`
	IsDepreciation   bool            `json:"is_depreciation"`
	DepreciationRate decimal.Decimal `json:"depreciation_rate"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TreeNodeView is the JSON shape for a node in the account forest.
type TreeNodeView struct {
	AccountView
	Children []TreeNodeView `json:"children,omitempty"`
}

func toAccountView(a Account) AccountView {
	return AccountView{
		HeadCode:         a.HeadCode,
		HeadName:         a.HeadName,
		ParentHeadName:   a.ParentHeadName,
		HeadLevel:        a.HeadLevel,
		HeadType:         string(a.HeadType),
		IsActive:         a.IsActive,
		IsTransaction:    a.IsTransaction,
		IsGeneralLedger:  a.IsGeneralLedger,
		IsBudget:         a.IsBudget,
		IsDepreciation:   a.IsDepreciation,
		DepreciationRate: a.DepreciationRate,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func toAccountViews(accounts []Account) []AccountView {
	out := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountView(a))
	}
	return out
}

func toTreeView(nodes []*Node) []TreeNodeView {
	out := make([]TreeNodeView, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, TreeNodeView{
			AccountView: toAccountView(node.Account),
			Children:    toTreeView(node.Children),
		})
	}
	return out
}
