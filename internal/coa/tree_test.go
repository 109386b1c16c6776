package coa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestBuildTree(t *testing.T) {
	accounts := []Account{
		{HeadCode: "1", HeadName: "Assets", HeadType: HeadTypeAsset},
		{HeadCode: "1.1", HeadName: "Cash & Cash Equivalent", ParentHeadName: strptr("Assets"), HeadType: HeadTypeAsset},
		{HeadCode: "1.1.1", HeadName: "Cash in Hand", ParentHeadName: strptr("Cash & Cash Equivalent"), HeadType: HeadTypeAsset},
		{HeadCode: "1.1.2", HeadName: "Bank Account", ParentHeadName: strptr("Cash & Cash Equivalent"), HeadType: HeadTypeAsset},
		{HeadCode: "2", HeadName: "Liabilities", HeadType: HeadTypeLiability},
	}

	roots, err := BuildTree(accounts)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Assets", roots[0].HeadName)
	assert.Equal(t, "Liabilities", roots[1].HeadName)

	require.Len(t, roots[0].Children, 1)
	cce := roots[0].Children[0]
	assert.Equal(t, "Cash & Cash Equivalent", cce.HeadName)
	require.Len(t, cce.Children, 2)
	// Children sorted by head code.
	assert.Equal(t, "1.1.1", cce.Children[0].HeadCode)
	assert.Equal(t, "1.1.2", cce.Children[1].HeadCode)
}

func TestBuildTreeOrphanBecomesRoot(t *testing.T) {
	accounts := []Account{
		{HeadCode: "1", HeadName: "Assets", HeadType: HeadTypeAsset},
		{HeadCode: "9", HeadName: "Misc", ParentHeadName: strptr("No Such Parent"), HeadType: HeadTypeExpense},
	}

	roots, err := BuildTree(accounts)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Misc", roots[1].HeadName)
}

func TestBuildTreeCycle(t *testing.T) {
	accounts := []Account{
		{HeadCode: "1", HeadName: "A", ParentHeadName: strptr("B"), HeadType: HeadTypeAsset},
		{HeadCode: "2", HeadName: "B", ParentHeadName: strptr("A"), HeadType: HeadTypeAsset},
	}

	_, err := BuildTree(accounts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestBuildTreeEmpty(t *testing.T) {
	roots, err := BuildTree(nil)
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestHeadTypeFromCode(t *testing.T) {
	cases := map[string]HeadType{
		"A": HeadTypeAsset,
		"L": HeadTypeLiability,
		"I": HeadTypeIncome,
		"E": HeadTypeExpense,
	}
	for code, want := range cases {
		got, err := HeadTypeFromCode(code)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := HeadTypeFromCode("X")
	require.Error(t, err)
}

func TestAccountValidate(t *testing.T) {
	valid := Account{HeadCode: "1.1.1", HeadName: "Cash in Hand", HeadType: HeadTypeAsset}
	require.NoError(t, valid.Validate())

	missingCode := valid
	missingCode.HeadCode = ""
	require.Error(t, missingCode.Validate())

	badType := valid
	badType.HeadType = "Revenue"
	require.Error(t, badType.Validate())

	selfParent := valid
	selfParent.ParentHeadName = strptr("Cash in Hand")
	require.Error(t, selfParent.Validate())
}
