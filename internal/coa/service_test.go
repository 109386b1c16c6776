package coa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-erp/praxis/internal/shared"
)

type stubRepo struct {
	accounts  map[string]Account
	deleteErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{accounts: map[string]Account{}}
}

func (r *stubRepo) Create(_ context.Context, a Account) (Account, error) {
	if _, dup := r.accounts[a.HeadCode]; dup {
		return Account{}, ErrDuplicateHead
	}
	for _, existing := range r.accounts {
		if existing.HeadName == a.HeadName {
			return Account{}, ErrDuplicateHead
		}
	}
	r.accounts[a.HeadCode] = a
	return a, nil
}

func (r *stubRepo) Find(_ context.Context, headCode string) (Account, error) {
	a, ok := r.accounts[headCode]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (r *stubRepo) List(_ context.Context, activeOnly bool) ([]Account, error) {
	var out []Account
	for _, a := range r.accounts {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *stubRepo) ChildrenOf(_ context.Context, headName string) ([]Account, error) {
	var out []Account
	for _, a := range r.accounts {
		if a.ParentHeadName != nil && *a.ParentHeadName == headName {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubRepo) Update(_ context.Context, headCode string, fields UpdateFields, _ int64) (Account, error) {
	a, ok := r.accounts[headCode]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	if fields.IsActive != nil {
		a.IsActive = *fields.IsActive
	}
	r.accounts[headCode] = a
	return a, nil
}

func (r *stubRepo) Rename(_ context.Context, headCode, newName string, _ int64) error {
	a, ok := r.accounts[headCode]
	if !ok {
		return ErrAccountNotFound
	}
	a.HeadName = newName
	r.accounts[headCode] = a
	return nil
}

func (r *stubRepo) Delete(_ context.Context, headCode string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.accounts[headCode]; !ok {
		return ErrAccountNotFound
	}
	delete(r.accounts, headCode)
	return nil
}

type captureAudit struct {
	actions []string
}

func (c *captureAudit) Record(_ context.Context, log shared.AuditLog) error {
	c.actions = append(c.actions, log.Action)
	return nil
}

func TestServiceCreate(t *testing.T) {
	repo := newStubRepo()
	audit := &captureAudit{}
	svc := NewService(repo, audit)

	created, err := svc.Create(context.Background(), Account{
		HeadCode: "1.1.1", HeadName: "Cash in Hand", HeadType: HeadTypeAsset, IsActive: true,
	}, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, created.CreatedBy)
	assert.Contains(t, audit.actions, "coa.create")
}

func TestServiceCreateRejectsInvalid(t *testing.T) {
	svc := NewService(newStubRepo(), nil)

	_, err := svc.Create(context.Background(), Account{HeadCode: "1", HeadType: HeadTypeAsset}, 1)
	require.Error(t, err)
}

func TestServiceCreateDuplicate(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)

	account := Account{HeadCode: "1", HeadName: "Assets", HeadType: HeadTypeAsset}
	_, err := svc.Create(context.Background(), account, 1)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), account, 1)
	require.ErrorIs(t, err, ErrDuplicateHead)
}

func TestServiceDeleteGuards(t *testing.T) {
	repo := newStubRepo()
	repo.accounts["1"] = Account{HeadCode: "1", HeadName: "Assets", HeadType: HeadTypeAsset}
	repo.deleteErr = ErrHasTransactions
	audit := &captureAudit{}
	svc := NewService(repo, audit)

	err := svc.Delete(context.Background(), "1", 1)
	require.ErrorIs(t, err, ErrHasTransactions)
	assert.Empty(t, audit.actions, "no audit entry for a refused delete")
}

func TestServiceTree(t *testing.T) {
	repo := newStubRepo()
	repo.accounts["1"] = Account{HeadCode: "1", HeadName: "Assets", HeadType: HeadTypeAsset, IsActive: true}
	repo.accounts["1.1"] = Account{HeadCode: "1.1", HeadName: "Cash & Cash Equivalent", ParentHeadName: strptr("Assets"), HeadType: HeadTypeAsset, IsActive: true}
	svc := NewService(repo, nil)

	roots, err := svc.Tree(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
}
