package coa

import (
	"context"
	"time"

	"github.com/praxis-erp/praxis/internal/shared"
)

// RepositoryPort abstracts the chart of accounts store.
type RepositoryPort interface {
	Create(ctx context.Context, a Account) (Account, error)
	Find(ctx context.Context, headCode string) (Account, error)
	List(ctx context.Context, activeOnly bool) ([]Account, error)
	ChildrenOf(ctx context.Context, headName string) ([]Account, error)
	Update(ctx context.Context, headCode string, fields UpdateFields, actorID int64) (Account, error)
	Rename(ctx context.Context, headCode, newName string, actorID int64) error
	Delete(ctx context.Context, headCode string) error
}

// AuditPort records account changes for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates chart of accounts operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the chart of accounts service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates and stores a new account.
func (s *Service) Create(ctx context.Context, a Account, actorID int64) (Account, error) {
	if err := a.Validate(); err != nil {
		return Account{}, err
	}
	a.CreatedBy = actorID
	a.UpdatedBy = actorID
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, actorID, "coa.create", created.HeadCode, map[string]any{"head_name": created.HeadName})
	return created, nil
}

// Get fetches one account by head code.
func (s *Service) Get(ctx context.Context, headCode string) (Account, error) {
	return s.repo.Find(ctx, headCode)
}

// List returns all accounts ordered by head code.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Account, error) {
	return s.repo.List(ctx, activeOnly)
}

// Children returns the direct children of an account.
func (s *Service) Children(ctx context.Context, headName string) ([]Account, error) {
	return s.repo.ChildrenOf(ctx, headName)
}

// Tree loads all accounts and assembles the forest.
func (s *Service) Tree(ctx context.Context, activeOnly bool) ([]*Node, error) {
	accounts, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return BuildTree(accounts)
}

// Update applies the mutable field subset to an account.
func (s *Service) Update(ctx context.Context, headCode string, fields UpdateFields, actorID int64) (Account, error) {
	updated, err := s.repo.Update(ctx, headCode, fields, actorID)
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, actorID, "coa.update", headCode, nil)
	return updated, nil
}

// Rename changes the display name, cascading to child parent references.
func (s *Service) Rename(ctx context.Context, headCode, newName string, actorID int64) error {
	if err := s.repo.Rename(ctx, headCode, newName, actorID); err != nil {
		return err
	}
	s.record(ctx, actorID, "coa.rename", headCode, map[string]any{"new_name": newName})
	return nil
}

// Delete removes an account when it has no transactions or children.
func (s *Service) Delete(ctx context.Context, headCode string, actorID int64) error {
	if err := s.repo.Delete(ctx, headCode); err != nil {
		return err
	}
	s.record(ctx, actorID, "coa.delete", headCode, nil)
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action, headCode string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "account",
		EntityID: headCode,
		Meta:     meta,
		At:       s.now(),
	})
}
