package vouchers

import (
	"context"
	"errors"
	"time"

	"github.com/praxis-erp/praxis/internal/ledger"
	"github.com/praxis-erp/praxis/internal/shared"
)

// StorePort abstracts the ledger store behaviour used by the engine.
type StorePort interface {
	WithTx(ctx context.Context, fn func(context.Context, ledger.TxStore) error) error
	LinesForVoucher(ctx context.Context, voucherNo string) ([]ledger.Line, error)
	UpdateVoucher(ctx context.Context, voucherNo string, fields ledger.VoucherFields, actorID int64) error
	ApproveVoucher(ctx context.Context, voucherNo string, actorID int64) error
	DeleteVoucher(ctx context.Context, voucherNo string) error
}

// AuditPort records voucher events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops derived report caches after a ledger mutation.
type CacheInvalidator interface {
	InvalidateReports(ctx context.Context)
}

// Service is the voucher posting engine.
type Service struct {
	store      StorePort
	audit      AuditPort
	invalidate CacheInvalidator
	now        func() time.Time
}

// NewService constructs the posting engine.
func NewService(store StorePort, audit AuditPort, invalidate CacheInvalidator) *Service {
	return &Service{store: store, audit: audit, invalidate: invalidate, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PostDebitVoucher posts one debit against N credits.
func (s *Service) PostDebitVoucher(ctx context.Context, in DebitVoucherInput, actorID int64) (string, error) {
	return s.post(ctx, in.toPosting(), actorID)
}

// PostCreditVoucher posts N debits against one credit.
func (s *Service) PostCreditVoucher(ctx context.Context, in CreditVoucherInput, actorID int64) (string, error) {
	return s.post(ctx, in.toPosting(), actorID)
}

// PostContraVoucher posts a two-line transfer between accounts.
func (s *Service) PostContraVoucher(ctx context.Context, in ContraVoucherInput, actorID int64) (string, error) {
	return s.post(ctx, in.toPosting(), actorID)
}

// PostJournalVoucher posts an arbitrary balanced entry list.
func (s *Service) PostJournalVoucher(ctx context.Context, in JournalVoucherInput, actorID int64) (string, error) {
	return s.post(ctx, in.toPosting(), actorID)
}

func (s *Service) post(ctx context.Context, p posting, actorID int64) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	var voucherNo string
	attempt := func() error {
		return s.store.WithTx(ctx, func(ctx context.Context, tx ledger.TxStore) error {
			if err := checkAccounts(ctx, tx, p.entries); err != nil {
				return err
			}
			seq, err := tx.NextSequence(ctx, p.voucherType)
			if err != nil {
				return err
			}
			voucherNo = FormatVoucherNo(p.voucherType, seq)
			if err := tx.RegisterVoucherNo(ctx, p.voucherType, voucherNo, &seq); err != nil {
				return err
			}
			return tx.AppendLines(ctx, buildLines(voucherNo, p, actorID))
		})
	}
	err := attempt()
	if errors.Is(err, ledger.ErrVoucherNumberConflict) {
		// A concurrent posting claimed the same number; the registry
		// turned the race into a conflict, so one retry re-reads max+1.
		err = attempt()
	}
	if err != nil {
		return "", err
	}
	s.afterMutation(ctx, actorID, "voucher.post", voucherNo, map[string]any{
		"voucher_type": string(p.voucherType),
		"line_count":   len(p.entries),
	})
	return voucherNo, nil
}

// PostPrepared writes a balanced line set inside a caller-owned transaction.
// Collaborator modules use this so their own state change and the ledger
// posting commit or roll back together. The caller supplies its voucher
// number convention.
func PostPrepared(ctx context.Context, tx ledger.TxStore, voucherType ledger.VoucherType, voucherNo string,
	voucherDate time.Time, narration string, entries []JournalEntryInput, actorID int64) error {
	p := posting{voucherType: voucherType, voucherDate: voucherDate, narration: narration, entries: entries}
	if err := p.validate(); err != nil {
		return err
	}
	if err := checkAccounts(ctx, tx, p.entries); err != nil {
		return err
	}
	if err := tx.RegisterVoucherNo(ctx, voucherType, voucherNo, nil); err != nil {
		return err
	}
	return tx.AppendLines(ctx, buildLines(voucherNo, p, actorID))
}

// Lines returns every line sharing a voucher number.
func (s *Service) Lines(ctx context.Context, voucherNo string) ([]ledger.Line, error) {
	lines, err := s.store.LinesForVoucher(ctx, voucherNo)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ledger.ErrVoucherNotFound
	}
	return lines, nil
}

// Update applies whole-set fields to an unapproved voucher.
func (s *Service) Update(ctx context.Context, voucherNo string, fields ledger.VoucherFields, actorID int64) error {
	if err := s.store.UpdateVoucher(ctx, voucherNo, fields, actorID); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "voucher.update", voucherNo, nil)
	return nil
}

// Approve marks the whole voucher approved. Idempotent.
func (s *Service) Approve(ctx context.Context, voucherNo string, actorID int64) error {
	if err := s.store.ApproveVoucher(ctx, voucherNo, actorID); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "voucher.approve", voucherNo, nil)
	return nil
}

// Delete removes an unapproved voucher's whole line set.
func (s *Service) Delete(ctx context.Context, voucherNo string, actorID int64) error {
	if err := s.store.DeleteVoucher(ctx, voucherNo); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "voucher.delete", voucherNo, nil)
	return nil
}

func checkAccounts(ctx context.Context, tx ledger.TxStore, entries []JournalEntryInput) error {
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if seen[entry.AccountHeadCode] {
			continue
		}
		seen[entry.AccountHeadCode] = true
		acc, err := tx.AccountForPosting(ctx, entry.AccountHeadCode)
		if err != nil {
			if errors.Is(err, ledger.ErrAccountNotFound) {
				return &InvalidAccountError{HeadCode: entry.AccountHeadCode, Reason: "does not exist"}
			}
			return err
		}
		if !acc.IsActive {
			return &InvalidAccountError{HeadCode: entry.AccountHeadCode, Reason: "is inactive"}
		}
		if !acc.IsTransaction {
			return &InvalidAccountError{HeadCode: entry.AccountHeadCode, Reason: "does not accept transactions"}
		}
	}
	return nil
}

func buildLines(voucherNo string, p posting, actorID int64) []ledger.Line {
	lines := make([]ledger.Line, 0, len(p.entries))
	for _, entry := range p.entries {
		lines = append(lines, ledger.Line{
			VoucherNo:       voucherNo,
			VoucherType:     p.voucherType,
			VoucherDate:     p.voucherDate,
			AccountHeadCode: entry.AccountHeadCode,
			Narration:       p.narration,
			Debit:           entry.Debit,
			Credit:          entry.Credit,
			IsPosted:        true,
			IsApproved:      false,
			CreatedBy:       actorID,
			UpdatedBy:       actorID,
		})
	}
	return lines
}

func (s *Service) afterMutation(ctx context.Context, actorID int64, action, voucherNo string, meta map[string]any) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   action,
			Entity:   "voucher",
			EntityID: voucherNo,
			Meta:     meta,
			At:       s.now(),
		})
	}
	if s.invalidate != nil {
		s.invalidate.InvalidateReports(ctx)
	}
}
