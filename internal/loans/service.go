package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/ledger"
	"github.com/praxis-erp/praxis/internal/platform/db"
	"github.com/praxis-erp/praxis/internal/shared"
	"github.com/praxis-erp/praxis/internal/vouchers"
)

// Voucher types minted by this module.
const (
	TypeGrant      = ledger.VoucherType("LoanGrant")
	TypeSettlement = ledger.VoucherType("LoanSettlement")
)

// AuditPort records loan events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops derived report caches after a posting.
type CacheInvalidator interface {
	InvalidateReports(ctx context.Context)
}

// Service grants and settles loans, posting both movements to the ledger.
type Service struct {
	pool       *pgxpool.Pool
	audit      AuditPort
	invalidate CacheInvalidator
	now        func() time.Time
}

func NewService(pool *pgxpool.Pool, audit AuditPort, invalidate CacheInvalidator) *Service {
	return &Service{pool: pool, audit: audit, invalidate: invalidate, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Grant records the loan and posts debit receivable / credit cash in one
// transaction. The voucher number derives from the loan id, the convention
// this module has always used.
func (s *Service) Grant(ctx context.Context, loan Loan, actorID int64) (Loan, error) {
	loan.ID = uuid.New()
	loan.Status = StatusGranted
	loan.GrantVoucherNo = "LN-" + shortID(loan.ID)
	loan.CreatedBy = actorID
	loan.CreatedAt = s.now()

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO loans
(id, borrower, principal, receivable_head_code, cash_head_code, status, grant_voucher_no, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			loan.ID, loan.Borrower, loan.Principal, loan.ReceivableHeadCode,
			loan.CashHeadCode, loan.Status, loan.GrantVoucherNo, loan.CreatedBy, loan.CreatedAt)
		if err != nil {
			return fmt.Errorf("loans: insert loan: %w", err)
		}

		narration := "Loan granted to " + loan.Borrower
		entries := []vouchers.JournalEntryInput{
			{AccountHeadCode: loan.ReceivableHeadCode, Debit: loan.Principal, Credit: decimal.Zero},
			{AccountHeadCode: loan.CashHeadCode, Debit: decimal.Zero, Credit: loan.Principal},
		}
		return vouchers.PostPrepared(ctx, ledger.NewTxStore(tx), TypeGrant, loan.GrantVoucherNo, s.now(), narration, entries, actorID)
	})
	if err != nil {
		return Loan{}, err
	}

	s.afterMutation(ctx, actorID, "loan.grant", loan.ID, loan.GrantVoucherNo)
	return loan, nil
}

// Settle posts the inverse movement and marks the loan settled.
func (s *Service) Settle(ctx context.Context, loanID uuid.UUID, actorID int64) (string, error) {
	var voucherNo string
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		loan, err := lockLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if loan.Status == StatusSettled {
			return ErrAlreadySettled
		}

		voucherNo = "LNS-" + shortID(loan.ID)
		narration := "Loan settled by " + loan.Borrower
		entries := []vouchers.JournalEntryInput{
			{AccountHeadCode: loan.CashHeadCode, Debit: loan.Principal, Credit: decimal.Zero},
			{AccountHeadCode: loan.ReceivableHeadCode, Debit: decimal.Zero, Credit: loan.Principal},
		}
		if err := vouchers.PostPrepared(ctx, ledger.NewTxStore(tx), TypeSettlement, voucherNo, s.now(), narration, entries, actorID); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE loans SET status=$2, settle_voucher_no=$3, settled_at=$4 WHERE id=$1`,
			loanID, StatusSettled, voucherNo, s.now())
		return err
	})
	if err != nil {
		return "", err
	}

	s.afterMutation(ctx, actorID, "loan.settle", loanID, voucherNo)
	return voucherNo, nil
}

// List returns loans newest first.
func (s *Service) List(ctx context.Context) ([]Loan, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, borrower, principal, receivable_head_code, cash_head_code,
status, grant_voucher_no, COALESCE(settle_voucher_no, ''), created_by, created_at, settled_at
FROM loans ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("loans: query loans: %w", err)
	}
	defer rows.Close()

	var loans []Loan
	for rows.Next() {
		var loan Loan
		if err := rows.Scan(&loan.ID, &loan.Borrower, &loan.Principal, &loan.ReceivableHeadCode,
			&loan.CashHeadCode, &loan.Status, &loan.GrantVoucherNo, &loan.SettleVoucherNo,
			&loan.CreatedBy, &loan.CreatedAt, &loan.SettledAt); err != nil {
			return nil, fmt.Errorf("loans: scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func (s *Service) afterMutation(ctx context.Context, actorID int64, action string, loanID uuid.UUID, voucherNo string) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID: actorID, Action: action, Entity: "loan",
			EntityID: loanID.String(), Meta: map[string]any{"voucher_no": voucherNo}, At: s.now(),
		})
	}
	if s.invalidate != nil {
		s.invalidate.InvalidateReports(ctx)
	}
}

func lockLoan(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (Loan, error) {
	var loan Loan
	err := tx.QueryRow(ctx, `SELECT id, borrower, principal, receivable_head_code, cash_head_code, status
FROM loans WHERE id=$1 FOR UPDATE`, loanID).
		Scan(&loan.ID, &loan.Borrower, &loan.Principal, &loan.ReceivableHeadCode, &loan.CashHeadCode, &loan.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Loan{}, ErrLoanNotFound
	}
	if err != nil {
		return Loan{}, fmt.Errorf("loans: lock loan: %w", err)
	}
	return loan, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
