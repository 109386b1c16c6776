package payroll

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

// VoucherType tags payroll disbursement line sets in the ledger.
const VoucherType = ledger.VoucherType("Payment")

// AuditPort records payroll events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops derived report caches after a posting.
type CacheInvalidator interface {
	InvalidateReports(ctx context.Context)
}

// Service creates salary runs and disburses them against the ledger.
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

// Create records a draft salary run.
func (s *Service) Create(ctx context.Context, run Run, actorID int64) (Run, error) {
	run.ID = uuid.New()
	run.Status = StatusDraft
	run.CreatedBy = actorID
	run.CreatedAt = s.now()

	_, err := s.pool.Exec(ctx, `INSERT INTO payroll_runs
(id, employee_name, period, gross_amount, debit_head_code, credit_head_code, status, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		run.ID, run.EmployeeName, run.Period, run.GrossAmount,
		run.DebitHeadCode, run.CreditHeadCode, run.Status, run.CreatedBy, run.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("payroll: insert run: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID: actorID, Action: "payroll.create", Entity: "payroll_run",
			EntityID: run.ID.String(), At: s.now(),
		})
	}
	return run, nil
}

// Disburse marks the run paid and posts its voucher in one transaction, so
// the status change and the ledger lines commit or roll back together.
func (s *Service) Disburse(ctx context.Context, runID uuid.UUID, actorID int64) (string, error) {
	var voucherNo string
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		run, err := lockRun(ctx, tx, runID)
		if err != nil {
			return err
		}
		if run.Status == StatusPaid {
			return ErrAlreadyPaid
		}

		// Legacy convention: payroll numbers derive from period and run id.
		voucherNo = fmt.Sprintf("PAY-%s-%s", run.Period, shortID(run.ID))
		narration := fmt.Sprintf("Salary disbursement %s for %s", run.Period, run.EmployeeName)
		entries := []vouchers.JournalEntryInput{
			{AccountHeadCode: run.DebitHeadCode, Debit: run.GrossAmount, Credit: decimal.Zero},
			{AccountHeadCode: run.CreditHeadCode, Debit: decimal.Zero, Credit: run.GrossAmount},
		}
		if err := vouchers.PostPrepared(ctx, ledger.NewTxStore(tx), VoucherType, voucherNo, s.now(), narration, entries, actorID); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE payroll_runs SET status=$2, voucher_no=$3, paid_at=$4 WHERE id=$1`,
			runID, StatusPaid, voucherNo, s.now())
		return err
	})
	if err != nil {
		return "", err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID: actorID, Action: "payroll.disburse", Entity: "payroll_run",
			EntityID: runID.String(), Meta: map[string]any{"voucher_no": voucherNo}, At: s.now(),
		})
	}
	if s.invalidate != nil {
		s.invalidate.InvalidateReports(ctx)
	}
	return voucherNo, nil
}

// List returns runs newest first.
func (s *Service) List(ctx context.Context) ([]Run, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, employee_name, period, gross_amount,
debit_head_code, credit_head_code, status, COALESCE(voucher_no, ''), created_by, created_at, paid_at
FROM payroll_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("payroll: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.EmployeeName, &run.Period, &run.GrossAmount,
			&run.DebitHeadCode, &run.CreditHeadCode, &run.Status, &run.VoucherNo,
			&run.CreatedBy, &run.CreatedAt, &run.PaidAt); err != nil {
			return nil, fmt.Errorf("payroll: scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func lockRun(ctx context.Context, tx pgx.Tx, runID uuid.UUID) (Run, error) {
	var run Run
	err := tx.QueryRow(ctx, `SELECT id, employee_name, period, gross_amount,
debit_head_code, credit_head_code, status
FROM payroll_runs WHERE id=$1 FOR UPDATE`, runID).
		Scan(&run.ID, &run.EmployeeName, &run.Period, &run.GrossAmount,
			&run.DebitHeadCode, &run.CreditHeadCode, &run.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("payroll: lock run: %w", err)
	}
	return run, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
