// Package expenses records expense entries and posts each one to the ledger.
package expenses

import (
	"context"
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

// VoucherType tags expense line sets in the ledger.
const VoucherType = ledger.VoucherType("Expense")

// Entry is one recorded expense. ExpenseHeadCode is debited, PaymentHeadCode
// credited.
type Entry struct {
	ID              uuid.UUID
	Category        string
	ExpenseHeadCode string
	PaymentHeadCode string
	Amount          decimal.Decimal
	Narration       string
	VoucherNo       string
	EntryDate       time.Time
	CreatedBy       int64
	CreatedAt       time.Time
}

// AuditPort records expense events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops derived report caches after a posting.
type CacheInvalidator interface {
	InvalidateReports(ctx context.Context)
}

// Service records expenses and posts them atomically.
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

// Record inserts the entry and posts its voucher in one transaction. The
// voucher number is the posting timestamp, the convention this module has
// always used.
func (s *Service) Record(ctx context.Context, entry Entry, actorID int64) (Entry, error) {
	entry.ID = uuid.New()
	entry.VoucherNo = "EXP-" + s.now().Format("20060102150405")
	entry.CreatedBy = actorID
	entry.CreatedAt = s.now()
	if entry.EntryDate.IsZero() {
		entry.EntryDate = s.now()
	}

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO expense_entries
(id, category, expense_head_code, payment_head_code, amount, narration, voucher_no, entry_date, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			entry.ID, entry.Category, entry.ExpenseHeadCode, entry.PaymentHeadCode,
			entry.Amount, entry.Narration, entry.VoucherNo, entry.EntryDate, entry.CreatedBy, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("expenses: insert entry: %w", err)
		}

		entries := []vouchers.JournalEntryInput{
			{AccountHeadCode: entry.ExpenseHeadCode, Debit: entry.Amount, Credit: decimal.Zero},
			{AccountHeadCode: entry.PaymentHeadCode, Debit: decimal.Zero, Credit: entry.Amount},
		}
		return vouchers.PostPrepared(ctx, ledger.NewTxStore(tx), VoucherType, entry.VoucherNo, entry.EntryDate, entry.Narration, entries, actorID)
	})
	if err != nil {
		return Entry{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID: actorID, Action: "expense.record", Entity: "expense_entry",
			EntityID: entry.ID.String(), Meta: map[string]any{"voucher_no": entry.VoucherNo}, At: s.now(),
		})
	}
	if s.invalidate != nil {
		s.invalidate.InvalidateReports(ctx)
	}
	return entry, nil
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, category, expense_head_code, payment_head_code,
amount, narration, voucher_no, entry_date, created_by, created_at
FROM expense_entries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("expenses: query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Category, &e.ExpenseHeadCode, &e.PaymentHeadCode,
			&e.Amount, &e.Narration, &e.VoucherNo, &e.EntryDate, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("expenses: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
