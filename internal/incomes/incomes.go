// Package incomes records income entries and posts each one to the ledger.
package incomes

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

// VoucherType tags income line sets in the ledger.
const VoucherType = ledger.VoucherType("Income")

// Entry is one recorded income. ReceiptHeadCode is debited (cash or bank in),
// IncomeHeadCode credited.
type Entry struct {
	ID              uuid.UUID
	Source          string
	IncomeHeadCode  string
	ReceiptHeadCode string
	Amount          decimal.Decimal
	Narration       string
	VoucherNo       string
	EntryDate       time.Time
	CreatedBy       int64
	CreatedAt       time.Time
}

// AuditPort records income events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops derived report caches after a posting.
type CacheInvalidator interface {
	InvalidateReports(ctx context.Context)
}

// Service records incomes and posts them atomically.
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

// Record inserts the entry and posts its voucher in one transaction, using
// the timestamp voucher number convention.
func (s *Service) Record(ctx context.Context, entry Entry, actorID int64) (Entry, error) {
	entry.ID = uuid.New()
	entry.VoucherNo = "INC-" + s.now().Format("20060102150405")
	entry.CreatedBy = actorID
	entry.CreatedAt = s.now()
	if entry.EntryDate.IsZero() {
		entry.EntryDate = s.now()
	}

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO income_entries
(id, source, income_head_code, receipt_head_code, amount, narration, voucher_no, entry_date, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			entry.ID, entry.Source, entry.IncomeHeadCode, entry.ReceiptHeadCode,
			entry.Amount, entry.Narration, entry.VoucherNo, entry.EntryDate, entry.CreatedBy, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("incomes: insert entry: %w", err)
		}

		entries := []vouchers.JournalEntryInput{
			{AccountHeadCode: entry.ReceiptHeadCode, Debit: entry.Amount, Credit: decimal.Zero},
			{AccountHeadCode: entry.IncomeHeadCode, Debit: decimal.Zero, Credit: entry.Amount},
		}
		return vouchers.PostPrepared(ctx, ledger.NewTxStore(tx), VoucherType, entry.VoucherNo, entry.EntryDate, entry.Narration, entries, actorID)
	})
	if err != nil {
		return Entry{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID: actorID, Action: "income.record", Entity: "income_entry",
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
	rows, err := s.pool.Query(ctx, `SELECT id, source, income_head_code, receipt_head_code,
amount, narration, voucher_no, entry_date, created_by, created_at
FROM income_entries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("incomes: query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Source, &e.IncomeHeadCode, &e.ReceiptHeadCode,
			&e.Amount, &e.Narration, &e.VoucherNo, &e.EntryDate, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("incomes: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
