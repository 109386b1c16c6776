package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lineColumns = `id, voucher_no, voucher_type, voucher_date, account_head_code, narration,
debit, credit, is_posted, is_approved, created_by, updated_by, created_at, updated_at`

// Repository persists ledger lines.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxStore exposes the operations available inside a posting transaction.
type TxStore interface {
	// NextSequence returns max(seq)+1 for engine-minted numbers of a type.
	NextSequence(ctx context.Context, voucherType VoucherType) (int64, error)
	// RegisterVoucherNo claims (voucher_type, voucher_no) in the registry.
	// A concurrent claim of the same pair returns ErrVoucherNumberConflict.
	RegisterVoucherNo(ctx context.Context, voucherType VoucherType, voucherNo string, seq *int64) error
	// AppendLines writes the full balanced line set.
	AppendLines(ctx context.Context, lines []Line) error
	// AccountForPosting loads the flags checked before referencing an account.
	AccountForPosting(ctx context.Context, headCode string) (PostingAccount, error)
}

// WithTx executes fn within a RepeatableRead transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txStore{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txStore struct {
	tx pgx.Tx
}

// NewTxStore wraps an already open transaction so collaborating modules can
// post lines atomically with their own state changes.
func NewTxStore(tx pgx.Tx) TxStore {
	return &txStore{tx: tx}
}

func (s *txStore) NextSequence(ctx context.Context, voucherType VoucherType) (int64, error) {
	var next int64
	err := s.tx.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM voucher_numbers WHERE voucher_type=$1`, voucherType).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *txStore) RegisterVoucherNo(ctx context.Context, voucherType VoucherType, voucherNo string, seq *int64) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO voucher_numbers (voucher_type, voucher_no, seq) VALUES ($1,$2,$3)`, voucherType, voucherNo, seq)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrVoucherNumberConflict
		}
		return err
	}
	return nil
}

func (s *txStore) AppendLines(ctx context.Context, lines []Line) error {
	batch := &pgx.Batch{}
	const insert = `INSERT INTO ledger_lines
(voucher_no, voucher_type, voucher_date, account_head_code, narration, debit, credit, is_posted, is_approved, created_by, updated_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)`
	for _, line := range lines {
		batch.Queue(insert, line.VoucherNo, line.VoucherType, line.VoucherDate, line.AccountHeadCode,
			line.Narration, line.Debit, line.Credit, line.IsPosted, line.IsApproved, line.CreatedBy)
	}
	results := s.tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	return results.Close()
}

func (s *txStore) AccountForPosting(ctx context.Context, headCode string) (PostingAccount, error) {
	var acc PostingAccount
	err := s.tx.QueryRow(ctx, `SELECT head_code, head_name, is_active, is_transaction
FROM chart_of_accounts WHERE head_code=$1`, headCode).
		Scan(&acc.HeadCode, &acc.HeadName, &acc.IsActive, &acc.IsTransaction)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostingAccount{}, fmt.Errorf("%w: %s", ErrAccountNotFound, headCode)
		}
		return PostingAccount{}, err
	}
	return acc, nil
}

func scanLine(row pgx.Row) (Line, error) {
	var l Line
	err := row.Scan(&l.ID, &l.VoucherNo, &l.VoucherType, &l.VoucherDate, &l.AccountHeadCode, &l.Narration,
		&l.Debit, &l.Credit, &l.IsPosted, &l.IsApproved, &l.CreatedBy, &l.UpdatedBy, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *Repository) queryLines(ctx context.Context, query string, args ...any) ([]Line, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// LinesForVoucher returns every line sharing a voucher number, in insert order.
func (r *Repository) LinesForVoucher(ctx context.Context, voucherNo string) ([]Line, error) {
	return r.queryLines(ctx, `SELECT `+lineColumns+` FROM ledger_lines WHERE voucher_no=$1 ORDER BY id`, voucherNo)
}

// LinesForAccount returns posted lines for an account, optionally bounded by
// an inclusive voucher-date range, ordered by (voucher_date, voucher_no, id).
func (r *Repository) LinesForAccount(ctx context.Context, headCode string, from, to *time.Time) ([]Line, error) {
	query := `SELECT ` + lineColumns + ` FROM ledger_lines WHERE account_head_code=$1 AND is_posted`
	args := []any{headCode}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND voucher_date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND voucher_date <= $%d`, len(args))
	}
	query += ` ORDER BY voucher_date, voucher_no, id`
	return r.queryLines(ctx, query, args...)
}

// UpdateVoucher applies whole-set fields to an unapproved voucher.
func (r *Repository) UpdateVoucher(ctx context.Context, voucherNo string, fields VoucherFields, actorID int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockVoucherSet(ctx, tx, voucherNo, true); err != nil {
		return err
	}
	if fields.VoucherDate != nil {
		if _, err := tx.Exec(ctx, `UPDATE ledger_lines SET voucher_date=$2, updated_by=$3, updated_at=NOW()
WHERE voucher_no=$1`, voucherNo, *fields.VoucherDate, actorID); err != nil {
			return err
		}
	}
	if fields.Narration != nil {
		if _, err := tx.Exec(ctx, `UPDATE ledger_lines SET narration=$2, updated_by=$3, updated_at=NOW()
WHERE voucher_no=$1`, voucherNo, *fields.Narration, actorID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ApproveVoucher marks every line of the voucher approved. Approving an
// already approved voucher is a no-op.
func (r *Repository) ApproveVoucher(ctx context.Context, voucherNo string, actorID int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockVoucherSet(ctx, tx, voucherNo, false); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE ledger_lines SET is_approved=TRUE, updated_by=$2, updated_at=NOW()
WHERE voucher_no=$1 AND NOT is_approved`, voucherNo, actorID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteVoucher removes every line of an unapproved voucher atomically.
func (r *Repository) DeleteVoucher(ctx context.Context, voucherNo string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockVoucherSet(ctx, tx, voucherNo, true); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM ledger_lines WHERE voucher_no=$1`, voucherNo); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM voucher_numbers WHERE voucher_no=$1`, voucherNo); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockVoucherSet locks the line set and optionally refuses approved vouchers.
func lockVoucherSet(ctx context.Context, tx pgx.Tx, voucherNo string, rejectApproved bool) error {
	var total, approved int64
	err := tx.QueryRow(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_approved)
FROM (SELECT is_approved FROM ledger_lines WHERE voucher_no=$1 FOR UPDATE) locked`, voucherNo).
		Scan(&total, &approved)
	if err != nil {
		return err
	}
	if total == 0 {
		return ErrVoucherNotFound
	}
	if rejectApproved && approved > 0 {
		return ErrAlreadyApproved
	}
	return nil
}
