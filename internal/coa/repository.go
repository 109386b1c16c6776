package coa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxis-erp/praxis/internal/platform/db"
)

const accountColumns = `head_code, head_name, parent_head_name, head_level, head_type,
is_active, is_transaction, is_general_ledger, is_budget, is_depreciation, depreciation_rate,
created_by, updated_by, created_at, updated_at`

// Repository persists chart of accounts nodes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.HeadCode, &a.HeadName, &a.ParentHeadName, &a.HeadLevel, &a.HeadType,
		&a.IsActive, &a.IsTransaction, &a.IsGeneralLedger, &a.IsBudget, &a.IsDepreciation, &a.DepreciationRate,
		&a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts a new account. Duplicate head code or head name surfaces as
// ErrDuplicateHead via the unique constraints.
func (r *Repository) Create(ctx context.Context, a Account) (Account, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO chart_of_accounts
(head_code, head_name, parent_head_name, head_level, head_type, is_active, is_transaction,
 is_general_ledger, is_budget, is_depreciation, depreciation_rate, created_by, updated_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
RETURNING `+accountColumns, a.HeadCode, a.HeadName, a.ParentHeadName, a.HeadLevel, a.HeadType,
		a.IsActive, a.IsTransaction, a.IsGeneralLedger, a.IsBudget, a.IsDepreciation, a.DepreciationRate, a.CreatedBy)
	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrDuplicateHead
		}
		return Account{}, err
	}
	return created, nil
}

// Find fetches one account by head code.
func (r *Repository) Find(ctx context.Context, headCode string) (Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE head_code=$1`, headCode)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// List returns accounts ordered by head code. When activeOnly is set,
// inactive accounts are skipped.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM chart_of_accounts`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY head_code`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ChildrenOf returns all accounts whose parent head name matches.
func (r *Repository) ChildrenOf(ctx context.Context, headName string) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts
WHERE parent_head_name=$1 ORDER BY head_code`, headName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Update modifies the mutable subset of an account.
func (r *Repository) Update(ctx context.Context, headCode string, fields UpdateFields, actorID int64) (Account, error) {
	sets := []string{"updated_by = $2", "updated_at = NOW()"}
	args := []any{headCode, actorID}
	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.IsActive != nil {
		appendSet("is_active", *fields.IsActive)
	}
	if fields.IsTransaction != nil {
		appendSet("is_transaction", *fields.IsTransaction)
	}
	if fields.IsGeneralLedger != nil {
		appendSet("is_general_ledger", *fields.IsGeneralLedger)
	}
	if fields.IsBudget != nil {
		appendSet("is_budget", *fields.IsBudget)
	}
	if fields.IsDepreciation != nil {
		appendSet("is_depreciation", *fields.IsDepreciation)
	}
	if fields.DepreciationRate != nil {
		appendSet("depreciation_rate", *fields.DepreciationRate)
	}
	query := `UPDATE chart_of_accounts SET ` + strings.Join(sets, ", ") +
		` WHERE head_code = $1 RETURNING ` + accountColumns
	a, err := scanAccount(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// Rename changes an account's head name and cascades the new name into every
// child's parent reference within one transaction. The name-keyed hierarchy
// makes this cascade load-bearing.
func (r *Repository) Rename(ctx context.Context, headCode, newName string, actorID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var oldName string
		err := tx.QueryRow(ctx, `SELECT head_name FROM chart_of_accounts WHERE head_code=$1 FOR UPDATE`, headCode).Scan(&oldName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE chart_of_accounts SET head_name=$2, updated_by=$3, updated_at=NOW()
WHERE head_code=$1`, headCode, newName, actorID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateHead
			}
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE chart_of_accounts SET parent_head_name=$2, updated_by=$3, updated_at=NOW()
WHERE parent_head_name=$1`, oldName, newName, actorID)
		return err
	})
}

// Delete removes an account unless it has ledger lines or child accounts.
// Both guards run inside the deleting transaction.
func (r *Repository) Delete(ctx context.Context, headCode string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var headName string
		err := tx.QueryRow(ctx, `SELECT head_name FROM chart_of_accounts WHERE head_code=$1 FOR UPDATE`, headCode).Scan(&headName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
		var lineCount int64
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_lines WHERE account_head_code=$1`, headCode).Scan(&lineCount); err != nil {
			return err
		}
		if lineCount > 0 {
			return ErrHasTransactions
		}
		var childCount int64
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM chart_of_accounts WHERE parent_head_name=$1`, headName).Scan(&childCount); err != nil {
			return err
		}
		if childCount > 0 {
			return ErrHasChildren
		}
		_, err = tx.Exec(ctx, `DELETE FROM chart_of_accounts WHERE head_code=$1`, headCode)
		return err
	})
}
