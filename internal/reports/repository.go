package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/ledger"
	"github.com/praxis-erp/praxis/internal/platform/db"
)

// Repository reads report inputs from one consistent snapshot per call.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// PeriodBalances returns opening, period debit and period credit for every
// active transaction account. Opening sums lines dated before from; the
// period columns sum lines between from and to inclusive.
func (r *Repository) PeriodBalances(ctx context.Context, from, to time.Time) ([]AccountBalance, error) {
	const query = `
		SELECT a.head_code, a.head_name, a.head_type,
		       COALESCE(o.debit, 0) - COALESCE(o.credit, 0) AS opening,
		       COALESCE(p.debit, 0) AS debit,
		       COALESCE(p.credit, 0) AS credit
		FROM chart_of_accounts a
		LEFT JOIN (
			SELECT account_head_code, SUM(debit) AS debit, SUM(credit) AS credit
			FROM ledger_lines
			WHERE is_posted AND voucher_date < $1
			GROUP BY account_head_code
		) o ON o.account_head_code = a.head_code
		LEFT JOIN (
			SELECT account_head_code, SUM(debit) AS debit, SUM(credit) AS credit
			FROM ledger_lines
			WHERE is_posted AND voucher_date BETWEEN $1 AND $2
			GROUP BY account_head_code
		) p ON p.account_head_code = a.head_code
		WHERE a.is_active AND a.is_transaction
		ORDER BY a.head_code`

	var balances []AccountBalance
	err := db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, from, to)
		if err != nil {
			return fmt.Errorf("reports: query period balances: %w", err)
		}
		balances, err = scanBalances(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// ClosingBalances returns the cumulative debit and credit of every active
// transaction account up to and including asOf, with opening reported as zero.
func (r *Repository) ClosingBalances(ctx context.Context, asOf time.Time) ([]AccountBalance, error) {
	const query = `
		SELECT a.head_code, a.head_name, a.head_type,
		       0 AS opening,
		       COALESCE(c.debit, 0) AS debit,
		       COALESCE(c.credit, 0) AS credit
		FROM chart_of_accounts a
		LEFT JOIN (
			SELECT account_head_code, SUM(debit) AS debit, SUM(credit) AS credit
			FROM ledger_lines
			WHERE is_posted AND voucher_date <= $1
			GROUP BY account_head_code
		) c ON c.account_head_code = a.head_code
		WHERE a.is_active AND a.is_transaction
		ORDER BY a.head_code`

	var balances []AccountBalance
	err := db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, asOf)
		if err != nil {
			return fmt.Errorf("reports: query closing balances: %w", err)
		}
		balances, err = scanBalances(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

func scanBalances(rows pgx.Rows) ([]AccountBalance, error) {
	defer rows.Close()
	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.HeadCode, &b.HeadName, &b.HeadType, &b.Opening, &b.Debit, &b.Credit); err != nil {
			return nil, fmt.Errorf("reports: scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: read balances: %w", err)
	}
	return balances, nil
}

// LedgerTotals sums every posted debit and credit across all time, covering
// lines on inactive accounts as well.
func (r *Repository) LedgerTotals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var totalDebit, totalCredit decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0) FROM ledger_lines WHERE is_posted`,
	).Scan(&totalDebit, &totalCredit)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("reports: query ledger totals: %w", err)
	}
	return totalDebit, totalCredit, nil
}

// GeneralLedgerData loads one account's name, opening balance as of from, and
// its posted lines for the window, all from one snapshot.
func (r *Repository) GeneralLedgerData(ctx context.Context, headCode string, from, to time.Time) (string, decimal.Decimal, []ledger.Line, error) {
	var (
		headName string
		opening  decimal.Decimal
		lines    []ledger.Line
	)
	err := db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT head_name FROM chart_of_accounts WHERE head_code = $1`,
			headCode,
		).Scan(&headName)
		if err == pgx.ErrNoRows {
			return ledger.ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("reports: query account: %w", err)
		}

		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(debit), 0) - COALESCE(SUM(credit), 0)
			 FROM ledger_lines
			 WHERE is_posted AND account_head_code = $1 AND voucher_date < $2`,
			headCode, from,
		).Scan(&opening)
		if err != nil {
			return fmt.Errorf("reports: query opening: %w", err)
		}

		lines, err = queryLines(ctx, tx, []string{headCode}, from, to)
		return err
	})
	if err != nil {
		return "", decimal.Zero, nil, err
	}
	return headName, opening, lines, nil
}

// BookData loads the account set whose names match the keyword, its combined
// opening balance as of from, and the union of posted lines for the window.
// The name-substring selection is the existing contract for cash and bank
// books.
func (r *Repository) BookData(ctx context.Context, keyword string, from, to time.Time) ([]string, map[string]string, decimal.Decimal, []ledger.Line, error) {
	var (
		codes   []string
		names   map[string]string
		opening decimal.Decimal
		lines   []ledger.Line
	)
	err := db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		codes, names, err = matchAccounts(ctx, tx, []string{keyword})
		if err != nil {
			return err
		}
		if len(codes) == 0 {
			opening = decimal.Zero
			return nil
		}
		opening, err = openingFor(ctx, tx, codes, from)
		if err != nil {
			return err
		}
		lines, err = queryLines(ctx, tx, codes, from, to)
		return err
	})
	if err != nil {
		return nil, nil, decimal.Zero, nil, err
	}
	return codes, names, opening, lines, nil
}

// CashFlowData loads the union of cash and bank accounts, their combined
// opening balance, and matching lines for the window.
func (r *Repository) CashFlowData(ctx context.Context, from, to time.Time) (decimal.Decimal, []ledger.Line, error) {
	var (
		opening decimal.Decimal
		lines   []ledger.Line
	)
	err := db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		codes, _, err := matchAccounts(ctx, tx, []string{"Cash", "Bank"})
		if err != nil {
			return err
		}
		if len(codes) == 0 {
			opening = decimal.Zero
			return nil
		}
		opening, err = openingFor(ctx, tx, codes, from)
		if err != nil {
			return err
		}
		lines, err = queryLines(ctx, tx, codes, from, to)
		return err
	})
	if err != nil {
		return decimal.Zero, nil, err
	}
	return opening, lines, nil
}

// matchAccounts selects active transaction accounts whose name contains any
// of the keywords, or that sit under the Cash & Cash Equivalent parent and
// match one of them.
func matchAccounts(ctx context.Context, tx pgx.Tx, keywords []string) ([]string, map[string]string, error) {
	patterns := make([]string, len(keywords))
	for i, kw := range keywords {
		patterns[i] = "%" + kw + "%"
	}
	rows, err := tx.Query(ctx,
		`SELECT head_code, head_name
		 FROM chart_of_accounts
		 WHERE is_active AND is_transaction AND head_name ILIKE ANY($1)
		 ORDER BY head_code`,
		patterns,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("reports: query book accounts: %w", err)
	}
	defer rows.Close()

	var codes []string
	names := make(map[string]string)
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, nil, fmt.Errorf("reports: scan book account: %w", err)
		}
		codes = append(codes, code)
		names[code] = name
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reports: read book accounts: %w", err)
	}
	return codes, names, nil
}

func openingFor(ctx context.Context, tx pgx.Tx, codes []string, from time.Time) (decimal.Decimal, error) {
	var opening decimal.Decimal
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(debit), 0) - COALESCE(SUM(credit), 0)
		 FROM ledger_lines
		 WHERE is_posted AND account_head_code = ANY($1) AND voucher_date < $2`,
		codes, from,
	).Scan(&opening)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reports: query set opening: %w", err)
	}
	return opening, nil
}

func queryLines(ctx context.Context, tx pgx.Tx, codes []string, from, to time.Time) ([]ledger.Line, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, voucher_no, voucher_type, voucher_date, account_head_code,
		        narration, debit, credit, is_posted, is_approved
		 FROM ledger_lines
		 WHERE is_posted AND account_head_code = ANY($1)
		   AND voucher_date BETWEEN $2 AND $3
		 ORDER BY voucher_date, voucher_no, id`,
		codes, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("reports: query lines: %w", err)
	}
	defer rows.Close()

	var lines []ledger.Line
	for rows.Next() {
		var line ledger.Line
		if err := rows.Scan(
			&line.ID, &line.VoucherNo, &line.VoucherType, &line.VoucherDate,
			&line.AccountHeadCode, &line.Narration, &line.Debit, &line.Credit,
			&line.IsPosted, &line.IsApproved,
		); err != nil {
			return nil, fmt.Errorf("reports: scan line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: read lines: %w", err)
	}
	return lines, nil
}
