package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/praxis-erp/praxis/internal/reports"
	"github.com/praxis-erp/praxis/internal/shared"
)

// IntegrityChecker verifies that the whole ledger still balances: the sum of
// all posted debits must equal the sum of all posted credits within the
// posting tolerance. A mismatch means a write bypassed the posting engine.
type IntegrityChecker struct {
	repo   *reports.Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
	now    func() time.Time
}

func NewIntegrityChecker(repo *reports.Repository, audit *shared.AuditLogger, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *IntegrityChecker) Handle(ctx context.Context, _ *asynq.Task) error {
	return c.Run(ctx)
}

// Run executes the check once.
func (c *IntegrityChecker) Run(ctx context.Context) error {
	totalDebit, totalCredit, err := c.repo.LedgerTotals(ctx)
	if err != nil {
		return fmt.Errorf("jobs: load ledger totals: %w", err)
	}
	diff := totalDebit.Sub(totalCredit).Abs()

	if diff.GreaterThanOrEqual(reports.Tolerance) {
		c.logger.ErrorContext(ctx, "ledger out of balance",
			slog.String("total_debit", totalDebit.String()),
			slog.String("total_credit", totalCredit.String()),
			slog.String("difference", diff.String()))
		if c.audit != nil {
			_ = c.audit.Record(ctx, shared.AuditLog{
				ActorID: 0, Action: "ledger.integrity_failed", Entity: "ledger", EntityID: "all",
				Meta: map[string]any{
					"total_debit":  totalDebit.String(),
					"total_credit": totalCredit.String(),
					"difference":   diff.String(),
				},
				At: c.now(),
			})
		}
		return nil
	}

	c.logger.InfoContext(ctx, "ledger integrity check passed",
		slog.String("total_debit", totalDebit.String()),
		slog.String("total_credit", totalCredit.String()))
	return nil
}
