package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/praxis-erp/praxis/internal/app"
	"github.com/praxis-erp/praxis/internal/coa"
	"github.com/praxis-erp/praxis/internal/expenses"
	"github.com/praxis-erp/praxis/internal/incomes"
	"github.com/praxis-erp/praxis/internal/ledger"
	"github.com/praxis-erp/praxis/internal/loans"
	"github.com/praxis-erp/praxis/internal/payroll"
	"github.com/praxis-erp/praxis/internal/platform/cache"
	"github.com/praxis-erp/praxis/internal/platform/db"
	"github.com/praxis-erp/praxis/internal/reports"
	"github.com/praxis-erp/praxis/internal/shared"
	"github.com/praxis-erp/praxis/internal/vouchers"
	"github.com/praxis-erp/praxis/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Reports fall back to uncached reads when redis is unavailable.
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	audit := shared.NewAuditLogger(pool)
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL, logger)

	coaService := coa.NewService(coa.NewRepository(pool), audit)
	voucherService := vouchers.NewService(ledger.NewRepository(pool), audit, reportCache)
	reportService := reports.NewService(reports.NewRepository(pool), reportCache)
	payrollService := payroll.NewService(pool, audit, reportCache)
	loanService := loans.NewService(pool, audit, reportCache)
	expenseService := expenses.NewService(pool, audit, reportCache)
	incomeService := incomes.NewService(pool, audit, reportCache)

	var jobsHandler *jobs.Handler
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		jobsClient, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Warn("jobs client unavailable", slog.Any("error", err))
		} else {
			defer func() {
				if err := jobsClient.Close(); err != nil {
					logger.Warn("jobs client close", slog.Any("error", err))
				}
			}()
			jobsHandler = jobs.NewHandler(asynq.NewInspector(redisOpts), jobsClient, logger)
		}
	}

	router := app.NewRouter(logger, cfg, app.Handlers{
		COA:      coa.NewHandler(logger, coaService),
		Vouchers: vouchers.NewHandler(logger, voucherService),
		Reports:  reports.NewHandler(logger, reportService),
		Payroll:  payroll.NewHandler(logger, payrollService),
		Loans:    loans.NewHandler(logger, loanService),
		Expenses: expenses.NewHandler(logger, expenseService),
		Incomes:  incomes.NewHandler(logger, incomeService),
		Jobs:     jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
