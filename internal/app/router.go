package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-erp/praxis/internal/coa"
	"github.com/praxis-erp/praxis/internal/expenses"
	"github.com/praxis-erp/praxis/internal/incomes"
	"github.com/praxis-erp/praxis/internal/loans"
	"github.com/praxis-erp/praxis/internal/payroll"
	"github.com/praxis-erp/praxis/internal/reports"
	"github.com/praxis-erp/praxis/internal/vouchers"
	"github.com/praxis-erp/praxis/jobs"
)

// Handlers aggregates the module handlers mounted on the router. Nil entries
// are skipped so partial wiring stays possible in tests.
type Handlers struct {
	COA      *coa.Handler
	Vouchers *vouchers.Handler
	Reports  *reports.Handler
	Payroll  *payroll.Handler
	Loans    *loans.Handler
	Expenses *expenses.Handler
	Incomes  *incomes.Handler
	Jobs     *jobs.Handler
}

// NewRouter assembles the HTTP API.
func NewRouter(logger *slog.Logger, cfg *Config, h Handlers) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: logger, Config: cfg}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		if h.COA != nil {
			api.Route("/coa", h.COA.MountRoutes)
		}
		if h.Vouchers != nil {
			api.Route("/vouchers", h.Vouchers.MountRoutes)
		}
		if h.Reports != nil {
			api.Route("/reports", h.Reports.MountRoutes)
		}
		if h.Payroll != nil {
			api.Route("/payroll", h.Payroll.MountRoutes)
		}
		if h.Loans != nil {
			api.Route("/loans", h.Loans.MountRoutes)
		}
		if h.Expenses != nil {
			api.Route("/expenses", h.Expenses.MountRoutes)
		}
		if h.Incomes != nil {
			api.Route("/incomes", h.Incomes.MountRoutes)
		}
		if h.Jobs != nil {
			api.Route("/jobs", h.Jobs.MountRoutes)
		}
	})

	return r
}
