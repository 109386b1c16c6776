package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-erp/praxis/internal/ledger"
	"github.com/praxis-erp/praxis/internal/platform/httpx"
	"github.com/praxis-erp/praxis/internal/shared"
)

// Handler exposes the report endpoints. Every report reads a consistent
// snapshot; date parameters arrive as query strings.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/profit-and-loss", h.ProfitAndLoss)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/general-ledger/{headCode}", h.GeneralLedger)
	r.Get("/cash-book", h.CashBook)
	r.Get("/bank-book", h.BankBook)
	r.Get("/cash-flow", h.CashFlow)
}

// queryDate parses a query date, returning the zero time when absent or
// malformed; the service reports missing dates as parameter errors.
func queryDate(r *http.Request, name string) time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}
	}
	t, err := shared.ParseDate(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	withOpening := r.URL.Query().Get("with_opening") != "false"
	report, err := h.service.TrialBalance(r.Context(), queryDate(r, "from"), queryDate(r, "to"), withOpening)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"trial_balance": report})
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ProfitAndLoss(r.Context(), queryDate(r, "from"), queryDate(r, "to"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"profit_and_loss": report})
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.BalanceSheet(r.Context(), queryDate(r, "as_of_date"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"balance_sheet": report})
}

func (h *Handler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GeneralLedger(r.Context(), chi.URLParam(r, "headCode"), queryDate(r, "from"), queryDate(r, "to"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"general_ledger": report})
}

func (h *Handler) CashBook(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.CashBook(r.Context(), queryDate(r, "from"), queryDate(r, "to"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"cash_book": report})
}

func (h *Handler) BankBook(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.BankBook(r.Context(), queryDate(r, "from"), queryDate(r, "to"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"bank_book": report})
}

func (h *Handler) CashFlow(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.CashFlow(r.Context(), queryDate(r, "from"), queryDate(r, "to"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"cash_flow": report})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var param ParamError
	switch {
	case errors.As(err, &param):
		httpx.FailFields(w, http.StatusUnprocessableEntity, map[string]string{param.Field: param.Reason})
	case errors.Is(err, ledger.ErrAccountNotFound):
		httpx.Fail(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("report request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
