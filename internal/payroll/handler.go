package payroll

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/platform/httpx"
	"github.com/praxis-erp/praxis/internal/shared"
	"github.com/praxis-erp/praxis/internal/vouchers"
)

// CreateRunRequest is the wire shape for recording a draft salary run.
type CreateRunRequest struct {
	EmployeeName   string          `json:"employee_name" validate:"required"`
	Period         string          `json:"period" validate:"required"`
	GrossAmount    decimal.Decimal `json:"gross_amount" validate:"required"`
	DebitHeadCode  string          `json:"debit_head_code" validate:"required"`
	CreditHeadCode string          `json:"credit_head_code" validate:"required"`
}

// RunView is the wire shape of a salary run.
type RunView struct {
	ID             string          `json:"id"`
	EmployeeName   string          `json:"employee_name"`
	Period         string          `json:"period"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	DebitHeadCode  string          `json:"debit_head_code"`
	CreditHeadCode string          `json:"credit_head_code"`
	Status         string          `json:"status"`
	VoucherNo      string          `json:"voucher_no,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// Handler exposes payroll endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the payroll routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/runs", h.List)
	r.Post("/runs", h.Create)
	r.Post("/runs/{runID}/disburse", h.Disburse)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list payroll runs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]RunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, toRunView(run))
	}
	httpx.OK(w, http.StatusOK, map[string]any{"runs": views})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	run, err := h.service.Create(r.Context(), Run{
		EmployeeName:   req.EmployeeName,
		Period:         req.Period,
		GrossAmount:    req.GrossAmount,
		DebitHeadCode:  req.DebitHeadCode,
		CreditHeadCode: req.CreditHeadCode,
	}, shared.ActorID(r))
	if err != nil {
		h.logger.Error("create payroll run", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"run": toRunView(run)})
}

func (h *Handler) Disburse(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "invalid run id")
		return
	}
	voucherNo, err := h.service.Disburse(r.Context(), runID, shared.ActorID(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"voucher_no": voucherNo})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var invalid *vouchers.InvalidAccountError
	switch {
	case errors.Is(err, ErrRunNotFound):
		httpx.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyPaid), errors.As(err, &invalid):
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("payroll request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func toRunView(run Run) RunView {
	return RunView{
		ID:             run.ID.String(),
		EmployeeName:   run.EmployeeName,
		Period:         run.Period,
		GrossAmount:    run.GrossAmount,
		DebitHeadCode:  run.DebitHeadCode,
		CreditHeadCode: run.CreditHeadCode,
		Status:         run.Status,
		VoucherNo:      run.VoucherNo,
		PaidAt:         run.PaidAt,
	}
}
