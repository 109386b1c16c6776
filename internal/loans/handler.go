package loans

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

// GrantRequest is the wire shape for granting a loan.
type GrantRequest struct {
	Borrower           string          `json:"borrower" validate:"required"`
	Principal          decimal.Decimal `json:"principal" validate:"required"`
	ReceivableHeadCode string          `json:"receivable_head_code" validate:"required"`
	CashHeadCode       string          `json:"cash_head_code" validate:"required"`
}

// LoanView is the wire shape of a loan.
type LoanView struct {
	ID                 string          `json:"id"`
	Borrower           string          `json:"borrower"`
	Principal          decimal.Decimal `json:"principal"`
	ReceivableHeadCode string          `json:"receivable_head_code"`
	CashHeadCode       string          `json:"cash_head_code"`
	Status             string          `json:"status"`
	GrantVoucherNo     string          `json:"grant_voucher_no"`
	SettleVoucherNo    string          `json:"settle_voucher_no,omitempty"`
	SettledAt          *time.Time      `json:"settled_at,omitempty"`
}

// Handler exposes loan endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the loan routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Grant)
	r.Post("/{loanID}/settle", h.Settle)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list loans", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]LoanView, 0, len(loans))
	for _, loan := range loans {
		views = append(views, toLoanView(loan))
	}
	httpx.OK(w, http.StatusOK, map[string]any{"loans": views})
}

func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	loan, err := h.service.Grant(r.Context(), Loan{
		Borrower:           req.Borrower,
		Principal:          req.Principal,
		ReceivableHeadCode: req.ReceivableHeadCode,
		CashHeadCode:       req.CashHeadCode,
	}, shared.ActorID(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"loan": toLoanView(loan)})
}

func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(chi.URLParam(r, "loanID"))
	if err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "invalid loan id")
		return
	}
	voucherNo, err := h.service.Settle(r.Context(), loanID, shared.ActorID(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"voucher_no": voucherNo})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var invalid *vouchers.InvalidAccountError
	switch {
	case errors.Is(err, ErrLoanNotFound):
		httpx.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadySettled), errors.As(err, &invalid):
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("loan request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func toLoanView(loan Loan) LoanView {
	return LoanView{
		ID:                 loan.ID.String(),
		Borrower:           loan.Borrower,
		Principal:          loan.Principal,
		ReceivableHeadCode: loan.ReceivableHeadCode,
		CashHeadCode:       loan.CashHeadCode,
		Status:             loan.Status,
		GrantVoucherNo:     loan.GrantVoucherNo,
		SettleVoucherNo:    loan.SettleVoucherNo,
		SettledAt:          loan.SettledAt,
	}
}
