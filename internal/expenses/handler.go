package expenses

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/platform/httpx"
	"github.com/praxis-erp/praxis/internal/shared"
	"github.com/praxis-erp/praxis/internal/vouchers"
)

// RecordRequest is the wire shape for recording an expense.
type RecordRequest struct {
	Category        string          `json:"category" validate:"required"`
	ExpenseHeadCode string          `json:"expense_head_code" validate:"required"`
	PaymentHeadCode string          `json:"payment_head_code" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	Narration       string          `json:"narration"`
	EntryDate       string          `json:"entry_date"`
}

// EntryView is the wire shape of an expense entry.
type EntryView struct {
	ID              string          `json:"id"`
	Category        string          `json:"category"`
	ExpenseHeadCode string          `json:"expense_head_code"`
	PaymentHeadCode string          `json:"payment_head_code"`
	Amount          decimal.Decimal `json:"amount"`
	Narration       string          `json:"narration,omitempty"`
	VoucherNo       string          `json:"voucher_no"`
	EntryDate       string          `json:"entry_date"`
}

// Handler exposes expense endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Record)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list expenses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toEntryView(e))
	}
	httpx.OK(w, http.StatusOK, map[string]any{"expenses": views})
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var entryDate time.Time
	if req.EntryDate != "" {
		parsed, err := shared.ParseDate(req.EntryDate)
		if err != nil {
			httpx.FailFields(w, http.StatusUnprocessableEntity, map[string]string{"entry_date": "must be YYYY-MM-DD"})
			return
		}
		entryDate = parsed
	}

	entry, err := h.service.Record(r.Context(), Entry{
		Category:        req.Category,
		ExpenseHeadCode: req.ExpenseHeadCode,
		PaymentHeadCode: req.PaymentHeadCode,
		Amount:          req.Amount,
		Narration:       req.Narration,
		EntryDate:       entryDate,
	}, shared.ActorID(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"expense": toEntryView(entry)})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var invalid *vouchers.InvalidAccountError
	switch {
	case errors.As(err, &invalid), errors.Is(err, vouchers.ErrNegativeAmount):
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("expense request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func toEntryView(e Entry) EntryView {
	return EntryView{
		ID:              e.ID.String(),
		Category:        e.Category,
		ExpenseHeadCode: e.ExpenseHeadCode,
		PaymentHeadCode: e.PaymentHeadCode,
		Amount:          e.Amount,
		Narration:       e.Narration,
		VoucherNo:       e.VoucherNo,
		EntryDate:       e.EntryDate.Format(shared.DateLayout),
	}
}
