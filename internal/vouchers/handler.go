package vouchers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/praxis-erp/praxis/internal/ledger"
	"github.com/praxis-erp/praxis/internal/platform/httpx"
	"github.com/praxis-erp/praxis/internal/shared"
)

// Handler exposes voucher posting and lifecycle endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/debit", h.PostDebit)
	r.Post("/credit", h.PostCredit)
	r.Post("/contra", h.PostContra)
	r.Post("/journal", h.PostJournal)
	r.Get("/{voucherNo}", h.Show)
	r.Patch("/{voucherNo}", h.Update)
	r.Post("/{voucherNo}/approve", h.Approve)
	r.Delete("/{voucherNo}", h.Delete)
}

func (h *Handler) PostDebit(w http.ResponseWriter, r *http.Request) {
	var req DebitVoucherRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := shared.ParseDate(req.VoucherDate)
	if err != nil {
		httpx.FailFields(w, http.StatusUnprocessableEntity, map[string]string{"voucher_date": err.Error()})
		return
	}
	voucherNo, err := h.service.PostDebitVoucher(r.Context(), DebitVoucherInput{
		VoucherDate:  date,
		DebitAccount: req.DebitAccount,
		Amount:       req.Amount,
		Credits:      toAmountEntries(req.Credits),
		Narration:    req.Narration,
	}, shared.ActorID(r))
	h.respondPosted(w, voucherNo, err)
}

func (h *Handler) PostCredit(w http.ResponseWriter, r *http.Request) {
	var req CreditVoucherRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := shared.ParseDate(req.VoucherDate)
	if err != nil {
		httpx.FailFields(w, http.StatusUnprocessableEntity, map[string]string{"voucher_date": err.Error()})
		return
	}
	voucherNo, err := h.service.PostCreditVoucher(r.Context(), CreditVoucherInput{
		VoucherDate:   date,
		CreditAccount: req.CreditAccount,
		Amount:        req.Amount,
		Debits:        toAmountEntries(req.Debits),
		Narration:     req.Narration,
	}, shared.ActorID(r))
	h.respondPosted(w, voucherNo, err)
}

func (h *Handler) PostContra(w http.ResponseWriter, r *http.Request) {
	var req ContraVoucherRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := shared.ParseDate(req.VoucherDate)
	if err != nil {
		httpx.FailFields(w, http.StatusUnprocessableEntity, map[string]string{"voucher_date": err.Error()})
		return
	}
	voucherNo, err := h.service.PostContraVoucher(r.Context(), ContraVoucherInput{
		VoucherDate:   date,
		DebitAccount:  req.DebitAccount,
		CreditAccount: req.CreditAccount,
		Amount:        req.Amount,
		Narration:     req.Narration,
	}, shared.ActorID(r))
	h.respondPosted(w, voucherNo, err)
}

func (h *Handler) PostJournal(w http.ResponseWriter, r *http.Request) {
	var req JournalVoucherRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := shared.ParseDate(req.VoucherDate)
	if err != nil {
		httpx.FailFields(w, http.StatusUnprocessableEntity, map[string]string{"voucher_date": err.Error()})
		return
	}
	voucherNo, err := h.service.PostJournalVoucher(r.Context(), JournalVoucherInput{
		VoucherDate: date,
		Entries:     toJournalEntries(req.Entries),
		Narration:   req.Narration,
	}, shared.ActorID(r))
	h.respondPosted(w, voucherNo, err)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.Lines(r.Context(), chi.URLParam(r, "voucherNo"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"lines": toLineViews(lines)})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateVoucherRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	fields := ledger.VoucherFields{Narration: req.Narration}
	if req.VoucherDate != nil {
		date, err := shared.ParseDate(*req.VoucherDate)
		if err != nil {
			httpx.FailFields(w, http.StatusUnprocessableEntity, map[string]string{"voucher_date": err.Error()})
			return
		}
		fields.VoucherDate = &date
	}
	if err := h.service.Update(r.Context(), chi.URLParam(r, "voucherNo"), fields, shared.ActorID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Approve(r.Context(), chi.URLParam(r, "voucherNo"), shared.ActorID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "voucherNo"), shared.ActorID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "malformed request body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.FailFields(w, http.StatusUnprocessableEntity, validationErrors(err))
		return false
	}
	return true
}

func (h *Handler) respondPosted(w http.ResponseWriter, voucherNo string, err error) {
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"voucher_no": voucherNo})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var unbalanced *UnbalancedError
	var invalidAccount *InvalidAccountError
	switch {
	case errors.As(err, &unbalanced):
		httpx.FailFields(w, http.StatusUnprocessableEntity, map[string]string{
			"debit_total":  unbalanced.Debit.StringFixed(2),
			"credit_total": unbalanced.Credit.StringFixed(2),
			"message":      "debit and credit totals must match",
		})
	case errors.As(err, &invalidAccount):
		httpx.Fail(w, http.StatusUnprocessableEntity, invalidAccount.Error())
	case errors.Is(err, ErrTooFewLines), errors.Is(err, ErrNegativeAmount):
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrVoucherNotFound):
		httpx.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrAlreadyApproved):
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("voucher request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func validationErrors(err error) map[string]string {
	out := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			out[fe.Field()] = "failed " + fe.Tag() + " validation"
		}
		return out
	}
	out["request"] = err.Error()
	return out
}
