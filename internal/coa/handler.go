package coa

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/praxis-erp/praxis/internal/platform/httpx"
	"github.com/praxis-erp/praxis/internal/shared"
)

// Handler exposes chart of accounts endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the chart of accounts routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.List)
	r.Get("/accounts/tree", h.Tree)
	r.Get("/accounts/{headCode}", h.Show)
	r.Get("/accounts/{headCode}/children", h.Children)
	r.Post("/accounts", h.Create)
	r.Patch("/accounts/{headCode}", h.Update)
	r.Post("/accounts/{headCode}/rename", h.Rename)
	r.Delete("/accounts/{headCode}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"
	accounts, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"accounts": toAccountViews(accounts)})
}

func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"
	nodes, err := h.service.Tree(r.Context(), activeOnly)
	if err != nil {
		if errors.Is(err, ErrCycle) {
			httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("build account tree", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"tree": toTreeView(nodes)})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Get(r.Context(), chi.URLParam(r, "headCode"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"account": toAccountView(account)})
}

func (h *Handler) Children(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Get(r.Context(), chi.URLParam(r, "headCode"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	children, err := h.service.Children(r.Context(), account.HeadName)
	if err != nil {
		h.logger.Error("list children", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"accounts": toAccountViews(children)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FailFields(w, http.StatusUnprocessableEntity, validationErrors(err))
		return
	}

	headType := HeadType(req.HeadType)
	if !headType.Valid() {
		// Accept the legacy single-letter codes as well.
		mapped, err := HeadTypeFromCode(req.HeadType)
		if err != nil {
			httpx.FailFields(w, http.StatusUnprocessableEntity, map[string]string{"head_type": "must be Asset, Liability, Income, or Expense"})
			return
		}
		headType = mapped
	}

	rate := decimal.Zero
	if req.DepreciationRate != nil {
		rate = *req.DepreciationRate
	}
	account := Account{
		HeadCode:         req.HeadCode,
		HeadName:         req.HeadName,
		ParentHeadName:   req.ParentHeadName,
		HeadLevel:        req.HeadLevel,
		HeadType:         headType,
		IsActive:         req.IsActive,
		IsTransaction:    req.IsTransaction,
		IsGeneralLedger:  req.IsGeneralLedger,
		IsBudget:         req.IsBudget,
		IsDepreciation:   req.IsDepreciation,
		DepreciationRate: rate,
	}

	created, err := h.service.Create(r.Context(), account, shared.ActorID(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"account": toAccountView(created)})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	fields := UpdateFields{
		IsActive:         req.IsActive,
		IsTransaction:    req.IsTransaction,
		IsGeneralLedger:  req.IsGeneralLedger,
		IsBudget:         req.IsBudget,
		IsDepreciation:   req.IsDepreciation,
		DepreciationRate: req.DepreciationRate,
	}
	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "headCode"), fields, shared.ActorID(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"account": toAccountView(updated)})
}

func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FailFields(w, http.StatusUnprocessableEntity, validationErrors(err))
		return
	}
	if err := h.service.Rename(r.Context(), chi.URLParam(r, "headCode"), req.HeadName, shared.ActorID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "headCode"), shared.ActorID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		httpx.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateHead), errors.Is(err, ErrHasTransactions), errors.Is(err, ErrHasChildren):
		httpx.Fail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("coa request failed", slog.Any("error", err))
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
