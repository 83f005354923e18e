package deposit

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/library/internal/account"
	"github.com/fkhayef/library/internal/logger"
	"github.com/fkhayef/library/pkg/middleware"
	"github.com/fkhayef/library/pkg/response"
)

// Handler handles HTTP requests for deposit operations
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new deposit handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for deposit endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.RequireRole(middleware.RoleReader)).Get("/my", h.ListMyDeposits)
	r.With(middleware.RequireRole(middleware.RoleAdmin)).Get("/reconciliation", h.Reconcile)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(middleware.StaffRoles...))

		r.Get("/", h.ListDeposits)
		r.Post("/", h.CreateDeposit)
		r.Post("/refund", h.RefundDeposit)
	})

	return r
}

// ListDeposits handles GET /deposits
// @Summary      List deposit transactions
// @Tags         deposits
// @Security     BearerAuth
// @Produce      json
// @Param        type            query string false "deposit or refund"
// @Param        library_card_id query int    false "Card ID"
// @Param        page            query int    false "Page"
// @Param        limit           query int    false "Page size"
// @Success      200 {object} response.APIResponse{data=[]View}
// @Failure      400 {object} response.APIResponse
// @Router       /deposits [get]
func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	page, limit := response.ParsePage(r)
	q := r.URL.Query()

	var cardID *int64
	if raw := q.Get("library_card_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid library card ID")
			return
		}
		cardID = &id
	}

	txs, total, err := h.service.ListDeposits(r.Context(), Type(q.Get("type")), cardID, page, limit)
	if err != nil {
		h.writeError(w, r, err, "Failed to list deposits")
		return
	}

	response.JSONWithMeta(w, http.StatusOK, txs, response.NewMeta(page, limit, total))
}

// ListMyDeposits handles GET /deposits/my
// @Summary      My deposit ledger and balance
// @Tags         deposits
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=MyDepositsResponse}
// @Router       /deposits/my [get]
func (h *Handler) ListMyDeposits(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	mine, err := h.service.ListMyDeposits(r.Context(), accountID)
	if err != nil {
		h.writeError(w, r, err, "Failed to list deposits")
		return
	}

	response.JSON(w, http.StatusOK, toMyDepositsResponse(mine))
}

// CreateDeposit handles POST /deposits
// @Summary      Record a deposit
// @Tags         deposits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Deposit"
// @Success      201 {object} response.APIResponse{data=Transaction}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /deposits [post]
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.service.CreateDeposit, "Deposit recorded", "Failed to record deposit")
}

// RefundDeposit handles POST /deposits/refund
// @Summary      Refund a deposit
// @Tags         deposits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Refund"
// @Success      201 {object} response.APIResponse{data=Transaction}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /deposits/refund [post]
func (h *Handler) RefundDeposit(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.service.RefundDeposit, "Deposit refunded", "Failed to refund deposit")
}

type recordFunc func(ctx context.Context, cardID int64, amount decimal.Decimal, notes *string, staffAccountID int64) (*Transaction, error)

func (h *Handler) record(w http.ResponseWriter, r *http.Request, fn recordFunc, message, fallback string) {
	accountID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.LibraryCardID <= 0 {
		response.BadRequest(w, "library_card_id is required")
		return
	}

	t, err := fn(r.Context(), req.LibraryCardID, req.Amount, req.Notes, accountID)
	if err != nil {
		h.writeError(w, r, err, fallback)
		return
	}

	response.JSONWithMessage(w, http.StatusCreated, message, t)
}

// Reconcile handles GET /deposits/reconciliation
// @Summary      Compare card balances with the ledger
// @Tags         deposits
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=ReconciliationResponse}
// @Router       /deposits/reconciliation [get]
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.Reconcile(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Failed to reconcile deposits")
		return
	}

	response.JSON(w, http.StatusOK, toReconciliationResponse(found))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrCardNotFound), errors.Is(err, account.ErrStaffNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInsufficientDeposit), errors.Is(err, ErrActiveBorrows), errors.Is(err, ErrPendingFines):
		response.BadRequest(w, err.Error())
	default:
		log := logger.FromContext(r.Context(), h.log)
		log.Error().Err(err).Msg(fallback)
		response.InternalError(w, fallback)
	}
}
