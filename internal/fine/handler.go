package fine

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fkhayef/library/internal/account"
	"github.com/fkhayef/library/internal/logger"
	"github.com/fkhayef/library/pkg/middleware"
	"github.com/fkhayef/library/pkg/response"
)

// Handler handles HTTP requests for fine operations
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new fine handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for fine endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.RequireRole(middleware.RoleReader)).Get("/my", h.ListMyFines)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(middleware.StaffRoles...))

		r.Get("/", h.ListFines)
		r.Post("/materialize", h.Materialize)
		r.Get("/borrow/{borrowRequestId}", h.ListBorrowFines)
		r.Put("/{id}/pay", h.PayFine)
		r.Put("/pay-all/{borrowRequestId}", h.PayAllFines)
	})

	r.With(middleware.RequireRole(middleware.RoleAdmin)).Delete("/{id}", h.DeleteFine)

	return r
}

// ListFines handles GET /fines
// @Summary      List fines
// @Description  Creates missing overdue fines first, then lists fines newest first with ledger totals
// @Tags         fines
// @Security     BearerAuth
// @Produce      json
// @Param        status query string false "pending or paid"
// @Param        page   query int    false "Page"
// @Param        limit  query int    false "Page size"
// @Success      200 {object} response.APIResponse{data=ListResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /fines [get]
func (h *Handler) ListFines(w http.ResponseWriter, r *http.Request) {
	page, limit := response.ParsePage(r)
	status := Status(r.URL.Query().Get("status"))

	result, err := h.service.ListFines(r.Context(), status, page, limit)
	if err != nil {
		h.writeError(w, r, err, "Failed to list fines")
		return
	}

	response.JSONWithMeta(w, http.StatusOK,
		&ListResponse{Fines: result.Fines, Summary: result.Totals},
		response.NewMeta(page, limit, result.Total))
}

// Materialize handles POST /fines/materialize
// @Summary      Create overdue fines
// @Tags         fines
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=MaterializeResponse}
// @Router       /fines/materialize [post]
func (h *Handler) Materialize(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.Materialize(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Failed to materialize fines")
		return
	}

	response.JSON(w, http.StatusOK, &MaterializeResponse{Created: created})
}

// ListMyFines handles GET /fines/my
// @Summary      List my fines
// @Tags         fines
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=MyFinesResponse}
// @Router       /fines/my [get]
func (h *Handler) ListMyFines(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	fines, err := h.service.ListMyFines(r.Context(), accountID)
	if err != nil {
		h.writeError(w, r, err, "Failed to list fines")
		return
	}

	response.JSON(w, http.StatusOK, toMyFinesResponse(fines))
}

// ListBorrowFines handles GET /fines/borrow/{borrowRequestId}
// @Summary      List fines of a borrow request
// @Tags         fines
// @Security     BearerAuth
// @Produce      json
// @Param        borrowRequestId path int true "Borrow request ID"
// @Success      200 {object} response.APIResponse{data=[]View}
// @Failure      404 {object} response.APIResponse
// @Router       /fines/borrow/{borrowRequestId} [get]
func (h *Handler) ListBorrowFines(w http.ResponseWriter, r *http.Request) {
	borrowID, err := strconv.ParseInt(chi.URLParam(r, "borrowRequestId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid borrow request ID")
		return
	}

	fines, err := h.service.ListBorrowFines(r.Context(), borrowID)
	if err != nil {
		h.writeError(w, r, err, "Failed to list fines")
		return
	}

	response.JSON(w, http.StatusOK, fines)
}

// PayFine handles PUT /fines/{id}/pay
// @Summary      Pay a fine
// @Tags         fines
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Fine ID"
// @Success      200 {object} response.APIResponse{data=Fine}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /fines/{id}/pay [put]
func (h *Handler) PayFine(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	fineID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid fine ID")
		return
	}

	f, err := h.service.PayFine(r.Context(), fineID, accountID)
	if err != nil {
		h.writeError(w, r, err, "Failed to pay fine")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, "Fine paid", f)
}

// PayAllFines handles PUT /fines/pay-all/{borrowRequestId}
// @Summary      Pay every pending fine of a borrow request
// @Tags         fines
// @Security     BearerAuth
// @Produce      json
// @Param        borrowRequestId path int true "Borrow request ID"
// @Success      200 {object} response.APIResponse{data=PayAllResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /fines/pay-all/{borrowRequestId} [put]
func (h *Handler) PayAllFines(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	borrowID, err := strconv.ParseInt(chi.URLParam(r, "borrowRequestId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid borrow request ID")
		return
	}

	updated, err := h.service.PayAllFines(r.Context(), borrowID, accountID)
	if err != nil {
		h.writeError(w, r, err, "Failed to pay fines")
		return
	}

	response.JSON(w, http.StatusOK, &PayAllResponse{Updated: updated})
}

// DeleteFine handles DELETE /fines/{id}
// @Summary      Delete a pending fine
// @Tags         fines
// @Security     BearerAuth
// @Param        id path int true "Fine ID"
// @Success      204
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /fines/{id} [delete]
func (h *Handler) DeleteFine(w http.ResponseWriter, r *http.Request) {
	fineID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid fine ID")
		return
	}

	if err := h.service.DeleteFine(r.Context(), fineID); err != nil {
		h.writeError(w, r, err, "Failed to delete fine")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrFineNotFound), errors.Is(err, ErrBorrowNotFound), errors.Is(err, account.ErrStaffNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrFineAlreadyPaid), errors.Is(err, ErrPaidFineImmutable), errors.Is(err, ErrInvalidStatus):
		response.BadRequest(w, err.Error())
	default:
		log := logger.FromContext(r.Context(), h.log)
		log.Error().Err(err).Msg(fallback)
		response.InternalError(w, fallback)
	}
}
