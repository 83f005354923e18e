package setting

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fkhayef/library/internal/logger"
	"github.com/fkhayef/library/pkg/middleware"
	"github.com/fkhayef/library/pkg/response"
)

// FineRateResponse reports the effective fine rate
type FineRateResponse struct {
	FineRatePercent int  `json:"fine_rate_percent"`
	IsDefault       bool `json:"is_default"`
}

// UpdateFineRateRequest is the body of PUT /settings/fine-rate
type UpdateFineRateRequest struct {
	FineRatePercent *int `json:"fine_rate_percent"`
}

// Handler handles HTTP requests for settings
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for settings endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.RequireRole(middleware.StaffRoles...)).Get("/fine-rate", h.GetFineRate)
	r.With(middleware.RequireRole(middleware.RoleAdmin)).Put("/fine-rate", h.UpdateFineRate)

	return r
}

// GetFineRate handles GET /settings/fine-rate
// @Summary      Get fine rate
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=FineRateResponse}
// @Router       /settings/fine-rate [get]
func (h *Handler) GetFineRate(w http.ResponseWriter, r *http.Request) {
	rate, stored := h.service.FineRate(r.Context())
	response.JSON(w, http.StatusOK, &FineRateResponse{FineRatePercent: rate, IsDefault: !stored})
}

// UpdateFineRate handles PUT /settings/fine-rate
// @Summary      Set fine rate
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body UpdateFineRateRequest true "New rate"
// @Success      200 {object} response.APIResponse{data=FineRateResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /settings/fine-rate [put]
func (h *Handler) UpdateFineRate(w http.ResponseWriter, r *http.Request) {
	var req UpdateFineRateRequest
	if err := response.Decode(r, &req); err != nil || req.FineRatePercent == nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.SetFineRate(r.Context(), *req.FineRatePercent); err != nil {
		if errors.Is(err, ErrInvalidRate) {
			response.BadRequest(w, err.Error())
			return
		}
		log := logger.FromContext(r.Context(), h.log)
		log.Error().Err(err).Int("fine_rate_percent", *req.FineRatePercent).Msg("Failed to update fine rate")
		response.InternalError(w, "Failed to update fine rate")
		return
	}

	response.JSON(w, http.StatusOK, &FineRateResponse{FineRatePercent: *req.FineRatePercent})
}
