package analytics_api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cine-storefront/internal/analytics"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/utils"
)

// Handler handles analytics HTTP endpoints
type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

func NewHandler(service *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// RegisterRoutes registers the analytics routes on an admin router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/leaderboard", h.GetLeaderboard)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("ANALYTICS", "GetDashboard: building summary")

	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("GetDashboard: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}

	h.Logger.Debug("ANALYTICS", fmt.Sprintf("GetDashboard: %d orders, revenue %s", d.Orders, d.TotalRevenue.StringFixed(2)))
	utils.WriteSuccess(w, http.StatusOK, "Resumo", d)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("ANALYTICS", "GetLeaderboard: ranking sellers")

	ranking, err := h.Service.Leaderboard(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("GetLeaderboard: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Ranking de vendedores", ranking)
}
