package sellers_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
	"cine-storefront/internal/sellers"
	"cine-storefront/internal/utils"
)

type Handler struct {
	Sellers *sellers.Service
	Logger  *logger.Logger
}

func NewHandler(svc *sellers.Service, log *logger.Logger) *Handler {
	return &Handler{Sellers: svc, Logger: log}
}

// RegisterRoutes mounts the seller admin routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sellers", func(r chi.Router) {
		r.Get("/", h.ListSellers)
		r.Post("/", h.CreateSeller)
		r.Patch("/{sellerId}", h.UpdateSeller)
	})
}

func (h *Handler) ListSellers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Sellers.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListSellers: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}
	if list == nil {
		list = []models.Seller{}
	}
	utils.WriteSuccess(w, http.StatusOK, "Vendedores", list)
}

func (h *Handler) CreateSeller(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Requisição inválida", "invalid_body")
		return
	}

	seller, err := h.Sellers.Create(r.Context(), req.Name)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("CreateSeller: %v", err))
		}
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Vendedor cadastrado", seller)
}

// UpdateSeller handles PATCH /sellers/{sellerId} with {"active": bool}.
func (h *Handler) UpdateSeller(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerId")

	var req struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Requisição inválida", "invalid_body")
		return
	}
	if req.Active == nil {
		utils.WriteFieldError(w, "active", "Informe se o vendedor está ativo")
		return
	}

	seller, err := h.Sellers.SetActive(r.Context(), sellerID, *req.Active)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("UpdateSeller: %v", err))
		}
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateSeller: %s active=%t", seller.Name, seller.Active))
	utils.WriteSuccess(w, http.StatusOK, "Vendedor atualizado", seller)
}
