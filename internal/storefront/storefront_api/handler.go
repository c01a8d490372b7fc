package storefront_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cine-storefront/internal/catalog"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/sse"
	"cine-storefront/internal/storefront"
	qr "cine-storefront/internal/tickets/qr_generator"
	"cine-storefront/internal/utils"
)

const keepAliveInterval = 25 * time.Second

type Handler struct {
	Storefront  *storefront.Service
	Emitter     *sse.InventoryEmitter
	QRGenerator *qr.Generator
	Logger      *logger.Logger
	KeepAlive   time.Duration
}

func NewHandler(svc *storefront.Service, emitter *sse.InventoryEmitter, gen *qr.Generator, log *logger.Logger) *Handler {
	return &Handler{
		Storefront:  svc,
		Emitter:     emitter,
		QRGenerator: gen,
		Logger:      log,
		KeepAlive:   keepAliveInterval,
	}
}

// RegisterRoutes mounts the public storefront routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/storefront", func(r chi.Router) {
		r.Get("/", h.GetStorefront)
		r.Get("/inventory", h.GetInventory)
		r.Get("/inventory/stream", h.StreamInventory)
		r.Get("/products/{productId}/pix.png", h.ProductPix)
	})
}

func (h *Handler) GetStorefront(w http.ResponseWriter, r *http.Request) {
	view, err := h.Storefront.View(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetStorefront: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Vitrine", view)
}

func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Storefront.Inventory.Snapshot(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetInventory: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Ingressos", snap)
}

// StreamInventory pushes a snapshot on connect and after every counter change.
func (h *Handler) StreamInventory(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Storefront.Inventory.Snapshot(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("StreamInventory: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}

	// the server write timeout would otherwise cut long-lived streams
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	h.Logger.Debug("SSE", fmt.Sprintf("Client connected (%d listening)", h.Emitter.ClientCount()+1))
	if err := h.Emitter.Stream(w, r, snap, h.KeepAlive); err != nil {
		h.Logger.Warn("SSE", fmt.Sprintf("Stream ended: %v", err))
	}
}

func (h *Handler) ProductPix(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	payload, err := h.Storefront.PixPayload(productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Produto não encontrado", "product_not_found")
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ProductPix: %s: %v", productID, err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}

	png, err := h.QRGenerator.PNG(payload)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ProductPix: %s: %v", productID, err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// UpdateSettings handles PUT /api/admin/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var upd storefront.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Requisição inválida", "invalid_body")
		return
	}

	settings, err := h.Storefront.UpdateSettings(r.Context(), upd)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("UpdateSettings: %v", err))
		}
		return
	}

	h.Logger.Info("API", fmt.Sprintf("⚙️ Settings updated: total=%d pix=%s", settings.Inventory.Total, settings.PixKey))
	utils.WriteSuccess(w, http.StatusOK, "Configurações salvas", settings)
}
