package ticket_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
	qr "cine-storefront/internal/tickets/qr_generator"
	tickets "cine-storefront/internal/tickets/service"
	"cine-storefront/internal/utils"
)

type TicketReader interface {
	GetTicket(ctx context.Context, id string) (*models.Order, error)
}

type Handler struct {
	Orders        TicketReader
	TicketService *tickets.TicketService
	QRGenerator   *qr.Generator
	Logger        *logger.Logger
	PublicBaseURL string
}

func NewHandler(orders TicketReader, ticketService *tickets.TicketService, gen *qr.Generator, log *logger.Logger, publicBaseURL string) *Handler {
	return &Handler{
		Orders:        orders,
		TicketService: ticketService,
		QRGenerator:   gen,
		Logger:        log,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// GetTicket handles GET /api/tickets/{orderId}
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	h.Logger.Info("API", fmt.Sprintf("GetTicket: orderId=%s", orderID))

	order, err := h.Orders.GetTicket(r.Context(), orderID)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("GetTicket: %v", err))
		}
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Ingresso", models.TicketView{
		Order:       order,
		QRPayload:   h.QRGenerator.TicketPayload(order.OrderCode),
		StatusLabel: order.Status.Label(),
		Valid:       order.Status == models.StatusPaid,
		QRImageURL:  fmt.Sprintf("%s/api/tickets/%s/qr.png", h.PublicBaseURL, order.ID),
	})
}

// TicketQR handles GET /api/tickets/{orderId}/qr.png
func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	order, err := h.Orders.GetTicket(r.Context(), orderID)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("TicketQR: %v", err))
		}
		return
	}

	png, err := h.QRGenerator.TicketPNG(order.OrderCode)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TicketQR: %s: %v", order.OrderCode, err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "ingresso-"+order.OrderCode+".png"))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// LookupTicket handles GET /api/admin/checkin/{code}
func (h *Handler) LookupTicket(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	h.Logger.Info("API", fmt.Sprintf("LookupTicket: code=%s", code))

	res, err := h.TicketService.Lookup(r.Context(), code)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("LookupTicket: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}
	writeCheckin(w, res)
}

// CheckinTicket handles POST /api/admin/checkin with {"code": "..."}.
// The code may be typed by hand or read from the ticket QR.
func (h *Handler) CheckinTicket(w http.ResponseWriter, r *http.Request) {
	var req models.CheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Requisição inválida", "invalid_body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		utils.WriteFieldError(w, "code", "Informe o código do pedido")
		return
	}

	res, err := h.TicketService.Validate(r.Context(), req.Code)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckinTicket: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}

	if res.Outcome == models.CheckinSuccess {
		h.Logger.Info("API", fmt.Sprintf("✅ CheckinTicket: %s checked in", res.Code))
	} else {
		h.Logger.Warn("API", fmt.Sprintf("CheckinTicket: %s -> %s", res.Code, res.Outcome))
	}
	writeCheckin(w, res)
}

func writeCheckin(w http.ResponseWriter, res *models.CheckinResult) {
	status := checkinStatus(res.Outcome)
	resp := utils.SuccessResponse(res.Message, res)
	if status >= http.StatusBadRequest {
		resp.Success = false
		resp.Error = string(res.Outcome)
	}
	utils.WriteJSON(w, status, resp)
}

func checkinStatus(outcome models.CheckinOutcome) int {
	switch outcome {
	case models.CheckinSuccess, models.CheckinValid:
		return http.StatusOK
	case models.CheckinNotFound:
		return http.StatusNotFound
	case models.CheckinAlreadyUsed, models.CheckinCancelled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

