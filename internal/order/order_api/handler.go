package order_api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
	"cine-storefront/internal/order"
	"cine-storefront/internal/utils"
)

type Handler struct {
	OrderService   *order.OrderService
	Logger         *logger.Logger
	MaxUploadBytes int64
	PublicBaseURL  string
}

func NewHandler(orderService *order.OrderService, log *logger.Logger, maxUploadBytes int64, publicBaseURL string) *Handler {
	return &Handler{
		OrderService:   orderService,
		Logger:         log,
		MaxUploadBytes: maxUploadBytes,
		PublicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
	}
}

// Checkout handles the multipart checkout form.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "Checkout: received request")

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteFieldError(w, "receipt", "Arquivo muito grande")
			return
		}
		h.Logger.Warn("API", fmt.Sprintf("Checkout: invalid form: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "Formulário inválido", "invalid_form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := order.CheckoutRequest{
		CustomerName:     r.FormValue("customer_name"),
		CustomerWhatsApp: r.FormValue("customer_whatsapp"),
		SellerID:         r.FormValue("seller_id"),
		ProductID:        r.FormValue("product_id"),
	}

	upload, err := h.readReceipt(r)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Checkout: receipt: %v", err))
		utils.WriteFieldError(w, "receipt", "Envie o comprovante de pagamento")
		return
	}
	req.Receipt = upload

	created, err := h.OrderService.CreateOrder(r.Context(), req)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("Checkout: failed to create order: %v", err))
		} else {
			h.Logger.Info("API", fmt.Sprintf("Checkout: rejected: %v", err))
		}
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, "Pedido realizado com sucesso!", models.CheckoutResponse{
		OrderID:   created.ID,
		OrderCode: created.OrderCode,
		TicketURL: fmt.Sprintf("%s/ticket/%s", h.PublicBaseURL, created.ID),
	})
}

func (h *Handler) readReceipt(r *http.Request) (*order.Upload, error) {
	file, header, err := r.FormFile("receipt")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, h.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > h.MaxUploadBytes {
		return nil, fmt.Errorf("receipt exceeds %d bytes", h.MaxUploadBytes)
	}
	return &order.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        body,
	}, nil
}

// ListOrders handles GET /api/admin/orders?q=&status=
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter := models.OrderFilter{
		Search: r.URL.Query().Get("q"),
		Status: models.OrderStatus(strings.ToLower(r.URL.Query().Get("status"))),
	}
	h.Logger.Info("API", fmt.Sprintf("ListOrders: q=%q status=%q", filter.Search, filter.Status))

	orders, err := h.OrderService.ListOrders(r.Context(), filter)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("ListOrders: %v", err))
		}
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	utils.WriteSuccess(w, http.StatusOK, "Pedidos", orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	h.Logger.Info("API", fmt.Sprintf("GetOrder: orderId=%s", orderID))

	o, err := h.OrderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("GetOrder: %v", err))
		}
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Pedido", o)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	h.Logger.Info("API", fmt.Sprintf("CancelOrder: orderId=%s", orderID))

	o, err := h.OrderService.CancelOrder(r.Context(), orderID)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("CancelOrder: %v", err))
		} else {
			h.Logger.Warn("API", fmt.Sprintf("CancelOrder: %s rejected: %v", orderID, err))
		}
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Pedido cancelado", o)
}

// Receipt redirects the admin to the stored payment receipt.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	o, err := h.OrderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if utils.WriteServiceError(w, err) {
			h.Logger.Error("API", fmt.Sprintf("Receipt: %v", err))
		}
		return
	}
	if o.ReceiptURL == "" {
		utils.WriteError(w, http.StatusNotFound, "Comprovante não encontrado", "receipt_not_found")
		return
	}
	http.Redirect(w, r, o.ReceiptURL, http.StatusFound)
}
