package order

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"cine-storefront/internal/catalog"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/metrics"
	"cine-storefront/internal/models"
	"cine-storefront/internal/receipts"
	"cine-storefront/internal/utils"
)

type DBLayer interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	CancelPaid(ctx context.Context, id string) (bool, error)
}

type Counter interface {
	Increment(ctx context.Context, n int) (models.InventorySnapshot, error)
}

type SellerResolver interface {
	ResolveActive(ctx context.Context, id string) (*models.Seller, error)
}

type EventPublisher interface {
	OrderCreated(ctx context.Context, order *models.Order)
	OrderCancelled(ctx context.Context, order *models.Order)
}

type OrderService struct {
	DB            DBLayer
	Receipts      receipts.Store
	Counter       Counter
	Sellers       SellerResolver
	Events        EventPublisher
	Catalog       *catalog.Catalog
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
	RequireSeller bool

	validate *validatorv10.Validate
	nowFunc  func() time.Time
}

func NewOrderService(
	db DBLayer,
	store receipts.Store,
	counter Counter,
	sellers SellerResolver,
	events EventPublisher,
	cat *catalog.Catalog,
	log *logger.Logger,
	m *metrics.Metrics,
	requireSeller bool,
) *OrderService {
	return &OrderService{
		DB:            db,
		Receipts:      store,
		Counter:       counter,
		Sellers:       sellers,
		Events:        events,
		Catalog:       cat,
		Logger:        log,
		Metrics:       m,
		RequireSeller: requireSeller,
		validate:      newValidator(),
		nowFunc:       time.Now,
	}
}

// SetNow replaces the clock. Tests only.
func (s *OrderService) SetNow(now func() time.Time) {
	s.nowFunc = now
}

// ---------------- ORDERS ----------------

// CreateOrder validates the checkout, stores the receipt, records a paid order and
// bumps the sold counter by the product's ticket multiplier. Validation failures
// have no side effects. A receipt uploaded before a later failure is left behind.
func (s *OrderService) CreateOrder(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerWhatsApp = utils.DigitsOnly(req.CustomerWhatsApp)
	req.SellerID = strings.TrimSpace(req.SellerID)
	req.ProductID = strings.TrimSpace(req.ProductID)

	if err := s.validate.Struct(req); err != nil {
		return nil, toValidationError(err)
	}
	if len(req.Receipt.Body) == 0 {
		return nil, models.NewValidationError("receipt", fieldMessages["receipt"])
	}
	contentType, err := receipts.DetectImageType(req.Receipt.Body)
	if err != nil {
		return nil, models.NewValidationError("receipt", "O comprovante deve ser uma imagem")
	}

	product, err := s.Catalog.Get(req.ProductID)
	if err != nil {
		return nil, models.NewValidationError("product_id", fieldMessages["product_id"])
	}

	var sellerID *string
	switch {
	case req.SellerID != "":
		seller, err := s.Sellers.ResolveActive(ctx, req.SellerID)
		if errors.Is(err, models.ErrSellerNotFound) {
			return nil, models.NewValidationError("seller_id", fieldMessages["seller_id"])
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve seller: %w", err)
		}
		sellerID = &seller.ID
	case s.RequireSeller:
		return nil, models.NewValidationError("seller_id", fieldMessages["seller_id"])
	}

	now := s.nowFunc().UTC()

	receiptName := utils.GenerateReceiptName(now, req.Receipt.Filename)
	receiptURL, err := s.Receipts.Upload(ctx, receiptName, contentType, bytes.NewReader(req.Receipt.Body))
	if err != nil {
		s.Metrics.Error("receipt_upload")
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}

	order := &models.Order{
		ID:               utils.GenerateID(),
		OrderCode:        utils.GenerateOrderCode(now),
		CustomerName:     req.CustomerName,
		CustomerWhatsApp: req.CustomerWhatsApp,
		SellerID:         sellerID,
		ProductType:      product.ID,
		ProductName:      product.Name,
		Price:            product.Price,
		Tickets:          product.Tickets,
		Status:           models.StatusPaid,
		ReceiptURL:       receiptURL,
	}
	if err := s.DB.CreateOrder(ctx, order); err != nil {
		s.Metrics.Error("order_insert")
		return nil, err
	}
	s.Logger.LogOrder("CREATE", order.OrderCode, fmt.Sprintf("%s x%d for %s", product.ID, product.Tickets, order.CustomerName))

	if _, err := s.Counter.Increment(ctx, product.Tickets); err != nil {
		s.Metrics.Error("inventory_increment")
		return nil, fmt.Errorf("order %s created but counter update failed: %w", order.OrderCode, err)
	}

	s.Events.OrderCreated(ctx, order)
	s.Metrics.OrderCreated(product.ID)
	return order, nil
}

// CancelOrder moves a paid order to cancelled. Cancelling twice is a no-op; a
// used ticket cannot be cancelled. Sold tickets are not returned to the counter.
func (s *OrderService) CancelOrder(ctx context.Context, id string) (*models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrOrderNotFound
	}

	changed, err := s.DB.CancelPaid(ctx, id)
	if err != nil {
		return nil, err
	}

	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !changed {
		switch order.Status {
		case models.StatusCancelled:
			return order, nil
		case models.StatusUsed:
			return nil, models.ErrTicketAlreadyUsed
		default:
			return nil, fmt.Errorf("order %s in status %s cannot be cancelled", order.OrderCode, order.Status)
		}
	}

	s.Logger.LogOrder("CANCEL", order.OrderCode, "paid -> cancelled")
	s.Events.OrderCancelled(ctx, order)
	s.Metrics.OrderCancelled()
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrOrderNotFound
	}
	return s.DB.GetOrderByID(ctx, id)
}

// GetTicket returns an order that can still be shown as a ticket.
func (s *OrderService) GetTicket(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusCancelled {
		return order, models.ErrTicketCancelled
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	switch filter.Status {
	case "", models.StatusPending, models.StatusPaid, models.StatusCancelled, models.StatusUsed:
	default:
		return nil, models.NewValidationError("status", "Status inválido")
	}
	return s.DB.ListOrders(ctx, filter)
}
