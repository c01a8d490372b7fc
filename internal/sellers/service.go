package sellers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
	"cine-storefront/internal/utils"
)

type Store interface {
	ListSellers(ctx context.Context, activeOnly bool) ([]models.Seller, error)
	GetSeller(ctx context.Context, id string) (*models.Seller, error)
	CreateSeller(ctx context.Context, seller *models.Seller) error
	SetActive(ctx context.Context, id string, active bool) error
	RecountSales(ctx context.Context, id string) (int, error)
}

type Service struct {
	Store  Store
	Logger *logger.Logger
	now    func() time.Time
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{Store: store, Logger: log, now: time.Now}
}

// ListActive is the checkout seller selector.
func (s *Service) ListActive(ctx context.Context) ([]models.Seller, error) {
	return s.Store.ListSellers(ctx, true)
}

func (s *Service) List(ctx context.Context) ([]models.Seller, error) {
	return s.Store.ListSellers(ctx, false)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Seller, error) {
	return s.Store.GetSeller(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string) (*models.Seller, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("name", "Nome do vendedor é obrigatório")
	}

	seller := &models.Seller{
		ID:        utils.GenerateID(),
		Name:      name,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Store.CreateSeller(ctx, seller); err != nil {
		return nil, err
	}
	s.Logger.Info("SELLERS", fmt.Sprintf("Created seller %s (%s)", seller.Name, seller.ID))
	return seller, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*models.Seller, error) {
	if err := s.Store.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.Store.GetSeller(ctx, id)
}

// RefreshTotalSales recomputes the denormalized counter from orders.
func (s *Service) RefreshTotalSales(ctx context.Context, sellerID string) (int, error) {
	total, err := s.Store.RecountSales(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	s.Logger.Debug("SELLERS", fmt.Sprintf("Seller %s total_sales=%d", sellerID, total))
	return total, nil
}

// ResolveActive returns the seller when id names an active one.
func (s *Service) ResolveActive(ctx context.Context, id string) (*models.Seller, error) {
	seller, err := s.Store.GetSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	if !seller.Active {
		return nil, models.ErrSellerNotFound
	}
	return seller, nil
}

// HandleOrderEvent keeps total_sales in step with order events from Kafka.
// Events without a seller are ignored, as are sellers deleted since.
func (s *Service) HandleOrderEvent(ctx context.Context, topic string, event models.OrderEvent) error {
	if event.SellerID == nil || *event.SellerID == "" {
		return nil
	}

	_, err := s.RefreshTotalSales(ctx, *event.SellerID)
	if errors.Is(err, models.ErrSellerNotFound) {
		s.Logger.Warn("SELLERS", fmt.Sprintf("%s for unknown seller %s", event.Type, *event.SellerID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to refresh seller %s after %s: %w", *event.SellerID, event.Type, err)
	}
	return nil
}
