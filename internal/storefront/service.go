package storefront

import (
	"context"
	"fmt"

	"cine-storefront/internal/catalog"
	"cine-storefront/internal/models"
)

type SellerLister interface {
	ListActive(ctx context.Context) ([]models.Seller, error)
}

type Inventory interface {
	Snapshot(ctx context.Context) (models.InventorySnapshot, error)
	SetTotal(ctx context.Context, total int) (models.InventorySnapshot, error)
	PixKey(ctx context.Context) (string, error)
	SetPixKey(ctx context.Context, key string) error
}

// View is everything the public page needs in one request.
type View struct {
	Products      []catalog.Product        `json:"products"`
	Sellers       []models.Seller          `json:"sellers"`
	Inventory     models.InventorySnapshot `json:"inventory"`
	PixKey        string                   `json:"pix_key"`
	RequireSeller bool                     `json:"require_seller"`
}

// SettingsUpdate carries the admin-editable settings; nil fields are left alone.
type SettingsUpdate struct {
	TicketsTotal *int    `json:"tickets_total"`
	PixKey       *string `json:"pix_key"`
}

type Settings struct {
	Inventory models.InventorySnapshot `json:"inventory"`
	PixKey    string                   `json:"pix_key"`
}

type Service struct {
	Catalog       *catalog.Catalog
	Sellers       SellerLister
	Inventory     Inventory
	RequireSeller bool
}

func NewService(cat *catalog.Catalog, sellers SellerLister, inv Inventory, requireSeller bool) *Service {
	return &Service{Catalog: cat, Sellers: sellers, Inventory: inv, RequireSeller: requireSeller}
}

func (s *Service) View(ctx context.Context) (*View, error) {
	sellers, err := s.Sellers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	if sellers == nil {
		sellers = []models.Seller{}
	}

	snap, err := s.Inventory.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	pixKey, err := s.Inventory.PixKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read pix key: %w", err)
	}

	return &View{
		Products:      s.Catalog.Products(),
		Sellers:       sellers,
		Inventory:     snap,
		PixKey:        pixKey,
		RequireSeller: s.RequireSeller,
	}, nil
}

// PixPayload returns the copy-and-paste PIX code for a product.
func (s *Service) PixPayload(productID string) (string, error) {
	p, err := s.Catalog.Get(productID)
	if err != nil {
		return "", err
	}
	if p.PixPayload == "" {
		return "", fmt.Errorf("%w: %s has no pix payload", catalog.ErrProductNotFound, productID)
	}
	return p.PixPayload, nil
}

func (s *Service) UpdateSettings(ctx context.Context, upd SettingsUpdate) (*Settings, error) {
	if upd.TicketsTotal == nil && upd.PixKey == nil {
		return nil, models.NewValidationError("settings", "Nenhuma configuração informada")
	}

	if upd.PixKey != nil {
		if err := s.Inventory.SetPixKey(ctx, *upd.PixKey); err != nil {
			return nil, err
		}
	}

	var (
		snap models.InventorySnapshot
		err  error
	)
	if upd.TicketsTotal != nil {
		snap, err = s.Inventory.SetTotal(ctx, *upd.TicketsTotal)
	} else {
		snap, err = s.Inventory.Snapshot(ctx)
	}
	if err != nil {
		return nil, err
	}

	pixKey, err := s.Inventory.PixKey(ctx)
	if err != nil {
		return nil, err
	}
	return &Settings{Inventory: snap, PixKey: pixKey}, nil
}
