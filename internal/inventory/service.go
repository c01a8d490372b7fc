package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cine-storefront/internal/logger"
	"cine-storefront/internal/metrics"
	"cine-storefront/internal/models"
)

var ErrInvalidIncrement = errors.New("increment must be positive")

// Store is the persistence the counter needs.
type Store interface {
	GetSettings(ctx context.Context, keys ...string) (map[string]string, error)
	UpsertSetting(ctx context.Context, key, value string) error
	IncrementSetting(ctx context.Context, key string, n int) (int, error)
}

// Notifier is told about every new snapshot.
type Notifier interface {
	Publish(ctx context.Context, snap models.InventorySnapshot) error
}

type Service struct {
	Store        Store
	Notifier     Notifier
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
	DefaultTotal int
	DefaultPix   string
}

func NewService(store Store, notifier Notifier, log *logger.Logger, m *metrics.Metrics, defaultTotal int, defaultPix string) *Service {
	return &Service{
		Store:        store,
		Notifier:     notifier,
		Logger:       log,
		Metrics:      m,
		DefaultTotal: defaultTotal,
		DefaultPix:   defaultPix,
	}
}

// Snapshot reads sold and total and derives the clamped display values.
func (s *Service) Snapshot(ctx context.Context) (models.InventorySnapshot, error) {
	values, err := s.Store.GetSettings(ctx, models.SettingTicketsSold, models.SettingTicketsTotal)
	if err != nil {
		return models.InventorySnapshot{}, err
	}

	sold := parseIntOr(values[models.SettingTicketsSold], 0)
	total := parseIntOr(values[models.SettingTicketsTotal], s.DefaultTotal)
	return models.NewInventorySnapshot(sold, total), nil
}

// Increment atomically adds n sold tickets. There is no decrement.
func (s *Service) Increment(ctx context.Context, n int) (models.InventorySnapshot, error) {
	if n <= 0 {
		return models.InventorySnapshot{}, fmt.Errorf("%w: %d", ErrInvalidIncrement, n)
	}

	sold, err := s.Store.IncrementSetting(ctx, models.SettingTicketsSold, n)
	if err != nil {
		return models.InventorySnapshot{}, err
	}
	s.Metrics.SetTicketsSold(sold)

	values, err := s.Store.GetSettings(ctx, models.SettingTicketsTotal)
	if err != nil {
		return models.InventorySnapshot{}, err
	}
	snap := models.NewInventorySnapshot(sold, parseIntOr(values[models.SettingTicketsTotal], s.DefaultTotal))
	s.notify(ctx, snap)
	return snap, nil
}

// SetTotal changes the capacity shown on the scarcity bar.
func (s *Service) SetTotal(ctx context.Context, total int) (models.InventorySnapshot, error) {
	if total <= 0 {
		return models.InventorySnapshot{}, models.NewValidationError("tickets_total", "Total de ingressos deve ser maior que zero")
	}
	if err := s.Store.UpsertSetting(ctx, models.SettingTicketsTotal, strconv.Itoa(total)); err != nil {
		return models.InventorySnapshot{}, err
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return models.InventorySnapshot{}, err
	}
	s.notify(ctx, snap)
	return snap, nil
}

// PixKey returns the configured PIX key shown at checkout.
func (s *Service) PixKey(ctx context.Context) (string, error) {
	values, err := s.Store.GetSettings(ctx, models.SettingPixKey)
	if err != nil {
		return "", err
	}
	if v := strings.TrimSpace(values[models.SettingPixKey]); v != "" {
		return v, nil
	}
	return s.DefaultPix, nil
}

func (s *Service) SetPixKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.NewValidationError("pix_key", "Chave PIX é obrigatória")
	}
	return s.Store.UpsertSetting(ctx, models.SettingPixKey, key)
}

func (s *Service) notify(ctx context.Context, snap models.InventorySnapshot) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Publish(ctx, snap); err != nil {
		s.Logger.Warn("INVENTORY", fmt.Sprintf("Failed to broadcast snapshot: %v", err))
		s.Metrics.Error("inventory_broadcast")
	}
}

func parseIntOr(raw string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return fallback
}
