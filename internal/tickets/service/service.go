package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cine-storefront/internal/logger"
	"cine-storefront/internal/metrics"
	"cine-storefront/internal/models"
)

type CheckinStore interface {
	MarkUsed(ctx context.Context, code string, at time.Time) (bool, error)
	GetOrderByCode(ctx context.Context, code string) (*models.Order, error)
}

type CodeParser interface {
	ExtractCode(raw string) string
}

type EventPublisher interface {
	TicketCheckedIn(ctx context.Context, order *models.Order)
}

// TicketService runs door check-in: paid -> used, exactly once per code.
type TicketService struct {
	DB      CheckinStore
	Codes   CodeParser
	Events  EventPublisher
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	nowFunc func() time.Time
}

func NewTicketService(db CheckinStore, codes CodeParser, events EventPublisher, log *logger.Logger, m *metrics.Metrics) *TicketService {
	return &TicketService{DB: db, Codes: codes, Events: events, Logger: log, Metrics: m, nowFunc: time.Now}
}

func (s *TicketService) SetNow(now func() time.Time) {
	s.nowFunc = now
}

// Validate checks a ticket in. Terminal outcomes (not found, already used,
// cancelled) are results, not errors; only store failures return an error.
func (s *TicketService) Validate(ctx context.Context, raw string) (*models.CheckinResult, error) {
	code := s.Codes.ExtractCode(raw)
	if code == "" {
		return s.finish(models.NewCheckinResult(code, models.CheckinNotFound, nil)), nil
	}

	usedAt := s.nowFunc().UTC()
	changed, err := s.DB.MarkUsed(ctx, code, usedAt)
	if err != nil {
		s.Metrics.Error("checkin")
		return nil, err
	}

	order, err := s.DB.GetOrderByCode(ctx, code)
	if err != nil && changed {
		// the row is already used; report the transition without the re-read
		s.Logger.Error("CHECKIN", fmt.Sprintf("%s checked in but re-read failed: %v", code, err))
		s.Metrics.Error("checkin")
		order = &models.Order{OrderCode: code, Status: models.StatusUsed, UsedAt: &usedAt}
		s.Events.TicketCheckedIn(ctx, order)
		return s.finish(models.NewCheckinResult(code, models.CheckinSuccess, order)), nil
	}
	if errors.Is(err, models.ErrOrderNotFound) {
		return s.finish(models.NewCheckinResult(code, models.CheckinNotFound, nil)), nil
	}
	if err != nil {
		s.Metrics.Error("checkin")
		return nil, fmt.Errorf("failed to read %s after check-in: %w", code, err)
	}

	if changed {
		s.Events.TicketCheckedIn(ctx, order)
		return s.finish(models.NewCheckinResult(code, models.CheckinSuccess, order)), nil
	}

	switch order.Status {
	case models.StatusCancelled:
		return s.finish(models.NewCheckinResult(code, models.CheckinCancelled, order)), nil
	case models.StatusPending:
		return s.finish(models.NewCheckinResult(code, models.CheckinNotFound, order)), nil
	default:
		// used, or a paid row another request is moving to used right now
		return s.finish(models.NewCheckinResult(code, models.CheckinAlreadyUsed, order)), nil
	}
}

// Lookup reports what Validate would find, without changing anything.
func (s *TicketService) Lookup(ctx context.Context, raw string) (*models.CheckinResult, error) {
	code := s.Codes.ExtractCode(raw)
	if code == "" {
		return models.NewCheckinResult(code, models.CheckinNotFound, nil), nil
	}

	order, err := s.DB.GetOrderByCode(ctx, code)
	if errors.Is(err, models.ErrOrderNotFound) {
		return models.NewCheckinResult(code, models.CheckinNotFound, nil), nil
	}
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case models.StatusPaid:
		return models.NewCheckinResult(code, models.CheckinValid, order), nil
	case models.StatusCancelled:
		return models.NewCheckinResult(code, models.CheckinCancelled, order), nil
	case models.StatusUsed:
		return models.NewCheckinResult(code, models.CheckinAlreadyUsed, order), nil
	default:
		return models.NewCheckinResult(code, models.CheckinNotFound, order), nil
	}
}

func (s *TicketService) finish(res *models.CheckinResult) *models.CheckinResult {
	s.Logger.LogCheckin(res.Code, string(res.Outcome))
	s.Metrics.Checkin(string(res.Outcome))
	return res
}
