package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"cine-storefront/internal/logger"
	"cine-storefront/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

type SessionStore interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// LoginResult is returned to the admin panel after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service guards the admin panel with a shared password and Redis-backed sessions.
type Service struct {
	Sessions SessionStore
	Logger   *logger.Logger
	TTL      time.Duration

	password []byte
	secret   []byte
	nowFunc  func() time.Time
}

// NewService builds the admin auth service. An empty secret gets a random one,
// which means sessions do not survive a restart.
func NewService(password, secret string, ttl time.Duration, sessions SessionStore, log *logger.Logger) (*Service, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		log.Warn("AUTH", "ADMIN_JWT_SECRET not set, using a random secret")
	}
	if password == "" {
		log.Warn("AUTH", "ADMIN_PASSWORD not set, admin login is disabled")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &Service{
		Sessions: sessions,
		Logger:   log,
		TTL:      ttl,
		password: []byte(password),
		secret:   key,
		nowFunc:  time.Now,
	}, nil
}

// SetNow replaces the clock. Tests only.
func (s *Service) SetNow(now func() time.Time) {
	s.nowFunc = now
}

func (s *Service) Login(ctx context.Context, password string) (*LoginResult, error) {
	if len(s.password) == 0 || subtle.ConstantTimeCompare([]byte(password), s.password) != 1 {
		s.Logger.LogSecurity("LOGIN_FAILED", "wrong admin password")
		return nil, ErrInvalidCredentials
	}

	now := s.nowFunc()
	session := Session{ID: utils.GenerateID(), IssuedAt: now.UTC(), ExpiresAt: now.Add(s.TTL).UTC()}

	token, err := signToken(s.secret, session.ID, session.IssuedAt, session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session, s.TTL); err != nil {
		return nil, err
	}

	s.Logger.Info("AUTH", fmt.Sprintf("🔐 Admin session %s opened", session.ID))
	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate returns the session id for a valid, still-open token.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := parseToken(s.secret, token, s.nowFunc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	session, err := s.Sessions.Get(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", fmt.Errorf("%w: session %s closed", ErrUnauthorized, claims.ID)
	}
	return session.ID, nil
}

// Logout closes the session behind token. Closing an unknown session is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := parseToken(s.secret, token, s.nowFunc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err := s.Sessions.Delete(ctx, claims.ID); err != nil {
		return err
	}
	s.Logger.Info("AUTH", fmt.Sprintf("Admin session %s closed", claims.ID))
	return nil
}
