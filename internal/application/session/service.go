package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-otp-auth/internal/domain"
	jwtinfra "github.com/go-otp-auth/internal/infrastructure/jwt"
	"github.com/go-otp-auth/internal/pkg/clock"
	"github.com/go-otp-auth/internal/pkg/id"
)

// UserStore is the subset of the user repository the session service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateIfAbsent(ctx context.Context, u *domain.User) (*domain.User, error)
	TouchLogin(ctx context.Context, email string, at time.Time) error
}

// Signer mints credentials.
type Signer interface {
	Sign(userID, email string) (string, time.Time, error)
}

// Credential is a signed session token together with the user it names.
type Credential struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type Service interface {
	// Issue provisions the user for identity on first login and signs a credential for them.
	Issue(ctx context.Context, identity string) (*Credential, error)
	// Current loads the user named by already-verified claims.
	Current(ctx context.Context, claims *jwtinfra.Claims) (*domain.User, error)
}

type service struct {
	userRepo UserStore
	signer   Signer
	clock    clock.Clocker
}

func NewService(userRepo UserStore, signer Signer, clk clock.Clocker) Service {
	return &service{userRepo: userRepo, signer: signer, clock: clk}
}

func (s *service) Issue(ctx context.Context, identity string) (*Credential, error) {
	now := s.clock.Now()

	u, err := s.userRepo.GetByEmail(ctx, identity)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.userRepo.CreateIfAbsent(ctx, &domain.User{
			UserID:    id.NewAt(now),
			Email:     identity,
			CreatedAt: now,
		})
		if err == nil {
			slog.InfoContext(ctx, "provisioned user", "user_id", u.UserID)
		}
	}
	if err != nil {
		slog.ErrorContext(ctx, "load user for credential", "err", err)
		return nil, fmt.Errorf("load user: %w", domain.ErrStorage)
	}

	if err := s.userRepo.TouchLogin(ctx, u.Email, now); err != nil {
		slog.WarnContext(ctx, "failed to record last login", "user_id", u.UserID, "err", err)
	} else {
		u.LastLoginAt = &now
	}

	token, expiresAt, err := s.signer.Sign(u.UserID, u.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign credential", "user_id", u.UserID, "err", err)
		return nil, fmt.Errorf("issue credential: %w", err)
	}
	return &Credential{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

func (s *service) Current(ctx context.Context, claims *jwtinfra.Claims) (*domain.User, error) {
	if claims == nil || claims.Email == "" {
		return nil, fmt.Errorf("missing claims: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "load current user", "err", err)
		return nil, fmt.Errorf("load user: %w", domain.ErrStorage)
	}
	if u.UserID != claims.UserID() {
		return nil, fmt.Errorf("credential subject mismatch: %w", domain.ErrUnauthorized)
	}
	return u, nil
}
