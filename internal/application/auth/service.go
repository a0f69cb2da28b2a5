package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-otp-auth/internal/application/session"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/infrastructure/smtp"
	"github.com/go-otp-auth/internal/infrastructure/sns"
	"github.com/go-otp-auth/internal/pkg/clock"
	"github.com/go-otp-auth/internal/pkg/hash"
	"github.com/go-otp-auth/internal/pkg/id"
	"github.com/go-otp-auth/internal/pkg/validate"
)

type StartLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CompleteLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// LoginResult is returned by a successful CompleteLogin.
type LoginResult struct {
	Credential string
	Identity   string
	ExpiresAt  time.Time
	User       *domain.User
}

// OTPStore is the persistence the login flow needs. Implemented by dynamo.OTPRepo.
type OTPStore interface {
	Create(ctx context.Context, rec *domain.OTPRecord) error
	MostRecent(ctx context.Context, identity string) (*domain.OTPRecord, error)
	MostRecentPending(ctx context.Context, identity string) (*domain.OTPRecord, error)
	MarkConsumed(ctx context.Context, rec *domain.OTPRecord, at time.Time) error
	IncrementAttempts(ctx context.Context, rec *domain.OTPRecord, max int) (int, error)
}

type Hasher interface {
	Digest(code string) (hash.Digest, error)
	Verify(code string, d hash.Digest) bool
}

type CodeGenerator interface {
	Generate(length int) (string, error)
}

type CredentialIssuer interface {
	Issue(ctx context.Context, identity string) (*session.Credential, error)
}

type Service interface {
	StartLogin(ctx context.Context, req StartLoginRequest) error
	CompleteLogin(ctx context.Context, req CompleteLoginRequest) (*LoginResult, error)
}

// ServiceDeps groups the collaborators of the login service.
type ServiceDeps struct {
	OTPRepo   OTPStore
	Generator CodeGenerator
	Hasher    Hasher
	Mailer    smtp.Mailer
	Issuer    CredentialIssuer
	Publisher sns.Publisher
	Clock     clock.Clocker
	Policy    config.OTP
	SiteName  string
}

type service struct {
	otpRepo   OTPStore
	limiter   *CooldownLimiter
	generator CodeGenerator
	hasher    Hasher
	mailer    smtp.Mailer
	issuer    CredentialIssuer
	publisher sns.Publisher
	clock     clock.Clocker
	policy    config.OTP
	siteName  string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otpRepo:   deps.OTPRepo,
		limiter:   NewCooldownLimiter(deps.OTPRepo, deps.Policy.Cooldown),
		generator: deps.Generator,
		hasher:    deps.Hasher,
		mailer:    deps.Mailer,
		issuer:    deps.Issuer,
		publisher: deps.Publisher,
		clock:     deps.Clock,
		policy:    deps.Policy,
		siteName:  deps.SiteName,
	}
}

// NormalizeIdentity trims and lower-cases an email so that one mailbox maps to one identity.
func NormalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) StartLogin(ctx context.Context, req StartLoginRequest) error {
	req.Email = NormalizeIdentity(req.Email)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
	}
	now := s.clock.Now()

	allowed, err := s.limiter.Allow(ctx, req.Email, now)
	if err != nil {
		slog.ErrorContext(ctx, "cooldown lookup failed", "email", req.Email, "err", err)
		return fmt.Errorf("check cooldown: %w", domain.ErrStorage)
	}
	if !allowed {
		return fmt.Errorf("send otp to %s: %w", req.Email, domain.ErrRateLimited)
	}

	code, err := s.generator.Generate(s.policy.Length)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp", "email", req.Email, "err", err)
		return fmt.Errorf("generate otp: %w", err)
	}
	digest, err := s.hasher.Digest(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp", "email", req.Email, "err", err)
		return fmt.Errorf("hash otp: %w", err)
	}

	rec := &domain.OTPRecord{
		RecordID:   id.NewAt(now),
		Identity:   req.Email,
		CodeDigest: digest.String(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.policy.TTL),
	}
	if s.policy.Retention > 0 {
		rec.PurgeAt = rec.ExpiresAt.Add(s.policy.Retention).Unix()
	}
	if err := s.otpRepo.Create(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to store otp record", "email", req.Email, "err", err)
		return fmt.Errorf("store otp: %w", domain.ErrStorage)
	}

	msg, err := renderLoginEmail(req.Email, emailParams{SiteName: s.siteName, Code: code, Expiration: s.policy.TTL})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render otp email", "record_id", rec.RecordID, "err", err)
		return fmt.Errorf("render otp email: %w", err)
	}
	messageID, err := s.mailer.SendEmail(ctx, msg)
	if err != nil {
		slog.WarnContext(ctx, "otp delivery failed", "record_id", rec.RecordID, "err", err)
		return fmt.Errorf("send otp email: %w", domain.ErrDeliveryFailed)
	}
	slog.InfoContext(ctx, "otp sent", "record_id", rec.RecordID, "message_id", messageID)
	return nil
}

func (s *service) CompleteLogin(ctx context.Context, req CompleteLoginRequest) (*LoginResult, error) {
	req.Email = NormalizeIdentity(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
	}
	if !wellFormedCode(req.OTP, s.policy.Length) {
		return nil, fmt.Errorf("otp must be %d digits: %w", s.policy.Length, domain.ErrInvalidInput)
	}
	now := s.clock.Now()

	rec, err := s.otpRepo.MostRecentPending(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("verify otp for %s: %w", req.Email, domain.ErrNoPendingOTP)
	}
	if err != nil {
		slog.ErrorContext(ctx, "pending otp lookup failed", "email", req.Email, "err", err)
		return nil, fmt.Errorf("load otp: %w", domain.ErrStorage)
	}
	if rec.Expired(now) {
		return nil, fmt.Errorf("otp %s: %w", rec.RecordID, domain.ErrExpired)
	}
	if rec.Attempts >= s.policy.MaxAttempts {
		return nil, fmt.Errorf("otp %s: %w", rec.RecordID, domain.ErrTooManyAttempts)
	}

	digest, err := hash.ParseDigest(rec.CodeDigest)
	if err != nil {
		slog.ErrorContext(ctx, "stored otp digest unreadable", "record_id", rec.RecordID, "err", err)
		return nil, fmt.Errorf("load otp: %w", domain.ErrStorage)
	}
	if !s.hasher.Verify(req.OTP, digest) {
		n, err := s.otpRepo.IncrementAttempts(ctx, rec, s.policy.MaxAttempts)
		if err != nil && !errors.Is(err, domain.ErrConflict) {
			slog.ErrorContext(ctx, "failed to count otp attempt", "record_id", rec.RecordID, "err", err)
			return nil, fmt.Errorf("count attempt: %w", domain.ErrStorage)
		}
		slog.InfoContext(ctx, "otp mismatch", "record_id", rec.RecordID, "attempts", n)
		return nil, fmt.Errorf("otp %s: %w", rec.RecordID, domain.ErrInvalidCode)
	}

	if err := s.otpRepo.MarkConsumed(ctx, rec, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("otp %s: %w", rec.RecordID, domain.ErrNoPendingOTP)
		}
		slog.ErrorContext(ctx, "failed to consume otp", "record_id", rec.RecordID, "err", err)
		return nil, fmt.Errorf("consume otp: %w", domain.ErrStorage)
	}

	cred, err := s.issuer.Issue(ctx, req.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue credential", "record_id", rec.RecordID, "err", err)
		return nil, err
	}
	slog.InfoContext(ctx, "login verified", "record_id", rec.RecordID, "user_id", cred.User.UserID)
	s.publishLogin(ctx, cred.User, now)

	return &LoginResult{
		Credential: cred.Token,
		Identity:   req.Email,
		ExpiresAt:  cred.ExpiresAt,
		User:       cred.User,
	}, nil
}

// wellFormedCode reports whether code is exactly length ASCII digits.
func wellFormedCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

type loginEvent struct {
	Event  string    `json:"event"`
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// publishLogin is best-effort; a failed publish never fails the login.
func (s *service) publishLogin(ctx context.Context, u *domain.User, at time.Time) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(loginEvent{Event: "login", UserID: u.UserID, Email: u.Email, At: at})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, "login", string(body)); err != nil {
		slog.WarnContext(ctx, "failed to publish login event", "user_id", u.UserID, "err", err)
	}
}
