package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-otp-auth/internal/domain"
)

// RecentRecords is the store lookup the cooldown limiter depends on.
type RecentRecords interface {
	MostRecent(ctx context.Context, identity string) (*domain.OTPRecord, error)
}

// CooldownLimiter refuses a new send while the newest record for an identity
// is still pending and younger than the cooldown. Consumed or expired records
// never hold the identity back.
type CooldownLimiter struct {
	store    RecentRecords
	cooldown time.Duration
}

func NewCooldownLimiter(store RecentRecords, cooldown time.Duration) *CooldownLimiter {
	return &CooldownLimiter{store: store, cooldown: cooldown}
}

// Allow reports whether identity may be sent a new code at now.
func (l *CooldownLimiter) Allow(ctx context.Context, identity string, now time.Time) (bool, error) {
	if l.cooldown <= 0 {
		return true, nil
	}
	rec, err := l.store.MostRecent(ctx, identity)
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !rec.Pending(now) {
		return true, nil
	}
	return now.Sub(rec.CreatedAt) >= l.cooldown, nil
}
