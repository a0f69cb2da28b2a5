package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = strings.Repeat("k", 32)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 6, cfg.OTP.Length)
	assert.Equal(t, 3*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 30*time.Second, cfg.OTP.Cooldown)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "otp_records", cfg.DynamoTables.OTPRecords)
	assert.Empty(t, cfg.OTP.HashSecret, "secrets never get a default")
	assert.Empty(t, cfg.JWTSecret, "secrets never get a default")
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("OTP_LENGTH", "8")
	t.Setenv("OTP_TTL_MINUTES", "10")
	t.Setenv("OTP_COOLDOWN_SECONDS", "45")
	t.Setenv("JWT_EXPIRY_DAYS", "1")
	t.Setenv("OTP_HASH_SECRET", secret)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.Equal(t, 8, cfg.OTP.Length)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 45*time.Second, cfg.OTP.Cooldown)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, secret, cfg.OTP.HashSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("OTP_LENGTH", "six")
	assert.Equal(t, 6, Load().OTP.Length)
}

func TestLoad_TrustProxy(t *testing.T) {
	t.Setenv("TRUST_PROXY", "true")
	assert.True(t, Load().TrustProxy)

	t.Setenv("TRUST_PROXY", "maybe")
	assert.False(t, Load().TrustProxy)
}

func TestValidate_MissingSecrets(t *testing.T) {
	cfg := Load()
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfig))
	assert.Contains(t, err.Error(), "OTP_HASH_SECRET")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := Load()
	cfg.OTP.HashSecret = secret
	cfg.JWTSecret = "short"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.NotContains(t, err.Error(), "OTP_HASH_SECRET")
}

func TestValidate_BadPolicy(t *testing.T) {
	cfg := Load()
	cfg.OTP.HashSecret = secret
	cfg.JWTSecret = secret
	cfg.OTP.Length = 3
	cfg.OTP.MaxAttempts = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTP_LENGTH")
	assert.Contains(t, err.Error(), "OTP_MAX_ATTEMPTS")
}

func TestValidate_OK(t *testing.T) {
	cfg := Load()
	cfg.OTP.HashSecret = secret
	cfg.JWTSecret = secret
	assert.NoError(t, cfg.Validate())
}
