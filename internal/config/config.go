package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-otp-auth/internal/domain"
)

// minSecretLen is the shortest accepted HMAC key for both the OTP hasher and the JWT signer.
const minSecretLen = 32

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string
	SiteName string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	OTP OTP

	JWTSecret string
	JWTIssuer string
	JWTExpiry time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion        string
	SNSLoginTopicARN string // empty disables login events

	AllowedOrigins      []string // CORS allowed origins
	GlobalRatePerMinute int
	TrustProxy          bool // take the client IP from X-Forwarded-For / X-Real-IP
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	OTPRecords string
	Users      string
}

// OTP holds the one-time passcode policy.
type OTP struct {
	Length      int
	TTL         time.Duration
	Cooldown    time.Duration
	MaxAttempts int
	Retention   time.Duration // how long after expiry DynamoDB TTL may purge a record; 0 keeps records forever
	HashSecret  string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "4000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		SiteName: getEnv("SITE_NAME", "OTP Login"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			OTPRecords: getEnv("DYNAMO_TABLE_OTP_RECORDS", "otp_records"),
			Users:      getEnv("DYNAMO_TABLE_USERS", "users"),
		},

		OTP: OTP{
			Length:      getEnvInt("OTP_LENGTH", 6),
			TTL:         time.Duration(getEnvInt("OTP_TTL_MINUTES", 3)) * time.Minute,
			Cooldown:    time.Duration(getEnvInt("OTP_COOLDOWN_SECONDS", 30)) * time.Second,
			MaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),
			Retention:   time.Duration(getEnvInt("OTP_RETENTION_HOURS", 24)) * time.Hour,
			HashSecret:  getEnv("OTP_HASH_SECRET", ""),
		},

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "go-otp-auth"),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),
		SNSLoginTopicARN: getEnv("SNS_LOGIN_TOPIC_ARN", ""),

		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		GlobalRatePerMinute: getEnvInt("GLOBAL_RATE_PER_MINUTE", 200),
		TrustProxy:          getEnvBool("TRUST_PROXY", false),
	}
}

// Validate reports configuration that must stop the process at startup.
// Secrets have no defaults: they are always supplied by the environment.
func (c *Config) Validate() error {
	var problems []string
	if len(c.OTP.HashSecret) < minSecretLen {
		problems = append(problems, fmt.Sprintf("OTP_HASH_SECRET must be at least %d bytes", minSecretLen))
	}
	if len(c.JWTSecret) < minSecretLen {
		problems = append(problems, fmt.Sprintf("JWT_SECRET must be at least %d bytes", minSecretLen))
	}
	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		problems = append(problems, "OTP_LENGTH must be between 4 and 10")
	}
	if c.OTP.TTL <= 0 {
		problems = append(problems, "OTP_TTL_MINUTES must be positive")
	}
	if c.OTP.Cooldown < 0 {
		problems = append(problems, "OTP_COOLDOWN_SECONDS must not be negative")
	}
	if c.OTP.MaxAttempts <= 0 {
		problems = append(problems, "OTP_MAX_ATTEMPTS must be positive")
	}
	if c.JWTExpiry <= 0 {
		problems = append(problems, "JWT_EXPIRY_DAYS must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), domain.ErrConfig)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
