package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures every runtime knob for the vault API. Values are resolved
// once at startup so the rest of the code never reaches for os.Getenv.
type Config struct {
	Addr          string
	PostgresDSN   string
	UploadDir     string
	JWTSecret     string
	TokenTTL      time.Duration
	OTPTTL        time.Duration
	MaxUploadSize int64

	// EchoOTP returns the one-time code in the login response. Development
	// convenience only; production must deliver codes out of band.
	EchoOTP bool
}

const (
	defaultAddr      = ":8080"
	defaultUploadDir = "uploads"
	defaultTokenTTL  = 15 * time.Minute
	defaultOTPTTL    = 2 * time.Minute
	defaultMaxUpload = 10 << 20 // 10 MiB
	defaultEchoOTP   = true
)

// FromEnv builds the configuration from environment variables, loading an
// optional .env file first so local runs need no exported shell state.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:          envOr("VAULT_ADDR", defaultAddr),
		PostgresDSN:   os.Getenv("VAULT_PG_DSN"),
		UploadDir:     envOr("VAULT_UPLOAD_DIR", defaultUploadDir),
		JWTSecret:     os.Getenv("VAULT_JWT_SECRET"),
		TokenTTL:      envDuration("VAULT_TOKEN_TTL", defaultTokenTTL),
		OTPTTL:        envDuration("VAULT_OTP_TTL", defaultOTPTTL),
		MaxUploadSize: envInt64("VAULT_MAX_UPLOAD_BYTES", defaultMaxUpload),
		EchoOTP:       envBool("VAULT_ECHO_OTP", defaultEchoOTP),
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
