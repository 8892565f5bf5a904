package config

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Profile is the per-environment policy for browser-facing concerns.
// Every cookie and CORS decision reads from the active Profile.
type Profile struct {
	Name           string
	AllowedOrigins []string
	CookieSecure   bool
	CookieSameSite http.SameSite
	CookieDomain   string
}

var profiles = map[string]Profile{
	EnvDevelopment: {
		Name:           EnvDevelopment,
		AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		CookieSecure:   false,
		CookieSameSite: http.SameSiteLaxMode,
	},
	EnvProduction: {
		Name:           EnvProduction,
		AllowedOrigins: []string{"https://job-application-tracker-beryl.vercel.app"},
		CookieSecure:   true,
		CookieSameSite: http.SameSiteNoneMode,
	},
}

type Config struct {
	Env     string
	Profile Profile

	Port     string
	LogLevel string
	DBUrl    string
	// Run embedded migrations at startup
	AutoMigrate bool
	// Use the simple query protocol (PgBouncer transaction mode)
	DBSimpleProtocol bool

	// Session configuration
	SessionSecret  string
	SessionTTL     time.Duration
	SessionRolling bool
	// "redis" or "memory"
	SessionBackend string

	// Redis Configuration
	RedisURL      string
	RedisPassword string

	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitAuthThreshold   int
	RateLimitUploadThreshold int

	// Object storage (S3 compatible)
	S3Provider        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	S3PublicBaseURL   string

	MaxUploadBytes int64
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally, ignored when the file is absent)
	_ = godotenv.Load()

	env := strings.ToLower(getEnv("APP_ENV", EnvDevelopment))
	profile, ok := profiles[env]
	if !ok {
		return nil, fmt.Errorf("unknown APP_ENV %q (want %s or %s)", env, EnvDevelopment, EnvProduction)
	}
	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		profile.AllowedOrigins = splitList(origins)
	}
	profile.CookieDomain = getEnv("COOKIE_DOMAIN", profile.CookieDomain)

	cfg := &Config{
		Env:              env,
		Profile:          profile,
		Port:             getEnv("PORT", "5001"),
		LogLevel:         getEnv("LOG_LEVEL", "debug"),
		DBUrl:            getEnv("DATABASE_URL", ""),
		AutoMigrate:      getEnvBool("AUTO_MIGRATE", true),
		DBSimpleProtocol: getEnvBool("DB_SIMPLE_PROTOCOL", false),

		SessionSecret:  getEnv("SESSION_SECRET", ""),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_HOURS", 7*24)) * time.Hour,
		SessionRolling: getEnvBool("SESSION_ROLLING", false),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "redis")),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitAuthThreshold:   getEnvInt("RATE_LIMIT_AUTH_THRESHOLD", 10),
		RateLimitUploadThreshold: getEnvInt("RATE_LIMIT_UPLOAD_THRESHOLD", 10),

		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 5)) << 20,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.SessionBackend == "redis" && cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Sessions will use the in-memory backend.")
		cfg.SessionBackend = "memory"
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		if c.Env == EnvProduction {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		log.Println("WARNING: SESSION_SECRET not set, using an insecure development secret.")
		c.SessionSecret = "dev-insecure-session-secret"
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.SessionBackend != "redis" && c.SessionBackend != "memory" {
		return fmt.Errorf("SESSION_BACKEND must be redis or memory, got %q", c.SessionBackend)
	}
	return nil
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ProfileFor returns the named profile; used by tests and tooling.
func ProfileFor(env string) (Profile, bool) {
	p, ok := profiles[env]
	return p, ok
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
