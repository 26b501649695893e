package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// minSecretLen is the shortest secret accepted for HMAC signing or
// hashing. Shorter keys weaken HMAC-SHA256 below its design strength.
const minSecretLen = 32

// Config contains runtime configuration values.
type Config struct {
	Environment string
	HTTPPort    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessTokenSecret string
	RefreshHashSecret string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration

	UserServiceURL string
	DownstreamURL  string
	PublicPaths    []string

	RateLimitRPM   int
	RequestTimeout time.Duration
	EventsEnabled  bool
}

// Load reads configuration from environment variables with sane
// defaults. Secrets have no defaults: a gateway that signs credentials
// with a fallback key is worse than one that refuses to start.
func Load() (Config, error) {
	_ = godotenv.Load()

	accessSecret := strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET"))
	if len(accessSecret) < minSecretLen {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET must be at least %d bytes", minSecretLen)
	}
	refreshSecret := strings.TrimSpace(os.Getenv("REFRESH_HASH_SECRET"))
	if len(refreshSecret) < minSecretLen {
		return Config{}, fmt.Errorf("REFRESH_HASH_SECRET must be at least %d bytes", minSecretLen)
	}

	cfg := Config{
		Environment:       getEnv("APP_ENV", "development"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		RedisAddr:         getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		AccessTokenSecret: accessSecret,
		RefreshHashSecret: refreshSecret,
		AccessTokenTTL:    getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:   getDuration("REFRESH_TOKEN_TTL", 14*24*time.Hour),
		UserServiceURL:    os.Getenv("USER_SERVICE_URL"),
		DownstreamURL:     os.Getenv("DOWNSTREAM_URL"),
		PublicPaths: getList("PUBLIC_PATHS", []string{
			"/api/v1/auth/**",
			"/api/v1/oauth2/**",
			"/actuator/health",
		}),
		RateLimitRPM:   getInt("RATE_LIMIT_RPM", 120),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		EventsEnabled:  getBool("EVENTS_ENABLED", true),
	}

	if cfg.UserServiceURL == "" {
		return Config{}, fmt.Errorf("USER_SERVICE_URL is required")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return Config{}, fmt.Errorf("token TTLs must be positive")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
