package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Issuer claim for tokens (default: cartside-auth)

	// Token signing secrets. The admin pair falls back to the standard
	// pair when unset; New logs a warning when that happens since it
	// collapses the two signing domains.
	AccessSecret       string // Required: ACCESS_TOKEN_SECRET
	RefreshSecret      string // Required: REFRESH_TOKEN_SECRET
	AdminAccessSecret  string // Optional: ADMIN_ACCESS_TOKEN_SECRET
	AdminRefreshSecret string // Optional: ADMIN_REFRESH_TOKEN_SECRET

	AccessTTL       time.Duration // Access token lifetime (default: 1h)
	RefreshTTL      time.Duration // Refresh token lifetime (default: 720h)
	AdminAccessTTL  time.Duration // Admin access token lifetime (default: 15m)
	AdminRefreshTTL time.Duration // Admin refresh token lifetime (default: 168h)

	MongoURI      string // Mongo connection string (default: mongodb://localhost:27017)
	MongoDatabase string // Mongo database name (default: cartside)
	RedisAddr     string // Redis address (default: localhost:6379)
	RedisPassword string // Optional
	RedisDB       int    // Redis database index (default: 0)

	OTPTTL        time.Duration // One-time code lifetime (default: 5m)
	OTPRateLimit  int           // Code requests per contact per window (default: 3)
	OTPRateWindow time.Duration // Rolling window for the OTP cap (default: 15m)

	CookieDomain string // Optional: Domain attribute on the refresh cookie
	CookieSecure bool   // Secure attribute on the refresh cookie (default: true)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer: getEnvOrDefault("AUTH_ISSUER", "cartside-auth"),

		AccessSecret:       os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshSecret:      os.Getenv("REFRESH_TOKEN_SECRET"),
		AdminAccessSecret:  os.Getenv("ADMIN_ACCESS_TOKEN_SECRET"),
		AdminRefreshSecret: os.Getenv("ADMIN_REFRESH_TOKEN_SECRET"),

		AccessTTL:       getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 0),
		RefreshTTL:      getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 0),
		AdminAccessTTL:  getEnvDurationOrDefault("ADMIN_ACCESS_TOKEN_TTL", 0),
		AdminRefreshTTL: getEnvDurationOrDefault("ADMIN_REFRESH_TOKEN_TTL", 0),

		MongoURI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "cartside"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		OTPTTL:        getEnvDurationOrDefault("OTP_TTL", 5*time.Minute),
		OTPRateLimit:  getEnvIntOrDefault("OTP_RATE_LIMIT", 3),
		OTPRateWindow: getEnvDurationOrDefault("OTP_RATE_WINDOW", 15*time.Minute),

		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
		CookieSecure: getEnvBoolOrDefault("COOKIE_SECURE", true),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate reports configuration the service cannot start without.
func (c Config) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept duration syntax ("1h", "30m", "90s") or plain minutes.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
