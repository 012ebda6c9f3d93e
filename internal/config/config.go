package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string // "sqlite" (embedded) or "postgres"
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Exchange rate (dolarapi blue)
	DolarAPIURL string
	RateTTL     time.Duration

	// Price feeds
	CoinGeckoURL   string
	YahooChartURL  string
	CryptoPriceTTL time.Duration
	CedearPriceTTL time.Duration
	HTTPTimeout    time.Duration

	// Optional Redis-backed price cache; empty means in-memory
	RedisAddr string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		SQLitePath: getEnv("SQLITE_PATH", "billetera.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "billetera"),
		DBPassword: getEnv("DB_PASSWORD", "billetera"),
		DBName:     getEnv("DB_NAME", "billetera"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// External providers
		DolarAPIURL:   getEnv("DOLAR_API_URL", "https://dolarapi.com/v1/dolares/blue"),
		CoinGeckoURL:  getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		YahooChartURL: getEnv("YAHOO_CHART_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
	}

	config.JWTExpirationDur = getDurationEnv("JWT_EXPIRES_IN", 24*time.Hour)
	config.RateTTL = getDurationEnv("RATE_TTL", time.Hour)
	config.CryptoPriceTTL = getDurationEnv("CRYPTO_PRICE_TTL", 5*time.Minute)
	config.CedearPriceTTL = getDurationEnv("CEDEAR_PRICE_TTL", 15*time.Minute)
	config.HTTPTimeout = getDurationEnv("HTTP_TIMEOUT", 10*time.Second)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv parses a duration environment variable, falling back on invalid values.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
