package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	StoreDriver    string
	MigrationsPath string // Empty disables migrations on start

	JWTSecret string
	JWTIssuer string

	LogLevel string
	LogFile  string // Optional rotated file sink

	RateLimit          string // ulule formatted rate, e.g. "100-M"
	RateLimitRedisURL  string // Empty keeps counters in memory
	CORSAllowedOrigins []string

	ReconcileSchedule    string // Cron spec; empty disables the scheduled job
	ReconcileConcurrency int
	ReconcilePageSize    int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("MIGRATIONS_PATH", "")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "farmfeed-auth")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("RATE_LIMIT_REDIS_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RECONCILE_SCHEDULE", "")
	v.SetDefault("RECONCILE_CONCURRENCY", 4)
	v.SetDefault("RECONCILE_PAGE_SIZE", 100)

	// Environment variables override .env values and defaults.
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:          v.GetString("PGSQL_URL"),
		Port:                 v.GetString("PORT"),
		IsProduction:         v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:        v.GetBool("ENABLE_DB_CHECK"),
		StoreDriver:          strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		MigrationsPath:       v.GetString("MIGRATIONS_PATH"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTIssuer:            v.GetString("JWT_ISSUER"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFile:              v.GetString("LOG_FILE"),
		RateLimit:            v.GetString("RATE_LIMIT"),
		RateLimitRedisURL:    v.GetString("RATE_LIMIT_REDIS_URL"),
		CORSAllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		ReconcileSchedule:    strings.TrimSpace(v.GetString("RECONCILE_SCHEDULE")),
		ReconcileConcurrency: v.GetInt("RECONCILE_CONCURRENCY"),
		ReconcilePageSize:    v.GetInt("RECONCILE_PAGE_SIZE"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when STORE_DRIVER is %s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
		if cfg.IsProduction {
			return nil, fmt.Errorf("STORE_DRIVER %s is not allowed in production", StoreDriverMemory)
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if cfg.ReconcileConcurrency <= 0 {
		log.Printf("Warning: invalid RECONCILE_CONCURRENCY %d. Defaulting to 4.\n", cfg.ReconcileConcurrency)
		cfg.ReconcileConcurrency = 4
	}
	if cfg.ReconcilePageSize <= 0 {
		log.Printf("Warning: invalid RECONCILE_PAGE_SIZE %d. Defaulting to 100.\n", cfg.ReconcilePageSize)
		cfg.ReconcilePageSize = 100
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
