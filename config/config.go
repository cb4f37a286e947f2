package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime settings. Everything comes from the environment
// (with .env support); dashboard credentials have no defaults on purpose.
type Config struct {
	Port string

	// DatabaseURL takes precedence when set. A postgres:// URL or a
	// "host=" DSN selects the postgres driver, anything else is treated
	// as a sqlite file path. When empty, the DB_* variables (postgres)
	// are used if DB_HOST is set, otherwise a local sqlite file.
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	// LinkToken is the shared secret appended to tracking URLs (?t=...).
	LinkToken string
	// SessionSecret signs the session cookies (admin and link-only).
	SessionSecret string

	DashboardUsername string
	DashboardPassword string

	EnableIPGeo    bool
	GeoProvider    string
	GeoIPInfoToken string

	// PublicBaseURL overrides request-derived absolute URLs (useful
	// behind a reverse proxy). No trailing slash.
	PublicBaseURL string

	Production bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "5000"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBHost:            getEnv("DB_HOST", ""),
		DBUser:            getEnv("DB_USER", "linktrap"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "linktrap"),
		DBPort:            getEnv("DB_PORT", "5432"),
		LinkToken:         getEnv("LINK_TOKEN", ""),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		DashboardUsername: getEnv("DASHBOARD_USERNAME", ""),
		DashboardPassword: getEnv("DASHBOARD_PASSWORD", ""),
		EnableIPGeo:       strings.EqualFold(getEnv("ENABLE_IP_GEO", "false"), "true"),
		GeoProvider:       getEnv("GEO_PROVIDER", "ipapi"),
		GeoIPInfoToken:    getEnv("GEO_IPINFO_TOKEN", ""),
		PublicBaseURL:     strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", ""), "/"),
		Production:        getEnv("PRODUCTION", "") == "true",
	}

	if cfg.LinkToken == "" {
		log.Warn().Msg("LINK_TOKEN is not set, all tracking accesses will be rejected")
	}
	if cfg.DashboardUsername == "" || cfg.DashboardPassword == "" {
		log.Warn().Msg("dashboard credentials are not set, admin login is disabled")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
