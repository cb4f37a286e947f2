package database

import (
	"fmt"
	"strings"
	"time"

	"linktrap/config"
	"linktrap/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the store and migrates the two tables. Postgres is used
// when DATABASE_URL looks like a postgres DSN or DB_HOST is set; otherwise
// the store is a local sqlite file (honeypot.db by default).
func Connect(cfg *config.Config) {
	dialector, name := selectDialector(cfg)

	var err error
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(dialector, &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Int("max", maxRetries).Msg("failed to connect to database")
		time.Sleep(time.Second * 3)
	}

	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database after multiple attempts")
	}

	log.Info().Str("driver", name).Msg("connected to database")

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	log.Info().Msg("database migration completed")
}

// Migrate creates or updates the links and clicks tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Link{}, &models.Click{})
}

func selectDialector(cfg *config.Config) (gorm.Dialector, string) {
	if url := cfg.DatabaseURL; url != "" {
		if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") || strings.HasPrefix(url, "host=") {
			return postgres.Open(url), "postgres"
		}
		return sqlite.Open(url), "sqlite"
	}

	if cfg.DBHost != "" {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		return postgres.Open(dsn), "postgres"
	}

	return sqlite.Open("honeypot.db"), "sqlite"
}
