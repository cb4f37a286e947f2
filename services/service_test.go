package services

import (
	"testing"
	"time"

	"linktrap/database"
	"linktrap/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupDB points the service layer at a fresh in-memory store.
func setupDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// One connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.DB = db
}

func makeLink(t *testing.T, fileName, campaign string, createdAt time.Time) models.Link {
	t.Helper()

	link := models.Link{
		ID:        uuid.New().String(),
		FileName:  fileName,
		CreatedAt: createdAt,
	}
	if campaign != "" {
		link.Campaign = &campaign
	}
	require.NoError(t, database.DB.Create(&link).Error)
	return link
}

func makeClick(t *testing.T, linkID string, ts time.Time, ip, ua, referer string) models.Click {
	t.Helper()

	click := models.Click{
		LinkID:    linkID,
		TS:        ts,
		IP:        ip,
		UserAgent: ua,
		Referer:   referer,
		Path:      "/click/" + linkID,
	}
	require.NoError(t, database.DB.Create(&click).Error)
	return click
}

func countClicks(t *testing.T) int64 {
	t.Helper()

	var n int64
	require.NoError(t, database.DB.Model(&models.Click{}).Count(&n).Error)
	return n
}
