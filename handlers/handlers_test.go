package handlers

import (
	"testing"
	"time"

	"linktrap/auth"
	"linktrap/config"
	"linktrap/database"
	"linktrap/geo"
	"linktrap/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testLinkToken = "test-link-token"
	testUser      = "admin"
	testPass      = "hunter2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		LinkToken:         testLinkToken,
		SessionSecret:     "test-session-secret",
		DashboardUsername: testUser,
		DashboardPassword: testPass,
	}
}

// newTestRouter wires the full route table against a fresh in-memory DB.
func newTestRouter(t *testing.T, cfg *config.Config, locator geo.Locator) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	router := gin.New()
	router.Use(auth.PrincipalMiddleware(cfg))
	router.SetHTMLTemplate(Templates())

	router.GET("/click/:link_id", TrackClick(cfg, locator))
	router.GET("/qr/:file", QRImage(cfg))
	router.POST("/admin/login", AdminLogin(cfg))

	dash := router.Group("", auth.RequireDashboard())
	{
		dash.GET("/", Index)
		dash.POST("/generate", GenerateForm)
		dash.POST("/api/generate", APIGenerate(cfg))
		dash.GET("/api/links", APILinks)
		dash.GET("/api/logs", APILogs(cfg))
		dash.GET("/logs/export", ExportLogs)
		dash.GET("/api/campaigns", CampaignStats)
		dash.POST("/campaigns/delete/:name", DeleteCampaign)
		dash.POST("/delete_link/:link_id", DeleteLink)
		dash.DELETE("/delete_link/:link_id", DeleteLink)
	}

	return router
}

func seedLink(t *testing.T, fileName, campaign string) models.Link {
	t.Helper()

	link := models.Link{
		ID:        uuid.New().String(),
		FileName:  fileName,
		CreatedAt: time.Now().UTC(),
	}
	if campaign != "" {
		link.Campaign = &campaign
	}
	require.NoError(t, database.DB.Create(&link).Error)
	return link
}

func seedClick(t *testing.T, linkID string, ts time.Time) models.Click {
	t.Helper()

	click := models.Click{
		LinkID:    linkID,
		TS:        ts,
		IP:        "203.0.113.9",
		UserAgent: "test-agent",
		Path:      "/click/" + linkID,
	}
	require.NoError(t, database.DB.Create(&click).Error)
	return click
}

func clickCount(t *testing.T) int64 {
	t.Helper()

	var n int64
	require.NoError(t, database.DB.Model(&models.Click{}).Count(&n).Error)
	return n
}
