package main

import (
	"crypto/rand"
	"encoding/hex"
	"os"

	"linktrap/auth"
	"linktrap/config"
	"linktrap/database"
	"linktrap/geo"
	"linktrap/handlers"
	"linktrap/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		log.Warn().Msg("SESSION_SECRET is not set, sessions will not survive restarts")
	}

	database.Connect(cfg)

	var locator geo.Locator
	if cfg.EnableIPGeo {
		locator = geo.New(cfg.GeoProvider, cfg.GeoIPInfoToken)
		log.Info().Str("provider", cfg.GeoProvider).Msg("ip geolocation enabled")
	}

	router := setupRouter(cfg, locator)

	log.Info().Str("port", cfg.Port).Msg("honeypot link tracker starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func setupRouter(cfg *config.Config, locator geo.Locator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestLogger(), auth.PrincipalMiddleware(cfg))
	router.SetHTMLTemplate(handlers.Templates())

	// Public surface: the trap itself plus the admin login.
	router.GET("/click/:link_id", middlewares.RateLimit(rate.Limit(20), 50), handlers.TrackClick(cfg, locator))
	router.GET("/qr/:file", handlers.QRImage(cfg))
	router.POST("/admin/login", handlers.AdminLogin(cfg))

	// Everything else is dashboard-gated.
	dash := router.Group("", auth.RequireDashboard())
	{
		dash.GET("/", handlers.Index)
		dash.POST("/generate", handlers.GenerateForm)
		dash.POST("/api/generate", handlers.APIGenerate(cfg))
		dash.GET("/api/links", handlers.APILinks)
		dash.GET("/api/logs", handlers.APILogs(cfg))
		dash.GET("/logs/export", handlers.ExportLogs)
		dash.GET("/api/campaigns", handlers.CampaignStats)
		dash.POST("/campaigns/delete/:name", handlers.DeleteCampaign)
		dash.POST("/delete_link/:link_id", handlers.DeleteLink)
		dash.DELETE("/delete_link/:link_id", handlers.DeleteLink)
	}

	return router
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal().Err(err).Msg("failed to generate session secret")
	}
	return hex.EncodeToString(buf)
}
