package handlers

import (
	"net/http"

	"linktrap/auth"
	"linktrap/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin exchanges configured dashboard credentials for an admin
// session cookie. With no credentials configured, login always fails.
func AdminLogin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !auth.SecureCompare(req.Username, cfg.DashboardUsername) ||
			!auth.SecureCompare(req.Password, cfg.DashboardPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if err := auth.SetSessionCookie(c, cfg, auth.RoleAdmin); err != nil {
			log.Error().Err(err).Msg("failed to issue admin session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
