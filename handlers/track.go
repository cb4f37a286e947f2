package handlers

import (
	"errors"
	"net/http"
	"strings"

	"linktrap/auth"
	"linktrap/config"
	"linktrap/geo"
	"linktrap/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
)

// TrackClick handles GET /click/:link_id?t=TOKEN. A valid access records a
// click, downgrades the session to link-only and renders the decoy page.
func TrackClick(cfg *config.Config, locator geo.Locator) gin.HandlerFunc {
	return func(c *gin.Context) {
		linkID := c.Param("link_id")
		token := c.Query("t")

		meta := services.ClickMeta{
			IP:        requestIP(c),
			UserAgent: c.Request.UserAgent(),
			Referer:   c.Request.Referer(),
			Path:      c.Request.URL.Path,
		}

		link, err := services.RecordClick(c.Request.Context(), linkID, token, cfg.LinkToken, locator, meta)
		switch {
		case errors.Is(err, services.ErrLinkNotFound):
			c.HTML(http.StatusNotFound, "not_found.html", nil)
			return
		case errors.Is(err, services.ErrInvalidToken):
			c.String(http.StatusForbidden, "You cannot access this page.")
			return
		case err != nil:
			c.String(http.StatusInternalServerError, "Internal server error.")
			return
		}

		// Whoever followed the link must never reach the dashboard,
		// even with otherwise valid credentials.
		if err := auth.SetSessionCookie(c, cfg, auth.RoleLinkOnly); err != nil {
			log.Warn().Err(err).Msg("failed to set link-only session cookie")
		}

		c.HTML(http.StatusOK, "alert.html", gin.H{"FileName": link.FileName})
	}
}

// QRImage handles GET /qr/:file where file is "<link_id>.png". The PNG
// encodes the absolute tracking URL including the valid access token.
func QRImage(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		file := c.Param("file")
		linkID := strings.TrimSuffix(file, ".png")
		if linkID == file || linkID == "" {
			c.Status(http.StatusNotFound)
			return
		}

		link, err := services.GetLink(linkID)
		if errors.Is(err, services.ErrLinkNotFound) {
			c.Status(http.StatusNotFound)
			return
		} else if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}

		target := clickURL(baseURL(cfg, c), link.ID) + "?t=" + cfg.LinkToken
		png, err := qrcode.Encode(target, qrcode.Medium, 256)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}

		c.Data(http.StatusOK, "image/png", png)
	}
}
