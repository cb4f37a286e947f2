package handlers

import (
	"fmt"
	"net"
	"strings"

	"linktrap/config"

	"github.com/gin-gonic/gin"
)

// baseURL derives the absolute URL prefix for generated links. A
// configured PUBLIC_BASE_URL wins over the request host.
func baseURL(cfg *config.Config, c *gin.Context) string {
	if cfg.PublicBaseURL != "" {
		return cfg.PublicBaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

func clickURL(base, linkID string) string {
	return base + "/click/" + linkID
}

func qrURL(base, linkID string) string {
	return base + "/qr/" + linkID + ".png"
}

// requestIP prefers the first X-Forwarded-For entry, falling back to the
// transport-level peer address.
func requestIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
