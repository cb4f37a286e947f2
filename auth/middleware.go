package auth

import (
	"crypto/subtle"
	"net/http"

	"linktrap/config"

	"github.com/gin-gonic/gin"
)

// SecureCompare reports whether a equals b in constant time. Empty
// expected values never match, so unset credentials cannot be satisfied.
func SecureCompare(supplied, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) == 1
}

// PrincipalMiddleware computes the request principal once and stashes it
// in the gin context. A link-only session cookie is terminal: no basic
// auth or admin cookie can override it.
func PrincipalMiddleware(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.SessionSecret)
	return func(c *gin.Context) {
		c.Set(principalKey, resolvePrincipal(c, cfg, secret))
		c.Next()
	}
}

func resolvePrincipal(c *gin.Context, cfg *config.Config, secret []byte) Principal {
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		if claims, err := ParseSession(secret, cookie); err == nil {
			switch claims.Role {
			case RoleLinkOnly:
				return LinkOnly
			case RoleAdmin:
				return Admin
			}
		}
	}

	if user, pass, ok := c.Request.BasicAuth(); ok {
		if SecureCompare(user, cfg.DashboardUsername) && SecureCompare(pass, cfg.DashboardPassword) {
			return Admin
		}
	}

	return Anonymous
}

// RequireDashboard gates dashboard pages and APIs. Link-only sessions are
// always forbidden; anonymous callers are challenged for basic auth.
func RequireDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch CurrentPrincipal(c) {
		case Admin:
			c.Next()
		case LinkOnly:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			c.Header("WWW-Authenticate", `Basic realm="Honeypot Dashboard"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		}
	}
}

// SetSessionCookie issues a signed session cookie for the given role.
func SetSessionCookie(c *gin.Context, cfg *config.Config, role string) error {
	token, err := IssueSession([]byte(cfg.SessionSecret), role)
	if err != nil {
		return err
	}
	c.SetCookie(SessionCookieName, token, int(sessionLifetime.Seconds()), "/", "", false, true)
	return nil
}
