package auth

import (
	"github.com/gin-gonic/gin"
)

// Principal is the request-scoped authorization level, computed once at
// request entry. The variants are mutually exclusive: a link-only session
// can never be upgraded by any other credential.
type Principal int

const (
	// Anonymous carries no credential at all.
	Anonymous Principal = iota
	// LinkOnly marks a session that followed a tracking link. It is
	// denied at every dashboard endpoint regardless of other auth state.
	LinkOnly
	// Admin may use the dashboard and its APIs.
	Admin
)

func (p Principal) String() string {
	switch p {
	case LinkOnly:
		return "link-only"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

const principalKey = "principal"

// CurrentPrincipal returns the principal stashed by PrincipalMiddleware.
func CurrentPrincipal(c *gin.Context) Principal {
	v, exists := c.Get(principalKey)
	if !exists {
		return Anonymous
	}
	return v.(Principal)
}
