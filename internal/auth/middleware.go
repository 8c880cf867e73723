package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/srniranjan/dopamine-menu/internal/config"
)

const identityKey = "identity"

// Middleware resolves the caller's identity from a Bearer token when one is
// present. It never aborts: routes that require an identity enforce it
// themselves, since part of the API tolerates anonymous calls.
func Middleware(provider Provider, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			var id *Identity
			var err error
			if cfg.AuthMode == "local" {
				id, err = provider.ValidateTokenLocal(token)
			} else {
				id, err = provider.ValidateTokenRemote(c.Request.Context(), token)
			}
			if err == nil && id != nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the resolved identity, or nil for anonymous calls.
func CurrentIdentity(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}
