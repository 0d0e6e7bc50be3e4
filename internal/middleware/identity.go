package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/team-popo-world/back-repo/internal/models"
)

// ChildIDHeader identifies the playing child. Authentication is out of scope, the header is trusted.
const ChildIDHeader = "X-Child-ID"

// ChildIdentity resolves the caller's child id from ChildIDHeader, falling back to the configured
// placeholder, and stores it in both the gin and the request context.
func ChildIdentity(fallback uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		childID := fallback
		if raw := strings.TrimSpace(c.GetHeader(ChildIDHeader)); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid " + ChildIDHeader + " header"})
				return
			}
			childID = parsed
		}

		c.Set(string(models.ChildIDContextKey), childID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), models.ChildIDContextKey, childID))
		c.Next()
	}
}

// ChildIDFromContext returns the child id stored by ChildIdentity.
func ChildIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(string(models.ChildIDContextKey))
	if !ok {
		return uuid.Nil, false
	}
	childID, ok := v.(uuid.UUID)
	return childID, ok
}
