package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/dto/response"
)

const (
	// ActorIDHeader carries the opaque identifier of the acting user.
	// The gateway in front of this service is responsible for
	// authenticating the caller; the header is trusted as-is.
	ActorIDHeader = "X-User-ID"
	// ActorRoleHeader carries the caller's role label, if any
	ActorRoleHeader = "X-Actor-Role"
)

// ActorMiddleware extracts the acting user from the request headers and
// stores it in the Gin context for handlers and the idempotency layer.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if idStr := c.GetHeader(ActorIDHeader); idStr != "" {
			if userID, err := uuid.Parse(idStr); err == nil {
				c.Set("user_id", userID)
			}
		}
		if role := c.GetHeader(ActorRoleHeader); role != "" {
			c.Set("actor_role", role)
		}
		c.Next()
	}
}

// ActorRequired rejects requests that do not identify an acting user.
// Mutating operations need the actor for audit fields.
func ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user_id"); !exists {
			response.Unauthorized(c, "X-User-ID header with a valid UUID is required")
			c.Abort()
			return
		}
		c.Next()
	}
}
