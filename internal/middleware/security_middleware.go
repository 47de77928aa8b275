package middleware

import (
	"net/http"

	"smart-shopper/internal/auth"
	applog "smart-shopper/internal/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags every request so log lines can be correlated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(applog.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequireCapability resolves the caller through the guard and stops the request with 403
// when the caller is unknown or their role does not hold the capability.
func RequireCapability(guard *auth.Guard, capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		member, err := guard.Check(c.Request, capability)
		if err != nil {
			applog.Security(c, "auth.denied", map[string]any{"capability": string(capability), "reason": err.Error()})
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			c.Abort()
			return
		}

		// Store staff info in the context for the handler to use
		c.Set("staff", member.Username)
		c.Set("role", string(member.Role))
		c.Next()
	}
}
