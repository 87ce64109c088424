package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obrafin/backend/internal/domain/identity"
	"github.com/obrafin/backend/internal/interfaces/http/dto"
)

const actorContextKey = "actor"

// Actor resolves the acting user from the X-User-ID and X-User-Role headers
// set by the authenticating gateway. Requests without a valid pair are
// rejected before reaching any handler.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetHeader("X-User-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse("UNAUTHORIZED", "Missing or malformed X-User-ID header"))
			return
		}

		role := identity.Role(c.GetHeader("X-User-Role"))
		if !role.IsValid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse("UNAUTHORIZED", "Missing or unknown X-User-Role header"))
			return
		}

		c.Set(actorContextKey, identity.Actor{ID: userID, Role: role})
		c.Next()
	}
}

// ActorFrom returns the actor resolved by the Actor middleware
func ActorFrom(c *gin.Context) identity.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(identity.Actor); ok {
			return actor
		}
	}
	return identity.Actor{}
}
