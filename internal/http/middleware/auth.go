package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"plate-registry/internal/auth"
	"plate-registry/internal/model"
)

const (
	actorContextKey     = "actor"
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer"
)

// Auth validates the bearer token and stores the token's username as
// the request actor. When parser is nil authentication is disabled and
// every request runs as the default actor.
func Auth(parser *auth.Parser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if parser == nil {
			c.Set(actorContextKey, model.DefaultActor)
			c.Next()
			return
		}

		rawHeader := c.GetHeader(authorizationHeader)
		if rawHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header missing"})
			return
		}

		parts := strings.SplitN(rawHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := parser.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		actor := strings.TrimSpace(claims.Username)
		if actor == "" {
			actor = model.DefaultActor
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// Actor returns the actor label attached by Auth, falling back to the
// default when the middleware did not run.
func Actor(c *gin.Context) string {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return model.DefaultActor
	}
	actor, ok := value.(string)
	if !ok || actor == "" {
		return model.DefaultActor
	}
	return actor
}
