// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/interfaces/http/response"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"github.com/your-org/production-backend/internal/pkg/logger"
)

const claimsKey = "token_claims"

// AuthMiddleware requires a valid access token and stores its claims on the context
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperror.New(apperror.CodeUnauthenticated, "authorization header required"))
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			response.Error(c, apperror.New(apperror.CodeUnauthenticated, "invalid authorization header format"))
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			response.Error(c, apperror.New(apperror.CodeUnauthenticated, "invalid or expired token"))
			return
		}

		// Store user information in context
		c.Set("user_id", claims.UserID)
		c.Set(claimsKey, claims)

		ctx := c.Request.Context()
		entry := logger.FromContext(ctx).WithField("user_id", claims.UserID)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, entry))

		c.Next()
	}
}

// RequireRole rejects callers whose role ranks below min. It must run after AuthMiddleware.
func RequireRole(min auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			response.Error(c, apperror.New(apperror.CodeUnauthenticated, "authentication required"))
			return
		}
		if !actor.Role.AtLeast(min) {
			response.Error(c, apperror.New(apperror.CodePermissionDenied, "%s role required", min).
				WithDetails(map[string]interface{}{"required": min, "actual": actor.Role}))
			return
		}
		c.Next()
	}
}

// ActorFromContext returns the authenticated caller
func ActorFromContext(c *gin.Context) (auth.Actor, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return auth.Actor{}, false
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		return auth.Actor{}, false
	}
	return claims.Actor(), true
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}
