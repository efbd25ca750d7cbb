package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/homechef-inc/mealsub/internal/infrastructure/auth"
	"github.com/homechef-inc/mealsub/internal/shared/constants"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
	"github.com/homechef-inc/mealsub/internal/shared/utils"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
	adminRole  string
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, adminRole string, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		adminRole:  adminRole,
		logger:     logger,
	}
}

// RequireAuth accepts a bearer token and stores the principal id and role
// in the gin context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPrincipalID, claims.PrincipalID)
		c.Set(constants.ContextKeyRole, claims.Role)

		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(constants.ContextKeyRole)
		if m.adminRole == "" || role != m.adminRole {
			m.logger.Warnw("admin route denied",
				"path", c.Request.URL.Path,
				"principal_id", c.GetUint(constants.ContextKeyPrincipalID),
			)
			utils.ErrorResponse(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
