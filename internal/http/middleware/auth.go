package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bovipred/bovipred-backend/internal/domain/auth"
	"github.com/bovipred/bovipred-backend/internal/http/response"
	"github.com/bovipred/bovipred-backend/internal/platform/ctxutil"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
	"github.com/bovipred/bovipred-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth resolves the bearer token into an active user and puts
// the caller's identity and request metadata on the context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Envelope{
				Success: false, Message: "token requerido",
			})
			return
		}
		user, err := am.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Envelope{
				Success: false, Message: "token invalido o expirado",
			})
			return
		}

		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			UserID:    user.ID,
			UserRole:  user.Role,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin gates user administration. Runs after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return am.requireRole(func(rd *ctxutil.RequestData) bool {
		return rd.UserRole == auth.RoleAdmin
	})
}

// RequireEditor gates breeding-record mutations to admins and
// veterinarians. Runs after RequireAuth.
func (am *AuthMiddleware) RequireEditor() gin.HandlerFunc {
	return am.requireRole(func(rd *ctxutil.RequestData) bool {
		return rd.UserRole == auth.RoleAdmin || rd.UserRole == auth.RoleVeterinarian
	})
}

func (am *AuthMiddleware) requireRole(allowed func(*ctxutil.RequestData) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || !allowed(rd) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Envelope{
				Success: false, Message: "permisos insuficientes",
			})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return c.Query("token")
}
