package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	contextKeyUserID    = "user_id"
	contextKeyUserEmail = "user_email"
)

// AuthMiddleware resolves bearer tokens to users
type AuthMiddleware struct {
	logger      utils.Logger
	authService services.AuthService
}

func NewAuthMiddleware(logger utils.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		logger:      logger,
		authService: authService,
	}
}

// RequireAuth aborts with 401 unless the request carries a valid bearer token
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
				Code:    CodeUnauthorized,
			})
			return
		}

		user, err := am.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			am.logger.Warn("Rejected bearer token",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
				"error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
				Code:    CodeUnauthorized,
			})
			return
		}

		c.Set(contextKeyUserID, user.ID)
		c.Set(contextKeyUserEmail, user.Email)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// UserIDFromContext returns the user set by RequireAuth
func UserIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(contextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}
