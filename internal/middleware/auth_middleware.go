package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planner-backend-go/internal/identity"
	"planner-backend-go/internal/session"
)

// Context keys set by the auth middleware.
const (
	ContextUserID      = "userID"
	ContextUserEmail   = "userEmail"
	ContextDisplayName = "userDisplayName"
)

// ErrorResponse mirrors the API error envelope. It is declared here because
// internal/api imports this package.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Status: "error", Message: message})
}

// AccessVerifier validates access tokens issued by this service.
type AccessVerifier interface {
	VerifyAccess(token string) (*session.Claims, error)
}

// IDTokenVerifier validates Firebase ID tokens.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*identity.Identity, error)
}

// AuthMiddleware authenticates requests by bearer token.
type AuthMiddleware struct {
	tokens   AccessVerifier
	idTokens IDTokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates an AuthMiddleware. idTokens may be nil, in which
// case only access tokens issued by this service are accepted.
func NewAuthMiddleware(tokens AccessVerifier, idTokens IDTokenVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, idTokens: idTokens, logger: logger}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// VerifyToken accepts either an access JWT or a Firebase ID token and stores
// the caller in the gin context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "No token provided")
			return
		}

		if claims, err := m.tokens.VerifyAccess(token); err == nil {
			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextUserEmail, claims.Email)
			c.Next()
			return
		}

		if m.idTokens != nil {
			id, err := m.idTokens.VerifyIDToken(c.Request.Context(), token)
			if err == nil {
				c.Set(ContextUserID, id.UID)
				c.Set(ContextUserEmail, id.Email)
				if id.DisplayName != "" {
					c.Set(ContextDisplayName, id.DisplayName)
				}
				c.Next()
				return
			}
			m.logger.Debug("Firebase ID token rejected", zap.Error(err))
		}

		m.logger.Warn("Authentication failed", zap.String("path", c.Request.URL.Path))
		abortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
	}
}
