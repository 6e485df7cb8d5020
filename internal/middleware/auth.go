package middleware

import (
	"net/http"
	"strings"

	"github.com/Kosench/shortlink/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// AccessTokenParser - проверка access токена
type AccessTokenParser interface {
	ParseAccess(token string) (*auth.Claims, error)
}

// Auth пропускает запрос только с валидным заголовком "Authorization: Bearer <token>"
func Auth(parser AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "authorization header is required")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			unauthorized(c, "authorization header must be in format: Bearer {token}")
			return
		}

		claims, err := parser.ParseAccess(strings.TrimSpace(token))
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// GetUserID достает идентификатор пользователя, установленный Auth
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}
