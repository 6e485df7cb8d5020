package handler

import (
	"net/http"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth    AuthService
	cookies CookieConfig
	logger  *zap.Logger
}

func NewAuthHandler(auth AuthService, cookies CookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookies: cookies,
		logger:  logger,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, h.logger, err)
		return
	}

	pair, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.respondWithTokens(c, http.StatusCreated, pair)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, h.logger, err)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.respondWithTokens(c, http.StatusOK, pair)
}

// Refresh меняет refresh cookie на новую пару токенов
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(RefreshCookieName)
	if err != nil || token == "" {
		handleError(c, h.logger, apperrors.ErrInvalidToken)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		if apperrors.IsAuthError(err) {
			h.cookies.clearRefresh(c)
		}
		handleError(c, h.logger, err)
		return
	}

	h.respondWithTokens(c, http.StatusOK, pair)
}

// Logout всегда успешен: токен отзывается, если он валиден, cookie очищается
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(RefreshCookieName); err == nil && token != "" {
		h.auth.Logout(c.Request.Context(), token)
	}

	h.cookies.clearRefresh(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, status int, pair *model.TokenPair) {
	h.cookies.setRefresh(c, pair.RefreshToken)
	c.JSON(status, model.TokenResponse{AccessToken: pair.AccessToken})
}
