package handler

import (
	"net/http"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/middleware"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	users   UserService
	cookies CookieConfig
	logger  *zap.Logger
}

func NewUserHandler(users UserService, cookies CookieConfig, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:   users,
		cookies: cookies,
		logger:  logger,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		handleError(c, h.logger, apperrors.ErrInvalidToken)
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		handleError(c, h.logger, apperrors.ErrInvalidToken)
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, h.logger, err)
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteAccount удаляет пользователя и сбрасывает refresh cookie
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		handleError(c, h.logger, apperrors.ErrInvalidToken)
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), userID); err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.cookies.clearRefresh(c)
	c.Status(http.StatusNoContent)
}
