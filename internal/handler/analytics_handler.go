package handler

import (
	"net/http"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analytics AnalyticsService
	logger    *zap.Logger
}

func NewAnalyticsHandler(analytics AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *AnalyticsHandler) GetLinkAnalytics(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		handleError(c, h.logger, apperrors.ErrInvalidToken)
		return
	}

	response, err := h.analytics.GetLinkAnalytics(c.Request.Context(), c.Param("shortCode"), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
