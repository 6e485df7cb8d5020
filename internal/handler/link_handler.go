package handler

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/metrics"
	"github.com/Kosench/shortlink/internal/middleware"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const clickRecordTimeout = 5 * time.Second

type LinkHandler struct {
	links            LinkService
	notFoundRedirect string
	logger           *zap.Logger

	// фоновые записи кликов, которые нужно дождаться при остановке
	clicks sync.WaitGroup
}

func NewLinkHandler(links LinkService, notFoundRedirect string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		links:            links,
		notFoundRedirect: notFoundRedirect,
		logger:           logger,
	}
}

func (h *LinkHandler) Shorten(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		handleError(c, h.logger, apperrors.ErrInvalidToken)
		return
	}

	var req model.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, h.logger, err)
		return
	}

	response, err := h.links.Shorten(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *LinkHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		handleError(c, h.logger, apperrors.ErrInvalidToken)
		return
	}

	// Нечисловые значения превращаются в 0 и нормализуются сервисом
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	response, err := h.links.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *LinkHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		handleError(c, h.logger, apperrors.ErrInvalidToken)
		return
	}

	linkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, h.logger, apperrors.ErrLinkNotFound)
		return
	}

	if err := h.links.Delete(c.Request.Context(), userID, linkID); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Redirect отвечает 302 сразу, клик записывается в фоне
func (h *LinkHandler) Redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")

	link, err := h.links.Resolve(c.Request.Context(), shortCode)
	if err != nil {
		if apperrors.IsNotFound(err) {
			metrics.RecordRedirect("not_found")
			if h.notFoundRedirect != "" {
				c.Redirect(http.StatusFound, h.notFoundRedirect)
				return
			}
		}
		handleError(c, h.logger, err)
		return
	}

	metrics.RecordRedirect("found")

	referrer := c.Request.Referer()
	userAgent := c.Request.UserAgent()
	// Контекст запроса отменится после ответа, запись кликов его переживает
	ctx := context.WithoutCancel(c.Request.Context())

	h.clicks.Add(1)
	go func() {
		defer h.clicks.Done()

		ctx, cancel := context.WithTimeout(ctx, clickRecordTimeout)
		defer cancel()

		if err := h.links.RecordClick(ctx, link.ID, referrer, userAgent); err != nil {
			metrics.RecordClickFailure()
			h.logger.Warn("failed to record click",
				zap.String("short_code", link.ShortCode),
				zap.Error(err),
			)
		}
	}()

	c.Redirect(http.StatusFound, link.TargetURL)
}

// Shutdown ждет завершения фоновых записей кликов или отмены ctx
func (h *LinkHandler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.clicks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
