package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Kosench/shortlink/internal/cache"
	"github.com/Kosench/shortlink/internal/database"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const Version = "1.0.0"

type HealthHandler struct {
	db       *gorm.DB
	store    cache.Store
	dbDriver string
}

func NewHealthHandler(db *gorm.DB, store cache.Store) *HealthHandler {
	return &HealthHandler{
		db:       db,
		store:    store,
		dbDriver: db.Dialector.Name(),
	}
}

// Health возвращает 503, если база или хранилище токенов недоступны
func (h *HealthHandler) Health(c *gin.Context) {
	services := gin.H{}
	status := "healthy"

	if err := database.HealthCheck(h.db); err != nil {
		services["database"] = "unhealthy"
		status = "degraded"
	} else {
		services["database"] = "healthy"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.HealthCheck(ctx); err != nil {
		services["cache"] = "unhealthy"
		status = "degraded"
	} else {
		services["cache"] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":   status,
		"services": services,
	})
}

func (h *HealthHandler) Info(c *gin.Context) {
	info := gin.H{
		"service":         "shortlink",
		"version":         Version,
		"database_driver": h.dbDriver,
		"cache_driver":    h.store.Driver(),
	}

	if version, err := database.GetVersion(h.db); err == nil {
		info["database_version"] = version
	}

	c.JSON(http.StatusOK, info)
}
