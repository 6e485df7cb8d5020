package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// handleError обрабатывает ошибки и возвращает соответствующие HTTP коды
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": validationMessage(fe),
			"field":   fe.Field(),
		})
		return
	}

	if validationErr := apperrors.GetValidationError(err); validationErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": validationErr.Message,
			"field":   validationErr.Field,
		})
		return
	}

	if conflictErr := apperrors.GetConflictError(err); conflictErr != nil {
		body := gin.H{
			"error":   "conflict",
			"message": conflictErr.Message,
		}
		if conflictErr.Field != "" {
			body["field"] = conflictErr.Field
		}
		c.JSON(http.StatusConflict, body)
		return
	}

	if authErr := apperrors.GetAuthError(err); authErr != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": authErr.Message,
		})
		return
	}

	if notFoundErr := apperrors.GetNotFoundError(err); notFoundErr != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": notFoundErr.Error(),
		})
		return
	}

	if storageErr := apperrors.GetStorageError(err); storageErr != nil {
		logger.Error("storage failure",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", storageErr.Code),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "storage_error",
			"message": storageErr.Message,
			"code":    storageErr.Code,
		})
		return
	}

	// Неизвестная ошибка
	logger.Error("unexpected error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "An unexpected error occurred",
	})
}

// handleBindError отличает нарушение правил валидации от нечитаемого тела
func handleBindError(c *gin.Context, logger *zap.Logger, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		handleError(c, logger, err)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": "Invalid JSON format",
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "alphanum":
		return "may contain only letters and digits"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// jsonFieldName - имена полей в ошибках валидации берутся из json тегов
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
