package errors

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ConflictError - нарушение уникальности (код, email, username)
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("conflict on '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("conflict: %s", e.Message)
}

func NewConflictError(field, message string) *ConflictError {
	return &ConflictError{
		Field:   field,
		Message: message,
	}
}

// AuthError - ошибка аутентификации. Сообщение уходит клиенту как есть,
// поэтому не должно раскрывать причину отказа.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// StorageError - сбой хранилища, клиенту отдается только Code и Message
type StorageError struct {
	Code    string
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

func NewStorageError(code, message string, cause error) *StorageError {
	return &StorageError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

var (
	ErrLinkNotFound = NewNotFoundError("short link")
	ErrUserNotFound = NewNotFoundError("user")

	ErrShortCodeExists = NewConflictError("custom_code", "short code is already in use")
	ErrUserExists      = NewConflictError("", "user with this email or username already exists")
	ErrIdentityTaken   = NewConflictError("provider_id", "external identity is already linked")

	ErrInvalidCredentials = NewAuthError("invalid credentials")
	ErrInvalidToken       = NewAuthError("invalid or expired token")
	ErrInvalidState       = NewAuthError("invalid oauth state")
)

// IsValidationError проверяет является ли ошибка ошибкой валидации
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func IsConflictError(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsStorageError проверяет является ли ошибка сбоем хранилища
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

func GetValidationError(err error) *ValidationError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	return nil
}

func GetConflictError(err error) *ConflictError {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr
	}
	return nil
}

func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return nil
}

func GetNotFoundError(err error) *NotFoundError {
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr
	}
	return nil
}

// GetStorageError извлекает StorageError из цепочки ошибок
func GetStorageError(err error) *StorageError {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr
	}
	return nil
}
