package cache

import (
	"context"
	"time"
)

// TokenRevoker - отозванные refresh токены (по jti) до истечения их срока
type TokenRevoker interface {
	// Revoke возвращает false, если токен уже был отозван раньше
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}

// StateStore - одноразовые значения OAuth state
type StateStore interface {
	SaveState(ctx context.Context, state string, ttl time.Duration) error
	// ConsumeState удаляет state и сообщает, существовал ли он
	ConsumeState(ctx context.Context, state string) (bool, error)
}

// RateLimiter - интерфейс для rate limiting
type RateLimiter interface {
	// IncrementRateLimit увеличивает счетчик клиента в текущем окне
	IncrementRateLimit(ctx context.Context, clientID string, window time.Duration) (int64, error)
}

// Store - полный интерфейс хранилища (композиция интерфейсов)
type Store interface {
	TokenRevoker
	StateStore
	RateLimiter

	Driver() string
	HealthCheck(ctx context.Context) error
	Close() error
}
