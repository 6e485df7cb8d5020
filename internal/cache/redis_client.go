package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Проверяем, что RedisClient реализует все интерфейсы
var _ Store = (*RedisClient)(nil)

// RedisClient - хранилище отзывов, OAuth state и счетчиков rate limit на Redis
type RedisClient struct {
	client     *redis.Client
	keyBuilder *KeyBuilder
}

// RedisConfig - конфигурация для Redis
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	Namespace    string // опциональный namespace для ключей
}

// NewRedisClient создает новый Redis клиент и проверяет подключение
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, NewCacheError("connect", "", fmt.Errorf("failed to connect to Redis: %w", err))
	}

	return NewRedisClientFrom(client, cfg.Namespace), nil
}

// NewRedisClientFrom оборачивает уже созданный клиент
func NewRedisClientFrom(client *redis.Client, namespace string) *RedisClient {
	return &RedisClient{
		client:     client,
		keyBuilder: NewKeyBuilder(namespace),
	}
}

func (r *RedisClient) Driver() string {
	return "redis"
}

// === TokenRevoker ===

// Revoke помечает токен отозванным; ключ живет до истечения токена.
// SETNX делает отзыв атомарным: из двух параллельных вызовов true получит один.
func (r *RedisClient) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if tokenID == "" {
		return false, NewCacheError("setnx", "", ErrInvalidCacheKey)
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	key := r.keyBuilder.Revoked(tokenID)
	ok, err := r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, NewCacheError("setnx", key, err)
	}
	return ok, nil
}

// === StateStore ===

func (r *RedisClient) SaveState(ctx context.Context, state string, ttl time.Duration) error {
	if state == "" {
		return NewCacheError("setnx", "", ErrInvalidCacheKey)
	}

	key := r.keyBuilder.State(state)
	ok, err := r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return NewCacheError("setnx", key, err)
	}
	if !ok {
		return NewCacheError("setnx", key, errors.New("state already exists"))
	}
	return nil
}

// ConsumeState атомарно читает и удаляет state (GETDEL), поэтому
// одно значение нельзя использовать дважды
func (r *RedisClient) ConsumeState(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}

	key := r.keyBuilder.State(state)
	if err := r.client.GetDel(ctx, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, NewCacheError("getdel", key, err)
	}
	return true, nil
}

// === RateLimiter ===

// IncrementRateLimit увеличивает счетчик фиксированного окна. INCR и
// EXPIRE NX уходят одной транзакцией: TTL ставится только первым запросом
// окна, и ключ без TTL не остается.
func (r *RedisClient) IncrementRateLimit(ctx context.Context, clientID string, window time.Duration) (int64, error) {
	key := r.keyBuilder.RateLimit(clientID)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, NewCacheError("incr", key, err)
	}

	return incr.Val(), nil
}

// HealthCheck проверяет соединение с Redis
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return NewCacheError("ping", "", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (r *RedisClient) Close() error {
	if err := r.client.Close(); err != nil {
		return NewCacheError("close", "", err)
	}
	return nil
}
