package clients

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/cfg"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/jitter"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const (
	redisPingBaseDelay = 200 * time.Millisecond
	redisPingMaxDelay  = 2 * time.Second
)

// RedisClient — подключение к Redis для кэша результатов рекомендаций.
type RedisClient struct {
	Client       *r.Client
	pingAttempts int
}

func NewRedisClient(cfg *cfg.RedisCfg) *RedisClient {
	client := r.NewClient(&r.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	return &RedisClient{
		Client:       client,
		pingAttempts: cfg.MaxRetries + 1,
	}
}

// Ping проверяет соединение, повторяя попытки с отступлением, пока не истечёт ctx.
func (c *RedisClient) Ping(ctx context.Context) error {
	err := jitter.Retry(ctx, c.pingAttempts, redisPingBaseDelay, redisPingMaxDelay, nil, func(ctx context.Context) error {
		return c.Client.Ping(ctx).Err()
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *RedisClient) Close() error {
	return c.Client.Close()
}
