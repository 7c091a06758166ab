package redis

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/internal/repository/redis/converter"
	"github.com/DRSN-tech/product-intelligence/pkg/clients"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует готовые списки рекомендаций.
// Ключ содержит поколение индекса, поэтому после пересборки старые записи просто истекают по TTL.
type CacheRepo struct {
	client    *clients.RedisClient
	conv      converter.RecommendationConverter
	ttl       time.Duration
	namespace string
	logger    logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.RecommendationConverter,
	ttl time.Duration, namespace string, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client:    client,
		conv:      conv,
		ttl:       ttl,
		namespace: namespace,
		logger:    logger,
	}
}

// GetRecommendations возвращает список из кэша; битая запись удаляется и считается промахом.
func (c *CacheRepo) GetRecommendations(ctx context.Context, key string) ([]domain.Recommendation, bool, error) {
	fullKey := c.key(key)

	data, err := c.client.Client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []converter.RecommendationRedisModel
	if err := json.Unmarshal(data, &models); err != nil {
		c.logger.Warnf("Redis unmarshal failed for %s: %v", fullKey, e.Wrap(whereami.WhereAmI(), err))
		if err := c.client.Client.Del(ctx, fullKey).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, false, nil
	}

	recs := c.conv.ToArrEntity(models)
	if recs == nil {
		recs = []domain.Recommendation{}
	}

	return recs, true, nil
}

// SetRecommendations сохраняет список с TTL из конфигурации.
func (c *CacheRepo) SetRecommendations(ctx context.Context, key string, recs []domain.Recommendation) error {
	models := c.conv.ToArrRedisModel(recs)
	if models == nil {
		models = []converter.RecommendationRedisModel{}
	}

	data, err := json.Marshal(models)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) key(key string) string {
	if c.namespace == "" {
		return key
	}
	return c.namespace + ":" + key
}
