package qdrant

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/pkg/clients"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	upsertBatchSize  = 256
	failureThreshold = 3
	breakerTimeout   = 30 * time.Second
)

// EmbeddingRepo зеркалирует векторы текущего поколения в коллекцию Qdrant.
// Зеркало вторично: поиск всегда идёт по локальному индексу, а при серии ошибок breaker размыкается и запросы в Qdrant не уходят.
type EmbeddingRepo struct {
	client     *qdrant.Client
	collection string
	breaker    *gobreaker.CircuitBreaker[struct{}]
	logger     logger.Logger
}

func NewEmbeddingRepo(client *qdrant.Client, collection string, logger logger.Logger) *EmbeddingRepo {
	settings := gobreaker.Settings{
		Name:        "qdrant-mirror",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infof("circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &EmbeddingRepo{
		client:     client,
		collection: collection,
		breaker:    gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:     logger,
	}
}

// Replace загружает векторы поколения и удаляет точки остальных поколений.
func (q *EmbeddingRepo) Replace(ctx context.Context, generation string, embeddings []domain.Embedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	_, err := q.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, q.replace(ctx, generation, embeddings)
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (q *EmbeddingRepo) replace(ctx context.Context, generation string, embeddings []domain.Embedding) error {
	dim := uint64(len(embeddings[0].Vector))
	if err := clients.EnsureCollection(ctx, q.client, q.collection, dim); err != nil {
		return err
	}

	for start := 0; start < len(embeddings); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(embeddings))

		points := make([]*qdrant.PointStruct, 0, end-start)
		for _, emb := range embeddings[start:end] {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDNum(uint64(emb.ProductID)),
				Vectors: qdrant.NewVectors(emb.Vector...),
				Payload: qdrant.NewValueMap(emb.Payload),
			})
		}

		if _, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.collection,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		}); err != nil {
			return err
		}
	}

	if _, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Wait:           qdrant.PtrOf(true),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			MustNot: []*qdrant.Condition{qdrant.NewMatch("generation", generation)},
		}),
	}); err != nil {
		return err
	}

	q.logger.Debugf("mirrored %d vectors of generation %s to %s", len(embeddings), generation, q.collection)

	return nil
}
