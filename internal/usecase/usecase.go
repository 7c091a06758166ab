package usecase

import (
	"context"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
)

type RecommendationUC interface {
	Recommend(ctx context.Context, req *RecommendReq) ([]domain.Recommendation, error)
	Trending(ctx context.Context, categoryID *int64, limit int) ([]domain.Recommendation, error)
	NewArrivals(ctx context.Context, categoryID *int64, limit int) ([]domain.Recommendation, error)
	Personalized(ctx context.Context, userID int64, limit int) ([]domain.Recommendation, error)
}

type ClassificationUC interface {
	ClassifyProduct(ctx context.Context, req *ClassifyReq) (*domain.ClassificationResult, error)
	BulkClassify(ctx context.Context, reqs []ClassifyReq) ([]domain.ClassificationResult, error)
	GenerateTags(ctx context.Context, req *GenerateTagsReq) (*domain.TagSuggestion, error)
	CategorySuggestions(ctx context.Context, query string, limit int) ([]domain.CategorySuggestion, error)
}

type EngineUC interface {
	RebuildAll(ctx context.Context) (*RebuildRes, error)
	Status() *EngineStatus
}

// SimilarityIndex — запросы к векторному индексу.
type SimilarityIndex interface {
	Query(productID int64, k int) []domain.Neighbor
	Generation() string
}
