package converter

import "github.com/DRSN-tech/product-intelligence/internal/domain"

type RecommendationConverter interface {
	ToRedisModel(entity *domain.Recommendation) *RecommendationRedisModel
	ToEntity(model *RecommendationRedisModel) *domain.Recommendation
	ToArrRedisModel(entities []domain.Recommendation) []RecommendationRedisModel
	ToArrEntity(models []RecommendationRedisModel) []domain.Recommendation
}

type recommendationConverter struct{}

func NewRecommendationConverter() RecommendationConverter {
	return recommendationConverter{}
}

func (recommendationConverter) ToRedisModel(entity *domain.Recommendation) *RecommendationRedisModel {
	if entity == nil {
		return nil
	}
	return &RecommendationRedisModel{
		ProductID: entity.ProductID,
		Title:     entity.Title,
		Price:     entity.Price,
		ImageURL:  entity.ImageURL,
		Score:     entity.Score,
		Reason:    string(entity.Reason),
	}
}

func (recommendationConverter) ToEntity(model *RecommendationRedisModel) *domain.Recommendation {
	if model == nil {
		return nil
	}
	return &domain.Recommendation{
		ProductID: model.ProductID,
		Title:     model.Title,
		Price:     model.Price,
		ImageURL:  model.ImageURL,
		Score:     model.Score,
		Reason:    domain.Reason(model.Reason),
	}
}

func (c recommendationConverter) ToArrRedisModel(entities []domain.Recommendation) []RecommendationRedisModel {
	if entities == nil {
		return nil
	}
	out := make([]RecommendationRedisModel, len(entities))
	for i := range entities {
		out[i] = *c.ToRedisModel(&entities[i])
	}
	return out
}

func (c recommendationConverter) ToArrEntity(models []RecommendationRedisModel) []domain.Recommendation {
	if models == nil {
		return nil
	}
	out := make([]domain.Recommendation, len(models))
	for i := range models {
		out[i] = *c.ToEntity(&models[i])
	}
	return out
}
