package http

import (
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/internal/usecase"
)

type RecommendationRequest struct {
	UserID     *int64 `json:"user_id,omitempty"`
	ProductID  *int64 `json:"product_id,omitempty"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Limit      *int   `json:"limit,omitempty"`
}

type RecommendationResponse struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	ImageURL  *string `json:"image_url"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}

type ClassificationRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type PriceRangeResponse struct {
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	AveragePrice float64 `json:"average_price"`
}

type ClassificationResponse struct {
	CategoryID          int64               `json:"category_id"`
	CategoryName        string              `json:"category_name"`
	Confidence          float64             `json:"confidence"`
	SuggestedTags       []string            `json:"suggested_tags"`
	SuggestedPriceRange *PriceRangeResponse `json:"suggested_price_range"`
}

type BulkClassificationResponse struct {
	Results []ClassificationResponse `json:"results"`
}

type AutoTagRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
}

type AutoTagResponse struct {
	Tags             []string           `json:"tags"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
}

type CategorySuggestionResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ProductCount int64   `json:"product_count"`
}

type CategorySuggestionsResponse struct {
	Suggestions []CategorySuggestionResponse `json:"suggestions"`
}

type IndexStatusResponse struct {
	Generation   string    `json:"generation"`
	BuiltAt      time.Time `json:"built_at"`
	Products     int       `json:"products"`
	Dimension    int       `json:"dimension"`
	ModelVersion string    `json:"model_version"`
}

type ClassifierStatusResponse struct {
	BuiltAt time.Time `json:"built_at"`
	Classes int       `json:"classes"`
	Tags    int       `json:"tags"`
	Trained bool      `json:"trained"`
}

type EngineStatusResponse struct {
	Index      IndexStatusResponse      `json:"index"`
	Classifier ClassifierStatusResponse `json:"classifier"`
}

type RebuildResponse struct {
	EngineStatusResponse
	DurationMs int64 `json:"duration_ms"`
}

func toRecommendationResponses(recs []domain.Recommendation) []RecommendationResponse {
	out := make([]RecommendationResponse, len(recs))
	for i, r := range recs {
		out[i] = RecommendationResponse{
			ProductID: r.ProductID,
			Title:     r.Title,
			Price:     r.Price,
			ImageURL:  r.ImageURL,
			Score:     r.Score,
			Reason:    string(r.Reason),
		}
	}
	return out
}

func toClassificationResponse(res *domain.ClassificationResult) ClassificationResponse {
	out := ClassificationResponse{
		CategoryID:    res.CategoryID,
		CategoryName:  res.CategoryName,
		Confidence:    res.Confidence,
		SuggestedTags: res.SuggestedTags,
	}
	if out.SuggestedTags == nil {
		out.SuggestedTags = []string{}
	}
	if res.PriceRange != nil {
		out.SuggestedPriceRange = &PriceRangeResponse{
			MinPrice:     res.PriceRange.Min,
			MaxPrice:     res.PriceRange.Max,
			AveragePrice: res.PriceRange.Average,
		}
	}
	return out
}

func toClassifyReqs(reqs []ClassificationRequest) []usecase.ClassifyReq {
	out := make([]usecase.ClassifyReq, len(reqs))
	for i, r := range reqs {
		out[i] = *usecase.NewClassifyReq(r.Title, r.Description)
	}
	return out
}

func toAutoTagResponse(s *domain.TagSuggestion) AutoTagResponse {
	out := AutoTagResponse{Tags: s.Tags, ConfidenceScores: s.Scores}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.ConfidenceScores == nil {
		out.ConfidenceScores = map[string]float64{}
	}
	return out
}

func toCategorySuggestions(items []domain.CategorySuggestion) CategorySuggestionsResponse {
	out := make([]CategorySuggestionResponse, len(items))
	for i, c := range items {
		out[i] = CategorySuggestionResponse{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			ProductCount: c.ProductCount,
		}
	}
	return CategorySuggestionsResponse{Suggestions: out}
}

func toEngineStatusResponse(index usecase.IndexStats, classifier usecase.ClassifierStats) EngineStatusResponse {
	return EngineStatusResponse{
		Index: IndexStatusResponse{
			Generation:   index.Generation,
			BuiltAt:      index.BuiltAt,
			Products:     index.Products,
			Dimension:    index.Dimension,
			ModelVersion: index.ModelVersion,
		},
		Classifier: ClassifierStatusResponse{
			BuiltAt: classifier.BuiltAt,
			Classes: classifier.Classes,
			Tags:    classifier.Tags,
			Trained: classifier.Trained,
		},
	}
}
