package grpc

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultLimit = 10

type recommendRequest struct {
	UserID     *int64 `json:"user_id"`
	ProductID  *int64 `json:"product_id"`
	CategoryID *int64 `json:"category_id"`
	Limit      *int   `json:"limit"`
}

type recommendation struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	ImageURL  *string `json:"image_url"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}

type recommendResponse struct {
	Recommendations []recommendation `json:"recommendations"`
}

type classifyRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type priceRange struct {
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	AveragePrice float64 `json:"average_price"`
}

type classifyResponse struct {
	CategoryID          int64       `json:"category_id"`
	CategoryName        string      `json:"category_name"`
	Confidence          float64     `json:"confidence"`
	SuggestedTags       []string    `json:"suggested_tags"`
	SuggestedPriceRange *priceRange `json:"suggested_price_range"`
}

type generateTagsRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	CategoryID  *int64  `json:"category_id"`
}

type generateTagsResponse struct {
	Tags             []string           `json:"tags"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
}

type rebuildResponse struct {
	Generation string    `json:"generation"`
	Products   int       `json:"products"`
	Classes    int       `json:"classes"`
	Tags       int       `json:"tags"`
	BuiltAt    time.Time `json:"built_at"`
	DurationMs int64     `json:"duration_ms"`
}

// IntelligenceService реализует IntelligenceServer поверх usecase-слоя.
type IntelligenceService struct {
	recUC    usecase.RecommendationUC
	clsUC    usecase.ClassificationUC
	engineUC usecase.EngineUC
	logger   logger.Logger
}

func NewIntelligenceService(recUC usecase.RecommendationUC, clsUC usecase.ClassificationUC,
	engineUC usecase.EngineUC, logger logger.Logger) *IntelligenceService {
	return &IntelligenceService{
		recUC:    recUC,
		clsUC:    clsUC,
		engineUC: engineUC,
		logger:   logger,
	}
}

func (g *IntelligenceService) Recommend(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Recommend"

	var req recommendRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, GRPCErrorResponse(err)
	}

	limit := defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	recs, err := g.recUC.Recommend(ctx, usecase.NewRecommendReq(req.UserID, req.ProductID, req.CategoryID, limit))
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(err)
	}

	return g.respond(op, recommendResponse{Recommendations: toRecommendations(recs)})
}

func (g *IntelligenceService) Classify(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Classify"

	var req classifyRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, GRPCErrorResponse(err)
	}

	res, err := g.clsUC.ClassifyProduct(ctx, usecase.NewClassifyReq(req.Title, req.Description))
	if err != nil {
		g.logger.Warnf("%s: %v", op, err)
		return nil, GRPCErrorResponse(err)
	}

	out := classifyResponse{
		CategoryID:    res.CategoryID,
		CategoryName:  res.CategoryName,
		Confidence:    res.Confidence,
		SuggestedTags: res.SuggestedTags,
	}
	if out.SuggestedTags == nil {
		out.SuggestedTags = []string{}
	}
	if res.PriceRange != nil {
		out.SuggestedPriceRange = &priceRange{
			MinPrice:     res.PriceRange.Min,
			MaxPrice:     res.PriceRange.Max,
			AveragePrice: res.PriceRange.Average,
		}
	}

	return g.respond(op, out)
}

func (g *IntelligenceService) GenerateTags(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.GenerateTags"

	var req generateTagsRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, GRPCErrorResponse(err)
	}

	res, err := g.clsUC.GenerateTags(ctx, usecase.NewGenerateTagsReq(req.Title, req.Description, req.CategoryID))
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(err)
	}

	out := generateTagsResponse{Tags: res.Tags, ConfidenceScores: res.Scores}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.ConfidenceScores == nil {
		out.ConfidenceScores = map[string]float64{}
	}

	return g.respond(op, out)
}

func (g *IntelligenceService) Rebuild(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Rebuild"

	res, err := g.engineUC.RebuildAll(context.WithoutCancel(ctx))
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(err)
	}

	return g.respond(op, rebuildResponse{
		Generation: res.Index.Generation,
		Products:   res.Index.Products,
		Classes:    res.Classifier.Classes,
		Tags:       res.Classifier.Tags,
		BuiltAt:    res.Index.BuiltAt,
		DurationMs: res.Duration.Milliseconds(),
	})
}

func (g *IntelligenceService) respond(op string, v any) (*structpb.Struct, error) {
	out, err := encodeStruct(v)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s: encode response", op)
		return nil, GRPCErrorResponse(err)
	}
	return out, nil
}

func toRecommendations(recs []domain.Recommendation) []recommendation {
	out := make([]recommendation, len(recs))
	for i, r := range recs {
		out[i] = recommendation{
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
