package http

import (
	"net/http"

	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
)

type RecommendationHandler struct {
	recUsecase usecase.RecommendationUC
	logger     logger.Logger
}

func NewRecommendationHandler(recUsecase usecase.RecommendationUC, logger logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{recUsecase: recUsecase, logger: logger}
}

// recommend
//
//	@Summary		Рекомендации продуктов
//	@Description	Стратегия выбирается по первому заданному полю: user_id, product_id, category_id; иначе популярные
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RecommendationRequest	true	"Параметры запроса"
//	@Success		200		{array}		RecommendationResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/recommendations/products [post]
func (h *RecommendationHandler) recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	limit, err := normalizeLimit(req.Limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	recs, err := h.recUsecase.Recommend(r.Context(), usecase.NewRecommendReq(req.UserID, req.ProductID, req.CategoryID, limit))
	if err != nil {
		h.logger.Errorf(err, "recommend failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationResponses(recs))
}

// trending
//
//	@Summary	Трендовые продукты
//	@Tags		recommendations
//	@Produce	json
//	@Param		limit		query		int	false	"Количество"	default(10)
//	@Param		category_id	query		int	false	"Категория"
//	@Success	200			{array}		RecommendationResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/recommendations/trending [get]
func (h *RecommendationHandler) trending(w http.ResponseWriter, r *http.Request) {
	limit, categoryID, err := parseListQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	recs, err := h.recUsecase.Trending(r.Context(), categoryID, limit)
	if err != nil {
		h.logger.Errorf(err, "trending failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationResponses(recs))
}

// newArrivals
//
//	@Summary	Новинки
//	@Tags		recommendations
//	@Produce	json
//	@Param		limit		query		int	false	"Количество"	default(10)
//	@Param		category_id	query		int	false	"Категория"
//	@Success	200			{array}		RecommendationResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/recommendations/new-arrivals [get]
func (h *RecommendationHandler) newArrivals(w http.ResponseWriter, r *http.Request) {
	limit, categoryID, err := parseListQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	recs, err := h.recUsecase.NewArrivals(r.Context(), categoryID, limit)
	if err != nil {
		h.logger.Errorf(err, "new arrivals failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationResponses(recs))
}

// personalized
//
//	@Summary	Персональные рекомендации
//	@Tags		recommendations
//	@Produce	json
//	@Param		user_id	query		int	true	"Пользователь"
//	@Param		limit	query		int	false	"Количество"	default(10)
//	@Success	200		{array}		RecommendationResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/recommendations/personalized [post]
func (h *RecommendationHandler) personalized(w http.ResponseWriter, r *http.Request) {
	userID, err := parseOptionalID(r, "user_id")
	if err != nil {
		WriteError(w, err)
		return
	}
	if userID == nil {
		WriteError(w, e.Wrap("user_id is required", e.ErrInvalidID))
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	recs, err := h.recUsecase.Personalized(r.Context(), *userID, limit)
	if err != nil {
		h.logger.Errorf(err, "personalized failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationResponses(recs))
}

func parseListQuery(r *http.Request) (int, *int64, error) {
	limit, err := parseLimit(r)
	if err != nil {
		return 0, nil, err
	}

	categoryID, err := parseOptionalID(r, "category_id")
	if err != nil {
		return 0, nil, err
	}

	return limit, categoryID, nil
}
