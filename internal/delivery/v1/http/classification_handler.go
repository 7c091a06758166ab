package http

import (
	"net/http"

	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
)

const maxBulkItems = 100

type ClassificationHandler struct {
	clsUsecase usecase.ClassificationUC
	logger     logger.Logger
}

func NewClassificationHandler(clsUsecase usecase.ClassificationUC, logger logger.Logger) *ClassificationHandler {
	return &ClassificationHandler{clsUsecase: clsUsecase, logger: logger}
}

// classify
//
//	@Summary		Классификация продукта
//	@Description	Предсказывает категорию, предлагает теги и ценовой диапазон
//	@Tags			classification
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ClassificationRequest	true	"Описание продукта"
//	@Success		200		{object}	ClassificationResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/classification/product [post]
func (h *ClassificationHandler) classify(w http.ResponseWriter, r *http.Request) {
	var req ClassificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.clsUsecase.ClassifyProduct(r.Context(), usecase.NewClassifyReq(req.Title, req.Description))
	if err != nil {
		h.logger.Warnf("classify failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toClassificationResponse(res))
}

// autoTag
//
//	@Summary	Автотеги
//	@Tags		classification
//	@Accept		json
//	@Produce	json
//	@Param		request	body		AutoTagRequest	true	"Описание продукта"
//	@Success	200		{object}	AutoTagResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/classification/auto-tag [post]
func (h *ClassificationHandler) autoTag(w http.ResponseWriter, r *http.Request) {
	var req AutoTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.clsUsecase.GenerateTags(r.Context(), usecase.NewGenerateTagsReq(req.Title, req.Description, req.CategoryID))
	if err != nil {
		h.logger.Errorf(err, "auto-tag failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toAutoTagResponse(res))
}

// bulkClassify
//
//	@Summary	Пакетная классификация
//	@Tags		classification
//	@Accept		json
//	@Produce	json
//	@Param		request	body		[]ClassificationRequest	true	"Список продуктов"
//	@Success	200		{object}	BulkClassificationResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/classification/bulk-classify [post]
func (h *ClassificationHandler) bulkClassify(w http.ResponseWriter, r *http.Request) {
	var req []ClassificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}
	if len(req) > maxBulkItems {
		WriteError(w, e.Wrap("too many products", e.ErrStatusBadRequest))
		return
	}

	res, err := h.clsUsecase.BulkClassify(r.Context(), toClassifyReqs(req))
	if err != nil {
		h.logger.Warnf("bulk classify failed: %v", err)
		WriteError(w, err)
		return
	}

	out := BulkClassificationResponse{Results: make([]ClassificationResponse, len(res))}
	for i := range res {
		out.Results[i] = toClassificationResponse(&res[i])
	}

	WriteSuccess(w, http.StatusOK, out)
}

// categories
//
//	@Summary	Подсказки категорий
//	@Tags		classification
//	@Produce	json
//	@Param		query	query		string	false	"Подстрока имени"
//	@Param		limit	query		int		false	"Количество"	default(10)
//	@Success	200		{object}	CategorySuggestionsResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/classification/categories [get]
func (h *ClassificationHandler) categories(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.clsUsecase.CategorySuggestions(r.Context(), r.URL.Query().Get("query"), limit)
	if err != nil {
		h.logger.Errorf(err, "category suggestions failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategorySuggestions(res))
}
