package http

import (
	"context"
	"net/http"

	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
)

type EngineHandler struct {
	engineUsecase usecase.EngineUC
	logger        logger.Logger
}

func NewEngineHandler(engineUsecase usecase.EngineUC, logger logger.Logger) *EngineHandler {
	return &EngineHandler{engineUsecase: engineUsecase, logger: logger}
}

// rebuild
//
//	@Summary		Пересборка движка
//	@Description	Синхронно пересобирает индекс и модели классификации; при ошибке остаётся предыдущее поколение
//	@Tags			engine
//	@Produce		json
//	@Success		200	{object}	RebuildResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/engine/rebuild [post]
func (h *EngineHandler) rebuild(w http.ResponseWriter, r *http.Request) {
	// Обрыв соединения не прерывает начатую пересборку.
	res, err := h.engineUsecase.RebuildAll(context.WithoutCancel(r.Context()))
	if err != nil {
		h.logger.Errorf(err, "manual rebuild failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, RebuildResponse{
		EngineStatusResponse: toEngineStatusResponse(res.Index, res.Classifier),
		DurationMs:           res.Duration.Milliseconds(),
	})
}

// status
//
//	@Summary	Состояние движка
//	@Tags		engine
//	@Produce	json
//	@Success	200	{object}	EngineStatusResponse
//	@Router		/engine/status [get]
func (h *EngineHandler) status(w http.ResponseWriter, r *http.Request) {
	st := h.engineUsecase.Status()
	WriteSuccess(w, http.StatusOK, toEngineStatusResponse(st.Index, st.Classifier))
}
