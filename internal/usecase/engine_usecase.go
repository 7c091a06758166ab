package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/google/uuid"
)

// EngineUseCase управляет жизненным циклом индекса и моделей классификации.
type EngineUseCase struct {
	index      *IndexUseCase
	classifier *ClassificationUseCase
	producer   EventProducer
	logger     logger.Logger
	timeout    time.Duration

	rebuildMu sync.Mutex
}

// NewEngineUC создаёт usecase движка. producer может быть nil.
// rebuildTimeout ограничивает одну пересборку, 0 отключает ограничение.
func NewEngineUC(
	index *IndexUseCase,
	classifier *ClassificationUseCase,
	producer EventProducer,
	logger logger.Logger,
	rebuildTimeout time.Duration,
) *EngineUseCase {
	return &EngineUseCase{
		index:      index,
		classifier: classifier,
		producer:   producer,
		logger:     logger,
		timeout:    rebuildTimeout,
	}
}

// Init загружает или строит индекс и модели перед началом обслуживания запросов.
func (u *EngineUseCase) Init(ctx context.Context) error {
	const op = "EngineUseCase.Init"

	if err := u.index.Init(ctx); err != nil {
		return e.Wrap(op, err)
	}
	if err := u.classifier.Init(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// RebuildAll пересобирает индекс и модели и публикует событие о новом поколении.
// Ошибка любой из сборок возвращается, уже опубликованные поколения продолжают обслуживаться.
// Пока идёт другая пересборка, сразу возвращает e.ErrRebuildInProcess.
func (u *EngineUseCase) RebuildAll(ctx context.Context) (*RebuildRes, error) {
	const op = "EngineUseCase.RebuildAll"

	if !u.rebuildMu.TryLock() {
		return nil, e.Wrap(op, e.ErrRebuildInProcess)
	}
	defer u.rebuildMu.Unlock()

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	start := time.Now()

	indexStats, err := u.index.Rebuild(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	classifierStats, err := u.classifier.Rebuild(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &RebuildRes{
		Index:      indexStats,
		Classifier: classifierStats,
		Duration:   time.Since(start),
	}

	if u.producer != nil {
		event := &RebuiltEvent{
			EventID:    uuid.NewString(),
			Generation: indexStats.Generation,
			Products:   indexStats.Products,
			Classes:    classifierStats.Classes,
			Tags:       classifierStats.Tags,
			BuiltAt:    indexStats.BuiltAt,
		}
		if err := u.producer.PublishRebuilt(ctx, event); err != nil {
			u.logger.Warnf("failed to publish rebuild event: %v", e.Wrap(op, err))
		}
	}

	return res, nil
}

func (u *EngineUseCase) Status() *EngineStatus {
	return &EngineStatus{
		Index:      u.index.Stats(),
		Classifier: u.classifier.Stats(),
	}
}
