package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/cfg"
	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/jitter"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// RebuildWorker пересобирает движок в фоне.
// Сообщения из топика изменений каталога помечают движок устаревшим; серия сообщений
// схлопывается в одну пересборку через debounce. Дополнительно возможна пересборка по интервалу.
type RebuildWorker struct {
	engine     usecase.EngineUC
	reader     *kafka.Reader // nil — только пересборка по интервалу
	debounce   time.Duration
	interval   time.Duration
	timeout    time.Duration
	maxRetries int
	retryBase  time.Duration
	retryMax   time.Duration
	logger     logger.Logger

	trigger chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRebuildWorker(engine usecase.EngineUC, reader *kafka.Reader, cfg *cfg.EngineCfg, logger logger.Logger) *RebuildWorker {
	return &RebuildWorker{
		engine:     engine,
		reader:     reader,
		debounce:   cfg.RebuildDebounce,
		interval:   cfg.RebuildInterval,
		timeout:    cfg.RebuildTimeout,
		maxRetries: cfg.RebuildMaxRetries,
		retryBase:  time.Second,
		retryMax:   time.Minute,
		logger:     logger,
		trigger:    make(chan struct{}, 1),
	}
}

// NewCatalogReader создаёт consumer group на топике изменений каталога.
func NewCatalogReader(cfg *cfg.KafkaCfg) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.CatalogTopic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  time.Second,
	})
}

func (w *RebuildWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	if w.reader != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.consume(ctx)
		}()
	}
}

// Stop останавливает воркер и дожидается текущей пересборки.
func (w *RebuildWorker) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()

	if w.reader != nil {
		return w.reader.Close()
	}
	return nil
}

// Notify помечает движок устаревшим. Не блокирует.
func (w *RebuildWorker) Notify() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *RebuildWorker) run(ctx context.Context) {
	var (
		debounce *time.Timer
		fire     <-chan time.Time
		tick     <-chan time.Time
	)

	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			w.logger.Infof("rebuild worker stopped")
			return
		case <-w.trigger:
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(w.debounce)
			fire = debounce.C
		case <-fire:
			debounce, fire = nil, nil
			w.rebuild(ctx, "catalog change")
		case <-tick:
			w.rebuild(ctx, "interval")
		}
	}
}

func (w *RebuildWorker) rebuild(ctx context.Context, reason string) {
	w.logger.Infof("starting engine rebuild, reason: %s", reason)

	var res *usecase.RebuildRes
	err := jitter.Retry(ctx, w.maxRetries, w.retryBase, w.retryMax, retryableRebuild, func(ctx context.Context) error {
		rctx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()

		var err error
		res, err = w.engine.RebuildAll(rctx)
		if err != nil {
			w.logger.Warnf("engine rebuild attempt failed: %v", err)
		}
		return err
	})
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Errorf(err, "engine rebuild failed, previous generation stays active")
		}
		return
	}

	w.logger.Infof("engine rebuilt: generation=%s products=%d duration=%s",
		res.Index.Generation, res.Index.Products, res.Duration)
}

func (w *RebuildWorker) consume(ctx context.Context) {
	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warnf("catalog topic read failed: %v", err)
			if jitter.Sleep(ctx, jitter.Duration(2*time.Second, jitter.DefaultJitter)) != nil {
				return
			}
			continue
		}

		w.logger.Debugf("catalog change received: key=%s offset=%d", msg.Key, msg.Offset)
		w.Notify()

		if err := w.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			w.logger.Warnf("failed to commit catalog message: %v", err)
		}
	}
}

func retryableRebuild(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, e.ErrRebuildInProcess)
}
