package usecase

import (
	"context"
	"time"
)

// EmbeddingInfra переводит тексты в векторы фиксированной размерности.
type EmbeddingInfra interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelVersion() string
}

// EventProducer публикует события движка.
type EventProducer interface {
	PublishRebuilt(ctx context.Context, event *RebuiltEvent) error
}

// MetricsInfra собирает метрики движка.
type MetricsInfra interface {
	ObserveRebuild(component string, duration time.Duration, err error)
	ObserveQuery(strategy string, duration time.Duration, results int)
	ObservePrediction(ok bool)
	SetIndexSize(size int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRebuild(string, time.Duration, error) {}
func (nopMetrics) ObserveQuery(string, time.Duration, int)     {}
func (nopMetrics) ObservePrediction(bool)                      {}
func (nopMetrics) SetIndexSize(int)                            {}
