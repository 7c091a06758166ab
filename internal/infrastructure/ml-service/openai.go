package ml_service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/cfg"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/jitter"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder — клиент embeddings API, совместимого с OpenAI.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dim        int
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     logger.Logger
}

func NewOpenAIEmbedder(cfg *cfg.EmbeddingCfg, logger logger.Logger) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dim:        cfg.VectorSize,
		maxRetries: cfg.MaxRetries,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
		logger:     logger,
	}
}

func (o *OpenAIEmbedder) Dimension() int { return o.dim }

func (o *OpenAIEmbedder) ModelVersion() string {
	return fmt.Sprintf("%s-%d", o.model, o.dim)
}

// Embed векторизует батч одним запросом, повторяя временные ошибки с экспоненциальной задержкой.
// Порядок результатов совпадает с порядком texts.
func (o *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	const op = "OpenAIEmbedder.Embed"

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var vectors [][]float32
	attempt := 0
	err := jitter.Retry(ctx, o.maxRetries, o.baseDelay, o.maxDelay, isRetryable, func(ctx context.Context) error {
		if attempt > 0 {
			o.logger.Warnf("embedding request failed, retrying (attempt %d)", attempt+1)
		}
		attempt++

		var err error
		vectors, err = o.embedBatch(ctx, texts)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return vectors, nil
}

func (o *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      o.model,
		Dimensions: o.dim,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", e.ErrTextVectorMismatch, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) || vectors[item.Index] != nil {
			return nil, fmt.Errorf("%w: unexpected embedding index %d", e.ErrTextVectorMismatch, item.Index)
		}
		if len(item.Embedding) != o.dim {
			return nil, fmt.Errorf("%w: got %d, want %d", e.ErrIndexDimension, len(item.Embedding), o.dim)
		}
		vectors[item.Index] = item.Embedding
	}

	return vectors, nil
}

// isRetryable повторяет сетевые сбои, 429 и 5xx; ошибки запроса и отмену контекста — нет.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, e.ErrTextVectorMismatch) || errors.Is(err, e.ErrIndexDimension) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
