package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/pkg/artifact"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/DRSN-tech/product-intelligence/pkg/vectorindex"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// indexSnapshot — неизменяемое поколение индекса. Публикуется атомарно целиком.
type indexSnapshot struct {
	index        *vectorindex.Flat
	embeddings   map[int64][]float32
	generation   string
	modelVersion string
	builtAt      time.Time
}

func (s *indexSnapshot) stats() IndexStats {
	if s == nil {
		return IndexStats{}
	}
	return IndexStats{
		Generation:   s.generation,
		BuiltAt:      s.builtAt,
		Products:     s.index.Len(),
		Dimension:    s.index.Dim(),
		ModelVersion: s.modelVersion,
	}
}

type embeddingsPayload struct {
	Generation   string           `json:"generation"`
	ModelVersion string           `json:"model_version"`
	Dim          int              `json:"dim"`
	Entries      []embeddingEntry `json:"entries"`
}

type embeddingEntry struct {
	ProductID int64  `json:"product_id"`
	Vector    []byte `json:"vector"`
}

type indexPayload struct {
	Generation string `json:"generation"`
	Data       []byte `json:"data"`
}

// IndexUseCase строит, хранит и обслуживает векторный индекс похожести продуктов.
// Запросы читают опубликованный снимок без блокировок, сборки выполняются строго по одной.
type IndexUseCase struct {
	catalogRepo   CatalogRepository
	snapshots     SnapshotRunner
	artifactRepo  ArtifactRepository
	embeddingRepo EmbeddingRepository
	embedder      EmbeddingInfra
	metrics       MetricsInfra
	logger        logger.Logger
	batchSize     int
	maxConcurrent int

	current atomic.Pointer[indexSnapshot]
	buildMu sync.Mutex
}

// NewIndexUC создаёт usecase индекса. embeddingRepo и metrics могут быть nil.
func NewIndexUC(
	catalogRepo CatalogRepository,
	snapshots SnapshotRunner,
	artifactRepo ArtifactRepository,
	embeddingRepo EmbeddingRepository,
	embedder EmbeddingInfra,
	metrics MetricsInfra,
	logger logger.Logger,
	batchSize int,
	maxConcurrent int,
) *IndexUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if batchSize <= 0 {
		batchSize = 64
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &IndexUseCase{
		catalogRepo:   catalogRepo,
		snapshots:     snapshots,
		artifactRepo:  artifactRepo,
		embeddingRepo: embeddingRepo,
		embedder:      embedder,
		metrics:       metrics,
		logger:        logger,
		batchSize:     batchSize,
		maxConcurrent: maxConcurrent,
	}
}

// Init загружает индекс из артефактов, а при неудаче собирает его заново и сохраняет.
func (u *IndexUseCase) Init(ctx context.Context) error {
	const op = "IndexUseCase.Init"

	snap, err := u.load(ctx)
	if err == nil {
		u.publish(snap)
		u.logger.Infof("similarity index loaded: generation=%s products=%d", snap.generation, snap.index.Len())
		return nil
	}

	u.logger.Warnf("failed to load similarity index, rebuilding: %v", e.Wrap(op, err))

	if _, err := u.Rebuild(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// Rebuild собирает новое поколение индекса по всем активным продуктам и публикует его.
// При ошибке сборки продолжает обслуживаться предыдущее поколение.
func (u *IndexUseCase) Rebuild(ctx context.Context) (IndexStats, error) {
	const op = "IndexUseCase.Rebuild"

	u.buildMu.Lock()
	defer u.buildMu.Unlock()

	start := time.Now()
	snap, err := u.build(ctx)
	u.metrics.ObserveRebuild("index", time.Since(start), err)
	if err != nil {
		return IndexStats{}, e.Wrap(op, err)
	}

	u.publish(snap)
	u.logger.Infof(
		"similarity index rebuilt: generation=%s products=%d took=%s",
		snap.generation, snap.index.Len(), time.Since(start),
	)

	if err := u.save(ctx, snap); err != nil {
		u.logger.Warnf("failed to save similarity index: %v", e.Wrap(op, err))
	}

	if err := u.mirror(ctx, snap); err != nil {
		u.logger.Warnf("failed to publish embeddings to vector store: %v", e.Wrap(op, err))
	}

	return snap.stats(), nil
}

// Query возвращает не более k соседей продукта, исключая сам продукт.
// Для неизвестного продукта или непостроенного индекса возвращается пустой результат.
func (u *IndexUseCase) Query(productID int64, k int) []domain.Neighbor {
	const op = "IndexUseCase.Query"

	snap := u.current.Load()
	if snap == nil || k <= 0 {
		return []domain.Neighbor{}
	}

	vec, ok := snap.embeddings[productID]
	if !ok {
		return []domain.Neighbor{}
	}

	hits, err := snap.index.Search(vec, k+1)
	if err != nil {
		u.logger.Warnf("similarity search failed: %v", e.Wrap(op, err))
		return []domain.Neighbor{}
	}

	neighbors := make([]domain.Neighbor, 0, k)
	for _, hit := range hits {
		if hit.ID == productID {
			continue
		}
		neighbors = append(neighbors, domain.Neighbor{ProductID: hit.ID, Score: hit.Score})
		if len(neighbors) == k {
			break
		}
	}

	return neighbors
}

// Generation возвращает идентификатор опубликованного поколения индекса.
func (u *IndexUseCase) Generation() string {
	if snap := u.current.Load(); snap != nil {
		return snap.generation
	}
	return ""
}

func (u *IndexUseCase) Stats() IndexStats {
	return u.current.Load().stats()
}

func (u *IndexUseCase) publish(snap *indexSnapshot) {
	u.current.Store(snap)
	u.metrics.SetIndexSize(snap.index.Len())
}

// build читает каталог в одном снимке и строит новое поколение.
func (u *IndexUseCase) build(ctx context.Context) (*indexSnapshot, error) {
	const op = "IndexUseCase.build"

	var (
		ids   []int64
		texts []string
	)
	seen := make(map[int64]struct{})

	err := u.snapshots.InSnapshot(ctx, func(ctx context.Context) error {
		return u.catalogRepo.StreamActive(ctx, func(p *domain.ProductRecord) error {
			if _, ok := seen[p.ID]; ok {
				u.logger.Warnf("duplicate product id in catalog: %d", p.ID)
				return nil
			}
			seen[p.ID] = struct{}{}
			ids = append(ids, p.ID)
			texts = append(texts, p.EmbeddingText())
			return nil
		})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	vectors, err := u.embedAll(ctx, texts)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	dim := u.embedder.Dimension()
	index := vectorindex.NewFlat(dim)
	for i, id := range ids {
		if err := index.Add(id, vectorindex.Normalize(vectors[i])); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	return &indexSnapshot{
		index:        index,
		embeddings:   embeddingsOf(index),
		generation:   uuid.NewString(),
		modelVersion: u.embedder.ModelVersion(),
		builtAt:      time.Now().UTC(),
	}, nil
}

// embedAll параллельно эмбеддит тексты пачками, сохраняя исходный порядок.
func (u *IndexUseCase) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	const op = "IndexUseCase.embedAll"

	vectors := make([][]float32, len(texts))
	dim := u.embedder.Dimension()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(u.maxConcurrent)

	for start := 0; start < len(texts); start += u.batchSize {
		end := min(start+u.batchSize, len(texts))
		g.Go(func() error {
			batch, err := u.embedder.Embed(gCtx, texts[start:end])
			if err != nil {
				return err
			}
			if len(batch) != end-start {
				return fmt.Errorf("%w: got %d vectors for %d texts", e.ErrTextVectorMismatch, len(batch), end-start)
			}
			for i, vec := range batch {
				if len(vec) != dim {
					return fmt.Errorf("%w: got %d, want %d", e.ErrIndexDimension, len(vec), dim)
				}
				vectors[start+i] = vec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, e.Wrap(op, err)
	}

	return vectors, nil
}

func (u *IndexUseCase) save(ctx context.Context, snap *indexSnapshot) error {
	const op = "IndexUseCase.save"

	ids := snap.index.IDs()
	entries := make([]embeddingEntry, len(ids))
	for pos, id := range ids {
		entries[pos] = embeddingEntry{ProductID: id, Vector: vectorindex.EncodeVector(snap.index.Vector(pos))}
	}

	embData, err := artifact.Encode(artifact.KindEmbeddings, embeddingsPayload{
		Generation:   snap.generation,
		ModelVersion: snap.modelVersion,
		Dim:          snap.index.Dim(),
		Entries:      entries,
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	indexBin, err := snap.index.MarshalBinary()
	if err != nil {
		return e.Wrap(op, err)
	}
	indexData, err := artifact.Encode(artifact.KindIndex, indexPayload{Generation: snap.generation, Data: indexBin})
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := u.artifactRepo.Save(ctx, string(artifact.KindEmbeddings), embData); err != nil {
		return e.Wrap(op, err)
	}
	if err := u.artifactRepo.Save(ctx, string(artifact.KindIndex), indexData); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// load восстанавливает поколение из артефактов и проверяет согласованность индекса и эмбеддингов.
func (u *IndexUseCase) load(ctx context.Context) (*indexSnapshot, error) {
	const op = "IndexUseCase.load"

	embData, err := u.artifactRepo.Load(ctx, string(artifact.KindEmbeddings))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	indexData, err := u.artifactRepo.Load(ctx, string(artifact.KindIndex))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var embPayload embeddingsPayload
	if _, err := artifact.Decode(embData, artifact.KindEmbeddings, &embPayload); err != nil {
		return nil, e.Wrap(op, err)
	}
	var idxPayload indexPayload
	env, err := artifact.Decode(indexData, artifact.KindIndex, &idxPayload)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	index := vectorindex.NewFlat(0)
	if err := index.UnmarshalBinary(idxPayload.Data); err != nil {
		return nil, e.Wrap(op, err)
	}

	if embPayload.Generation != idxPayload.Generation {
		return nil, e.Wrap(op, fmt.Errorf("%w: generation %q vs %q", e.ErrIndexMappingMismatch, embPayload.Generation, idxPayload.Generation))
	}
	if index.Dim() != u.embedder.Dimension() || embPayload.Dim != index.Dim() {
		return nil, e.Wrap(op, fmt.Errorf("%w: stored %d, embedder %d", e.ErrIndexDimension, index.Dim(), u.embedder.Dimension()))
	}
	if len(embPayload.Entries) != index.Len() {
		return nil, e.Wrap(op, fmt.Errorf("%w: %d embeddings for %d index entries", e.ErrIndexMappingMismatch, len(embPayload.Entries), index.Len()))
	}

	positions := make(map[int64]int, index.Len())
	for pos, id := range index.IDs() {
		positions[id] = pos
	}

	// Векторы обоих артефактов обязаны совпадать побитово: оба пишутся из одного индекса.
	stored := make(map[int64][]float32, len(embPayload.Entries))
	for _, entry := range embPayload.Entries {
		vec, err := vectorindex.DecodeVector(entry.Vector)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		if len(vec) != index.Dim() {
			return nil, e.Wrap(op, e.ErrIndexDimension)
		}

		pos, ok := positions[entry.ProductID]
		if !ok {
			return nil, e.Wrap(op, fmt.Errorf("%w: product %d is not indexed", e.ErrIndexMappingMismatch, entry.ProductID))
		}
		if _, dup := stored[entry.ProductID]; dup {
			return nil, e.Wrap(op, fmt.Errorf("%w: duplicate embedding for product %d", e.ErrIndexMappingMismatch, entry.ProductID))
		}
		if !sameVector(vec, index.Vector(pos)) {
			return nil, e.Wrap(op, fmt.Errorf("%w: product %d vector differs from index", e.ErrIndexMappingMismatch, entry.ProductID))
		}
		stored[entry.ProductID] = vec
	}

	return &indexSnapshot{
		index:        index,
		embeddings:   stored,
		generation:   idxPayload.Generation,
		modelVersion: embPayload.ModelVersion,
		builtAt:      env.CreatedAt,
	}, nil
}

// mirror публикует векторы поколения во внешнее векторное хранилище, если оно настроено.
func (u *IndexUseCase) mirror(ctx context.Context, snap *indexSnapshot) error {
	if u.embeddingRepo == nil {
		return nil
	}

	ids := snap.index.IDs()
	embeddings := make([]domain.Embedding, len(ids))
	for pos, id := range ids {
		embeddings[pos] = *domain.NewEmbedding(
			id,
			snap.index.Vector(pos),
			domain.NewPayload(id, snap.generation, snap.modelVersion),
		)
	}

	return u.embeddingRepo.Replace(ctx, snap.generation, embeddings)
}

// embeddingsOf строит отображение id → вектор поверх памяти индекса.
func embeddingsOf(index *vectorindex.Flat) map[int64][]float32 {
	ids := index.IDs()
	out := make(map[int64][]float32, len(ids))
	for pos, id := range ids {
		out[id] = index.Vector(pos)
	}
	return out
}

func sameVector(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
