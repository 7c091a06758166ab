package usecase

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/shopspring/decimal"
)

var errBoom = errors.New("boom")

type fakeCatalog struct {
	mu          sync.Mutex
	products    []*domain.ProductRecord
	streamCalls int
	streamErr   error
}

func (f *fakeCatalog) active() []*domain.ProductRecord {
	var out []*domain.ProductRecord
	for _, p := range f.products {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *domain.ProductRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (f *fakeCatalog) StreamActive(ctx context.Context, fn func(*domain.ProductRecord) error) error {
	f.mu.Lock()
	f.streamCalls++
	f.mu.Unlock()

	if f.streamErr != nil {
		return f.streamErr
	}
	for _, p := range f.active() {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCatalog) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.ProductRecord, error) {
	out := make(map[int64]*domain.ProductRecord)
	for _, p := range f.products {
		if slices.Contains(ids, p.ID) {
			out[p.ID] = p
		}
	}
	return out, nil
}

func (f *fakeCatalog) TopRatedInCategory(ctx context.Context, categoryID int64, limit int) ([]*domain.ProductRecord, error) {
	var out []*domain.ProductRecord
	for _, p := range f.active() {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.ProductRecord) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(b.SalesCount, a.SalesCount)
	})
	return capped(out, limit), nil
}

func (f *fakeCatalog) Popular(ctx context.Context, limit int) ([]*domain.ProductRecord, error) {
	out := f.active()
	slices.SortStableFunc(out, func(a, b *domain.ProductRecord) int {
		if c := cmp.Compare(b.SalesCount, a.SalesCount); c != 0 {
			return c
		}
		return cmp.Compare(b.Rating, a.Rating)
	})
	return capped(out, limit), nil
}

func (f *fakeCatalog) NewArrivals(ctx context.Context, categoryID *int64, limit int) ([]*domain.ProductRecord, error) {
	var out []*domain.ProductRecord
	for _, p := range f.active() {
		if categoryID == nil || p.CategoryID == *categoryID {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.ProductRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return capped(out, limit), nil
}

func (f *fakeCatalog) CategoryTagSample(ctx context.Context, categoryID int64, limit int) ([][]string, error) {
	var out [][]string
	for _, p := range f.active() {
		if p.CategoryID == categoryID {
			out = append(out, p.Tags)
		}
	}
	return capped(out, limit), nil
}

func (f *fakeCatalog) CategoryPrices(ctx context.Context, categoryID int64) ([]decimal.Decimal, error) {
	var out []decimal.Decimal
	for _, p := range f.active() {
		if p.CategoryID == categoryID && p.Price.Valid {
			out = append(out, p.Price.Decimal)
		}
	}
	return out, nil
}

func capped[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

type fakeCategories struct {
	names map[int64]string
}

func (f *fakeCategories) GetName(ctx context.Context, id int64) (string, bool, error) {
	name, ok := f.names[id]
	return name, ok, nil
}

func (f *fakeCategories) Suggest(ctx context.Context, query string, limit int) ([]domain.CategorySuggestion, error) {
	var out []domain.CategorySuggestion
	for id, name := range f.names {
		if strings.Contains(strings.ToLower(name), strings.ToLower(query)) {
			out = append(out, domain.CategorySuggestion{ID: id, Name: name})
		}
	}
	slices.SortFunc(out, func(a, b domain.CategorySuggestion) int { return cmp.Compare(a.ID, b.ID) })
	return capped(out, limit), nil
}

type fakeOrders struct {
	purchased map[int64][]int64
	lines     []domain.PurchaseLine
	since     time.Time
}

func (f *fakeOrders) PurchasedProductIDs(ctx context.Context, userID int64) ([]int64, error) {
	return f.purchased[userID], nil
}

// PurchasesSince намеренно возвращает все строки: окно должен применять usecase.
func (f *fakeOrders) PurchasesSince(ctx context.Context, since time.Time) ([]domain.PurchaseLine, error) {
	f.since = since
	return f.lines, nil
}

type passthroughSnapshots struct{}

func (passthroughSnapshots) InSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// blockingSnapshots задерживает первую сборку, пока тест не закроет release.
type blockingSnapshots struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newBlockingSnapshots() *blockingSnapshots {
	return &blockingSnapshots{entered: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingSnapshots) InSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		<-b.release
	}
	return fn(ctx)
}

// stalledSnapshots не вызывает fn и ждёт отмены контекста.
type stalledSnapshots struct{}

func (stalledSnapshots) InSnapshot(ctx context.Context, _ func(ctx context.Context) error) error {
	<-ctx.Done()
	return ctx.Err()
}

type memArtifacts struct {
	mu    sync.Mutex
	items map[string][]byte
	saves int
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{items: make(map[string][]byte)}
}

func (m *memArtifacts) Save(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[name] = slices.Clone(data)
	m.saves++
	return nil
}

func (m *memArtifacts) Load(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[name]
	if !ok {
		return nil, e.ErrArtifactNotFound
	}
	return slices.Clone(data), nil
}

// fakeEmbedder отдаёт заранее заданные векторы по тексту, неизвестные тексты получают нулевой вектор.
type fakeEmbedder struct {
	dim      int
	vectors  map[string][]float32
	err      error
	truncate bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			vec = make([]float32, f.dim)
		}
		out = append(out, vec)
	}
	if f.truncate && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int       { return f.dim }
func (f *fakeEmbedder) ModelVersion() string { return "fake-v1" }

type fakeIndex struct {
	neighbors  map[int64][]domain.Neighbor
	generation string
}

func (f *fakeIndex) Query(productID int64, k int) []domain.Neighbor {
	return capped(f.neighbors[productID], k)
}

func (f *fakeIndex) Generation() string { return f.generation }

type fakeCache struct {
	items map[string][]domain.Recommendation
	err   error
	hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]domain.Recommendation)}
}

func (f *fakeCache) GetRecommendations(ctx context.Context, key string) ([]domain.Recommendation, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	recs, ok := f.items[key]
	if ok {
		f.hits++
	}
	return recs, ok, nil
}

func (f *fakeCache) SetRecommendations(ctx context.Context, key string, recs []domain.Recommendation) error {
	if f.err != nil {
		return f.err
	}
	f.items[key] = recs
	return nil
}

type fakeProducer struct {
	events []*RebuiltEvent
}

func (f *fakeProducer) PublishRebuilt(ctx context.Context, event *RebuiltEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeMirror struct {
	generation string
	embeddings []domain.Embedding
}

func (f *fakeMirror) Replace(ctx context.Context, generation string, embeddings []domain.Embedding) error {
	f.generation = generation
	f.embeddings = embeddings
	return nil
}

func product(id int64, title string) *domain.ProductRecord {
	return &domain.ProductRecord{
		ID:        id,
		Title:     title,
		Status:    domain.ProductActive,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ids(recs []domain.Recommendation) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.ProductID
	}
	return out
}

func ptr[T any](v T) *T { return &v }
