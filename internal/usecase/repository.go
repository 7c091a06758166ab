package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/shopspring/decimal"
)

// CatalogRepository — поставщик каталога.
type CatalogRepository interface {
	// StreamActive построчно передаёт в fn все активные продукты, упорядоченные по id.
	StreamActive(ctx context.Context, fn func(product *domain.ProductRecord) error) error
	// GetByIDs возвращает продукты по id в любом статусе. Отсутствующие id пропускаются.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.ProductRecord, error)
	// TopRatedInCategory — активные продукты категории по rating desc, sales_count desc, id asc.
	TopRatedInCategory(ctx context.Context, categoryID int64, limit int) ([]*domain.ProductRecord, error)
	// Popular — активные продукты по sales_count desc, rating desc, id asc.
	Popular(ctx context.Context, limit int) ([]*domain.ProductRecord, error)
	// NewArrivals — активные продукты по created_at desc, id desc, с необязательным фильтром категории.
	NewArrivals(ctx context.Context, categoryID *int64, limit int) ([]*domain.ProductRecord, error)
	// CategoryTagSample возвращает списки тегов не более чем limit активных продуктов категории.
	CategoryTagSample(ctx context.Context, categoryID int64, limit int) ([][]string, error)
	// CategoryPrices возвращает цены активных продуктов категории с заданной ценой.
	CategoryPrices(ctx context.Context, categoryID int64) ([]decimal.Decimal, error)
}

type CategoryRepository interface {
	// GetName возвращает имя категории; false — если категория не найдена.
	GetName(ctx context.Context, id int64) (string, bool, error)
	// Suggest ищет активные категории по подстроке имени (все активные при пустом запросе).
	Suggest(ctx context.Context, query string, limit int) ([]domain.CategorySuggestion, error)
}

// OrderRepository — поставщик истории покупок.
type OrderRepository interface {
	// PurchasedProductIDs возвращает уникальные id купленных пользователем продуктов в порядке первой покупки.
	PurchasedProductIDs(ctx context.Context, userID int64) ([]int64, error)
	// PurchasesSince возвращает строки заказов в статусе покупки, оформленных не раньше since.
	PurchasesSince(ctx context.Context, since time.Time) ([]domain.PurchaseLine, error)
}

// SnapshotRunner выполняет fn в согласованном снимке каталога (read-only транзакция).
type SnapshotRunner interface {
	InSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

// ArtifactRepository — хранилище сериализованных артефактов под единым корнем.
type ArtifactRepository interface {
	Save(ctx context.Context, name string, data []byte) error
	// Load возвращает e.ErrArtifactNotFound, если артефакта нет.
	Load(ctx context.Context, name string) ([]byte, error)
}

// CacheRepository кэширует готовые списки рекомендаций.
type CacheRepository interface {
	GetRecommendations(ctx context.Context, key string) ([]domain.Recommendation, bool, error)
	SetRecommendations(ctx context.Context, key string, recs []domain.Recommendation) error
}

// EmbeddingRepository публикует векторы поколения во внешнее векторное хранилище.
type EmbeddingRepository interface {
	Replace(ctx context.Context, generation string, embeddings []domain.Embedding) error
}
