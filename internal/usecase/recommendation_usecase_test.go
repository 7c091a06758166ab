package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func recommendationFixture() (*fakeCatalog, *fakeIndex, *fakeOrders) {
	mk := func(id, categoryID, sales int64, rating float64, created time.Time) *domain.ProductRecord {
		p := product(id, "product")
		p.CategoryID = categoryID
		p.SalesCount = sales
		p.Rating = rating
		p.CreatedAt = created
		return p
	}

	day := func(n int) time.Time { return testNow.AddDate(0, 0, -n) }

	catalog := &fakeCatalog{products: []*domain.ProductRecord{
		mk(1, 1, 100, 4.0, day(30)),
		mk(2, 1, 50, 4.5, day(20)),
		mk(3, 2, 80, 3.0, day(10)),
		mk(4, 2, 80, 4.9, day(5)),
		mk(5, 1, 10, 5.0, day(1)),
		mk(6, 2, 0, 1.0, day(2)),
	}}
	inactive := mk(7, 1, 1000, 5.0, day(0))
	inactive.Status = domain.ProductInactive
	catalog.products = append(catalog.products, inactive)

	index := &fakeIndex{
		generation: "gen-1",
		neighbors: map[int64][]domain.Neighbor{
			1: {{ProductID: 3, Score: 0.9}, {ProductID: 2, Score: 0.8}, {ProductID: 4, Score: 0.7}},
			2: {{ProductID: 4, Score: 0.95}, {ProductID: 5, Score: 0.6}, {ProductID: 1, Score: 0.5}},
			3: {{ProductID: 99, Score: 0.9}, {ProductID: 6, Score: 0.4}},
		},
	}

	orders := &fakeOrders{purchased: map[int64][]int64{42: {1, 2}}}

	return catalog, index, orders
}

func newTestRecommendationUC(catalog *fakeCatalog, index *fakeIndex, orders *fakeOrders, cache CacheRepository) *RecommendationUseCase {
	uc := NewRecommendationUC(index, catalog, orders, cache, nil, logger.NewNop())
	uc.now = func() time.Time { return testNow }
	return uc
}

func TestRecommend_SelectorPrecedence(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	uc := newTestRecommendationUC(catalog, index, orders, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		req    *RecommendReq
		reason domain.Reason
		want   []int64
	}{
		{
			name:   "user wins over product and category",
			req:    NewRecommendReq(ptr(int64(42)), ptr(int64(3)), ptr(int64(2)), 10),
			reason: domain.ReasonSimilar,
			want:   []int64{3, 4, 5},
		},
		{
			name:   "product wins over category",
			req:    NewRecommendReq(nil, ptr(int64(1)), ptr(int64(2)), 10),
			reason: domain.ReasonSimilar,
			want:   []int64{3, 2, 4},
		},
		{
			name:   "category",
			req:    NewRecommendReq(nil, nil, ptr(int64(2)), 10),
			reason: domain.ReasonCategory,
			want:   []int64{4, 3, 6},
		},
		{
			name:   "popular by default",
			req:    NewRecommendReq(nil, nil, nil, 3),
			reason: domain.ReasonPopular,
			want:   []int64{1, 4, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Recommend(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			for _, r := range got {
				assert.Equal(t, tt.reason, r.Reason)
			}
		})
	}
}

func TestRecommend_InvalidLimit(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	uc := newTestRecommendationUC(catalog, index, orders, nil)

	_, err := uc.Recommend(context.Background(), NewRecommendReq(nil, nil, nil, -1))
	assert.ErrorIs(t, err, e.ErrInvalidLimit)
}

func TestRecommend_SimilarSkipsUnknownProducts(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	uc := newTestRecommendationUC(catalog, index, orders, nil)

	got, err := uc.Recommend(context.Background(), NewRecommendReq(nil, ptr(int64(3)), nil, 5))
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, ids(got))
	assert.Equal(t, 0.4, got[0].Score)

	got, err = uc.Recommend(context.Background(), NewRecommendReq(nil, ptr(int64(1000)), nil, 5))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserRecommendations_ExcludesPurchasedAndDuplicates(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	uc := newTestRecommendationUC(catalog, index, orders, nil)

	got, err := uc.userRecommendations(context.Background(), 42, 10)
	require.NoError(t, err)

	// Соседи 1: 3, 2, 4; соседи 2: 4, 5, 1. Купленные 1 и 2 исключаются, повтор 4 отбрасывается.
	assert.Equal(t, []int64{3, 4, 5}, ids(got))
	assert.Equal(t, 0.7, got[1].Score, "first occurrence wins")

	got, err = uc.userRecommendations(context.Background(), 42, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids(got))
}

func TestUserRecommendations_EmptyHistoryEqualsPopular(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	uc := newTestRecommendationUC(catalog, index, orders, nil)
	ctx := context.Background()

	for _, limit := range []int{0, 1, 3, 10} {
		history, err := uc.userRecommendations(ctx, 7, limit)
		require.NoError(t, err)
		popular, err := uc.popular(ctx, limit)
		require.NoError(t, err)
		assert.Equal(t, popular, history)
	}
}

func TestTrending_Window(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	orders.lines = []domain.PurchaseLine{
		{ProductID: 1, Quantity: 2, OrderedAt: testNow.Add(-3 * 24 * time.Hour)},
		{ProductID: 2, Quantity: 5, OrderedAt: testNow.Add(-10 * 24 * time.Hour)},
		{ProductID: 3, Quantity: 2, OrderedAt: testNow.Add(-7 * 24 * time.Hour)},
		{ProductID: 1, Quantity: 1, OrderedAt: testNow.Add(-24 * time.Hour)},
		{ProductID: 7, Quantity: 50, OrderedAt: testNow.Add(-time.Hour)},
		{ProductID: 4, Quantity: 2, OrderedAt: testNow.Add(-2 * time.Hour)},
	}
	uc := newTestRecommendationUC(catalog, index, orders, nil)

	got, err := uc.Trending(context.Background(), nil, 10)
	require.NoError(t, err)

	assert.Equal(t, testNow.Add(-7*24*time.Hour), orders.since)
	// Продукт 2 вне окна, 7 неактивен. 3 и 4 равны по сумме, раньше идёт меньший id.
	assert.Equal(t, []int64{1, 3, 4}, ids(got))
	assert.Equal(t, 3.0, got[0].Score)
	assert.Equal(t, domain.ReasonTrending, got[0].Reason)

	got, err = uc.Trending(context.Background(), ptr(int64(2)), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids(got))

	got, err = uc.Trending(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(got))
}

func TestNewArrivals(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	uc := newTestRecommendationUC(catalog, index, orders, nil)

	got, err := uc.NewArrivals(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6, 4}, ids(got))
	for _, r := range got {
		assert.Equal(t, 1.0, r.Score)
		assert.Equal(t, domain.ReasonNewArrival, r.Reason)
	}

	got, err = uc.NewArrivals(context.Background(), ptr(int64(1)), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 2, 1}, ids(got))
}

func TestPersonalized_MixesHistoryAndPopular(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	uc := newTestRecommendationUC(catalog, index, orders, nil)

	got, err := uc.Personalized(context.Background(), 42, 4)
	require.NoError(t, err)
	// История (2): 3, 4. Популярные (2): 1, 4, повтор 4 отбрасывается.
	assert.Equal(t, []int64{3, 4, 1}, ids(got))
	assert.Equal(t, domain.ReasonSimilar, got[1].Reason)
	assert.Equal(t, domain.ReasonPopular, got[2].Reason)

	got, err = uc.Personalized(context.Background(), 1000, 6)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 3}, ids(got))
}

func TestRecommendations_NoDuplicates(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	uc := newTestRecommendationUC(catalog, index, orders, nil)
	ctx := context.Background()

	check := func(recs []domain.Recommendation, limit int) {
		t.Helper()
		seen := make(map[int64]bool)
		for _, r := range recs {
			assert.False(t, seen[r.ProductID], "duplicate %d", r.ProductID)
			seen[r.ProductID] = true
		}
		assert.LessOrEqual(t, len(recs), limit)
	}

	for _, limit := range []int{1, 2, 5, 20} {
		recs, err := uc.Recommend(ctx, NewRecommendReq(ptr(int64(42)), nil, nil, limit))
		require.NoError(t, err)
		check(recs, limit)

		recs, err = uc.Personalized(ctx, 42, limit)
		require.NoError(t, err)
		check(recs, limit)
	}
}

func TestRecommend_UsesCache(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	cache := newFakeCache()
	uc := newTestRecommendationUC(catalog, index, orders, cache)
	ctx := context.Background()

	first, err := uc.Recommend(ctx, NewRecommendReq(nil, nil, nil, 3))
	require.NoError(t, err)
	assert.Contains(t, cache.items, "recs:gen-1:popular::3")

	catalog.products = nil
	second, err := uc.Recommend(ctx, NewRecommendReq(nil, nil, nil, 3))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)

	index.generation = "gen-2"
	third, err := uc.Recommend(ctx, NewRecommendReq(nil, nil, nil, 3))
	require.NoError(t, err)
	assert.Empty(t, third, "new generation bypasses stale entries")
}

func TestRecommend_CacheFailureIsNotFatal(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	cache := newFakeCache()
	cache.err = errBoom
	uc := newTestRecommendationUC(catalog, index, orders, cache)

	got, err := uc.Recommend(context.Background(), NewRecommendReq(nil, nil, nil, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids(got))
}

func TestRecommend_PurchaseHistoryIsNotCached(t *testing.T) {
	catalog, index, orders := recommendationFixture()
	cache := newFakeCache()
	uc := newTestRecommendationUC(catalog, index, orders, cache)
	ctx := context.Background()

	first, err := uc.Recommend(ctx, NewRecommendReq(ptr(int64(42)), nil, nil, 10))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5}, ids(first))

	_, err = uc.Personalized(ctx, 42, 4)
	require.NoError(t, err)
	assert.Empty(t, cache.items)

	orders.purchased[42] = append(orders.purchased[42], 3)
	second, err := uc.Recommend(ctx, NewRecommendReq(ptr(int64(42)), nil, nil, 10))
	require.NoError(t, err)
	assert.NotContains(t, ids(second), int64(3), "new purchase is visible immediately")
	assert.Zero(t, cache.hits)
}
