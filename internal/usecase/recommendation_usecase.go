package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
)

const (
	// similarPerPurchase — сколько похожих продуктов берётся на каждую покупку пользователя.
	similarPerPurchase = 5
	trendingWindow     = 7 * 24 * time.Hour
)

// RecommendationUseCase выбирает стратегию и собирает ранжированные списки рекомендаций.
type RecommendationUseCase struct {
	index       SimilarityIndex
	catalogRepo CatalogRepository
	orderRepo   OrderRepository
	cacheRepo   CacheRepository
	metrics     MetricsInfra
	logger      logger.Logger
	now         func() time.Time
}

// NewRecommendationUC создаёт usecase рекомендаций. cacheRepo и metrics могут быть nil.
func NewRecommendationUC(
	index SimilarityIndex,
	catalogRepo CatalogRepository,
	orderRepo OrderRepository,
	cacheRepo CacheRepository,
	metrics MetricsInfra,
	logger logger.Logger,
) *RecommendationUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &RecommendationUseCase{
		index:       index,
		catalogRepo: catalogRepo,
		orderRepo:   orderRepo,
		cacheRepo:   cacheRepo,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Recommend выбирает стратегию по приоритету: пользователь, продукт, категория, популярные.
func (u *RecommendationUseCase) Recommend(ctx context.Context, req *RecommendReq) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.Recommend"

	if req.Limit < 0 {
		return nil, e.Wrap(op, e.ErrInvalidLimit)
	}

	var (
		strategy domain.Strategy
		arg      string
		fn       func(ctx context.Context) ([]domain.Recommendation, error)
	)

	switch {
	case req.UserID != nil:
		strategy, arg = domain.StrategyUserHistory, fmt.Sprint(*req.UserID)
		fn = func(ctx context.Context) ([]domain.Recommendation, error) {
			return u.userRecommendations(ctx, *req.UserID, req.Limit)
		}
	case req.ProductID != nil:
		strategy, arg = domain.StrategySimilar, fmt.Sprint(*req.ProductID)
		fn = func(ctx context.Context) ([]domain.Recommendation, error) {
			return u.similarItems(ctx, *req.ProductID, req.Limit)
		}
	case req.CategoryID != nil:
		strategy, arg = domain.StrategyCategory, fmt.Sprint(*req.CategoryID)
		fn = func(ctx context.Context) ([]domain.Recommendation, error) {
			return u.categoryRecommendations(ctx, *req.CategoryID, req.Limit)
		}
	default:
		strategy = domain.StrategyPopular
		fn = func(ctx context.Context) ([]domain.Recommendation, error) {
			return u.popular(ctx, req.Limit)
		}
	}

	recs, err := u.cached(ctx, strategy, arg, req.Limit, fn)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return recs, nil
}

// Trending возвращает продукты с наибольшим количеством покупок за последние 7 дней.
func (u *RecommendationUseCase) Trending(ctx context.Context, categoryID *int64, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.Trending"

	if limit < 0 {
		return nil, e.Wrap(op, e.ErrInvalidLimit)
	}

	recs, err := u.cached(ctx, domain.StrategyTrending, optionalArg(categoryID), limit, func(ctx context.Context) ([]domain.Recommendation, error) {
		return u.trending(ctx, categoryID, limit)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return recs, nil
}

// NewArrivals возвращает последние добавленные активные продукты.
func (u *RecommendationUseCase) NewArrivals(ctx context.Context, categoryID *int64, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.NewArrivals"

	if limit < 0 {
		return nil, e.Wrap(op, e.ErrInvalidLimit)
	}

	recs, err := u.cached(ctx, domain.StrategyNewArrivals, optionalArg(categoryID), limit, func(ctx context.Context) ([]domain.Recommendation, error) {
		return u.newArrivals(ctx, categoryID, limit)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return recs, nil
}

// Personalized смешивает рекомендации по истории (limit/2) с популярными (limit/2) без повторов.
func (u *RecommendationUseCase) Personalized(ctx context.Context, userID int64, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.Personalized"

	if limit < 0 {
		return nil, e.Wrap(op, e.ErrInvalidLimit)
	}

	recs, err := u.cached(ctx, domain.StrategyPersonalized, fmt.Sprint(userID), limit, func(ctx context.Context) ([]domain.Recommendation, error) {
		return u.personalized(ctx, userID, limit)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return recs, nil
}

// similarItems — соседи продукта из векторного индекса в порядке убывания близости.
func (u *RecommendationUseCase) similarItems(ctx context.Context, productID int64, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.similarItems"

	if limit <= 0 {
		return []domain.Recommendation{}, nil
	}

	neighbors := u.index.Query(productID, limit)
	recs, err := u.neighborsToRecs(ctx, [][]domain.Neighbor{neighbors})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return recs, nil
}

// userRecommendations — похожие на купленные продукты, без уже купленных.
// Без истории покупок результат совпадает с популярными.
func (u *RecommendationUseCase) userRecommendations(ctx context.Context, userID int64, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.userRecommendations"

	if limit <= 0 {
		return []domain.Recommendation{}, nil
	}

	purchased, err := u.orderRepo.PurchasedProductIDs(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(purchased) == 0 {
		return u.popular(ctx, limit)
	}

	groups := make([][]domain.Neighbor, 0, len(purchased))
	for _, productID := range purchased {
		groups = append(groups, u.index.Query(productID, similarPerPurchase))
	}

	candidates, err := u.neighborsToRecs(ctx, groups)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return dedupe(candidates, purchased, limit), nil
}

// categoryRecommendations — лучшие по рейтингу продукты категории.
func (u *RecommendationUseCase) categoryRecommendations(ctx context.Context, categoryID int64, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.categoryRecommendations"

	if limit <= 0 {
		return []domain.Recommendation{}, nil
	}

	products, err := u.catalogRepo.TopRatedInCategory(ctx, categoryID, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	recs := make([]domain.Recommendation, 0, len(products))
	for _, p := range products {
		recs = append(recs, domain.NewRecommendation(p, p.Rating, domain.ReasonCategory))
	}

	return recs, nil
}

func (u *RecommendationUseCase) popular(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.popular"

	if limit <= 0 {
		return []domain.Recommendation{}, nil
	}

	products, err := u.catalogRepo.Popular(ctx, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	recs := make([]domain.Recommendation, 0, len(products))
	for _, p := range products {
		recs = append(recs, domain.NewRecommendation(p, float64(p.SalesCount), domain.ReasonPopular))
	}

	return recs, nil
}

// trending суммирует количество по строкам покупок в окне [now-7d, ...] и ранжирует по сумме.
func (u *RecommendationUseCase) trending(ctx context.Context, categoryID *int64, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.trending"

	if limit <= 0 {
		return []domain.Recommendation{}, nil
	}

	since := u.now().Add(-trendingWindow)
	lines, err := u.orderRepo.PurchasesSince(ctx, since)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	totals := make(map[int64]int64)
	var ids []int64
	for _, line := range lines {
		if line.OrderedAt.Before(since) {
			continue
		}
		if _, ok := totals[line.ProductID]; !ok {
			ids = append(ids, line.ProductID)
		}
		totals[line.ProductID] += line.Quantity
	}

	if len(ids) == 0 {
		return []domain.Recommendation{}, nil
	}

	products, err := u.catalogRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	candidates := make([]int64, 0, len(ids))
	for _, id := range ids {
		p, ok := products[id]
		if !ok || !p.IsActive() {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		candidates = append(candidates, id)
	}

	slices.SortFunc(candidates, func(a, b int64) int {
		if c := cmp.Compare(totals[b], totals[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, id := range candidates {
		recs = append(recs, domain.NewRecommendation(products[id], float64(totals[id]), domain.ReasonTrending))
	}

	return recs, nil
}

func (u *RecommendationUseCase) newArrivals(ctx context.Context, categoryID *int64, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.newArrivals"

	if limit <= 0 {
		return []domain.Recommendation{}, nil
	}

	products, err := u.catalogRepo.NewArrivals(ctx, categoryID, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	recs := make([]domain.Recommendation, 0, len(products))
	for _, p := range products {
		recs = append(recs, domain.NewRecommendation(p, 1.0, domain.ReasonNewArrival))
	}

	return recs, nil
}

func (u *RecommendationUseCase) personalized(ctx context.Context, userID int64, limit int) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.personalized"

	half := limit / 2

	history, err := u.userRecommendations(ctx, userID, half)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	popular, err := u.popular(ctx, half)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return dedupe(append(history, popular...), nil, limit), nil
}

// neighborsToRecs превращает группы соседей в рекомендации, сохраняя порядок групп и соседей.
// Соседи, отсутствующие в каталоге, пропускаются.
func (u *RecommendationUseCase) neighborsToRecs(ctx context.Context, groups [][]domain.Neighbor) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.neighborsToRecs"

	var ids []int64
	for _, group := range groups {
		for _, n := range group {
			ids = append(ids, n.ProductID)
		}
	}
	if len(ids) == 0 {
		return []domain.Recommendation{}, nil
	}

	slices.Sort(ids)
	products, err := u.catalogRepo.GetByIDs(ctx, slices.Compact(ids))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	recs := make([]domain.Recommendation, 0, len(ids))
	for _, group := range groups {
		for _, n := range group {
			p, ok := products[n.ProductID]
			if !ok {
				continue
			}
			recs = append(recs, domain.NewRecommendation(p, n.Score, domain.ReasonSimilar))
		}
	}

	return recs, nil
}

// cached оборачивает стратегию кэшем. Ключ включает поколение индекса, поэтому пересборка инвалидирует кэш.
// Стратегии по истории покупок не кэшируются: новая покупка видна сразу. Ошибки кэша не влияют на результат.
func (u *RecommendationUseCase) cached(
	ctx context.Context,
	strategy domain.Strategy,
	arg string,
	limit int,
	fn func(ctx context.Context) ([]domain.Recommendation, error),
) ([]domain.Recommendation, error) {
	const op = "RecommendationUseCase.cached"

	start := time.Now()
	key := fmt.Sprintf("recs:%s:%s:%s:%d", u.index.Generation(), strategy, arg, limit)
	useCache := u.cacheRepo != nil && cacheable(strategy)

	if useCache {
		recs, ok, err := u.cacheRepo.GetRecommendations(ctx, key)
		if err != nil {
			u.logger.Warnf("failed to read recommendations from cache: %v", e.Wrap(op, err))
		} else if ok {
			u.metrics.ObserveQuery(string(strategy), time.Since(start), len(recs))
			return recs, nil
		}
	}

	recs, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := u.cacheRepo.SetRecommendations(ctx, key, recs); err != nil {
			u.logger.Warnf("failed to cache recommendations: %v", e.Wrap(op, err))
		}
	}

	u.metrics.ObserveQuery(string(strategy), time.Since(start), len(recs))
	return recs, nil
}

func cacheable(strategy domain.Strategy) bool {
	return strategy != domain.StrategyUserHistory && strategy != domain.StrategyPersonalized
}

// dedupe оставляет первое вхождение каждого продукта, исключая excluded, и обрезает до limit.
func dedupe(recs []domain.Recommendation, excluded []int64, limit int) []domain.Recommendation {
	seen := make(map[int64]struct{}, len(recs)+len(excluded))
	for _, id := range excluded {
		seen[id] = struct{}{}
	}

	out := make([]domain.Recommendation, 0, min(len(recs), max(limit, 0)))
	for _, r := range recs {
		if len(out) >= limit {
			break
		}
		if _, ok := seen[r.ProductID]; ok {
			continue
		}
		seen[r.ProductID] = struct{}{}
		out = append(out, r)
	}

	return out
}

func optionalArg(id *int64) string {
	if id == nil {
		return "all"
	}
	return fmt.Sprint(*id)
}
