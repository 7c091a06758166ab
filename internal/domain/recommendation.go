package domain

// Reason — причина попадания продукта в рекомендации.
type Reason string

const (
	ReasonSimilar    Reason = "similar item"
	ReasonCategory   Reason = "top rated in category"
	ReasonPopular    Reason = "popular product"
	ReasonTrending   Reason = "trending product"
	ReasonNewArrival Reason = "new arrival"
)

// Strategy — стратегия ранжирования.
type Strategy string

const (
	StrategySimilar      Strategy = "similar"
	StrategyUserHistory  Strategy = "user_history"
	StrategyCategory     Strategy = "category"
	StrategyPopular      Strategy = "popular"
	StrategyTrending     Strategy = "trending"
	StrategyNewArrivals  Strategy = "new_arrivals"
	StrategyPersonalized Strategy = "personalized"
)

// Recommendation — один элемент выдачи. Единицы Score зависят от стратегии и между стратегиями не сравниваются.
type Recommendation struct {
	ProductID int64
	Title     string
	Price     float64
	ImageURL  *string
	Score     float64
	Reason    Reason
}

// NewRecommendation собирает элемент выдачи из записи каталога.
func NewRecommendation(p *ProductRecord, score float64, reason Reason) Recommendation {
	return Recommendation{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price.Decimal.InexactFloat64(),
		ImageURL:  p.ImageURL(),
		Score:     score,
		Reason:    reason,
	}
}

// Neighbor — сосед продукта в векторном индексе.
type Neighbor struct {
	ProductID int64
	Score     float64
}
