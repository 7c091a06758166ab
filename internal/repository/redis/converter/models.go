package converter

// RecommendationRedisModel — элемент выдачи в кэше.
type RecommendationRedisModel struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	ImageURL  *string `json:"image_url,omitempty"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}
