package domain

// UnknownCategoryName — имя категории, если предсказание отсутствует или категория не найдена.
const UnknownCategoryName = "Unknown"

// Prediction — результат классификатора. OK=false означает «нет предсказания» с нулевой уверенностью.
type Prediction struct {
	CategoryID int64
	Confidence float64
	OK         bool
}

// NoPrediction — предсказание отсутствует.
func NoPrediction() Prediction {
	return Prediction{}
}

func NewPrediction(categoryID int64, confidence float64) Prediction {
	switch {
	case confidence < 0:
		confidence = 0
	case confidence > 1:
		confidence = 1
	}

	return Prediction{CategoryID: categoryID, Confidence: confidence, OK: true}
}

// PriceRange — рекомендуемый ценовой диапазон.
type PriceRange struct {
	Min     float64
	Max     float64
	Average float64
}

// TagSuggestion — теги и их частоты, используемые как оценки уверенности.
type TagSuggestion struct {
	Tags   []string
	Scores map[string]float64
}

// ClassificationResult — итог классификации описания продукта.
type ClassificationResult struct {
	CategoryID    int64
	CategoryName  string
	Confidence    float64
	SuggestedTags []string
	PriceRange    *PriceRange
}
