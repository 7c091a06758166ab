package usecase

import "time"

// RECOMMENDATION USECASE

// RecommendReq — запрос рекомендаций. Приоритет: UserID, затем ProductID, затем CategoryID, иначе популярные.
type RecommendReq struct {
	UserID     *int64
	ProductID  *int64
	CategoryID *int64
	Limit      int
}

// CLASSIFICATION USECASE

// ClassifyReq — описание продукта для классификации.
type ClassifyReq struct {
	Title       string
	Description *string
}

// GenerateTagsReq — запрос на генерацию тегов.
type GenerateTagsReq struct {
	Title       string
	Description *string
	CategoryID  *int64
}

// TagModel — частые теги обучающей выборки и бинарные признаки их присутствия в каждом тексте.
type TagModel struct {
	Tags     []string  `json:"tags"`
	Features [][]uint8 `json:"features"`
}

// ENGINE USECASE

// IndexStats — сведения о текущем векторном индексе.
type IndexStats struct {
	Generation   string
	BuiltAt      time.Time
	Products     int
	Dimension    int
	ModelVersion string
}

// ClassifierStats — сведения о текущих моделях классификации.
type ClassifierStats struct {
	BuiltAt time.Time
	Classes int
	Tags    int
	Trained bool
}

// EngineStatus — состояние движка.
type EngineStatus struct {
	Index      IndexStats
	Classifier ClassifierStats
}

// RebuildRes — результат полной пересборки.
type RebuildRes struct {
	Index      IndexStats
	Classifier ClassifierStats
	Duration   time.Duration
}

// INFRASTRUCTURE

// RebuiltEvent публикуется после успешной пересборки.
type RebuiltEvent struct {
	EventID    string
	Generation string
	Products   int
	Classes    int
	Tags       int
	BuiltAt    time.Time
}

// MAPPERS
func NewRecommendReq(userID, productID, categoryID *int64, limit int) *RecommendReq {
	return &RecommendReq{
		UserID:     userID,
		ProductID:  productID,
		CategoryID: categoryID,
		Limit:      limit,
	}
}

func NewClassifyReq(title string, description *string) *ClassifyReq {
	return &ClassifyReq{
		Title:       title,
		Description: description,
	}
}

func NewGenerateTagsReq(title string, description *string, categoryID *int64) *GenerateTagsReq {
	return &GenerateTagsReq{
		Title:       title,
		Description: description,
		CategoryID:  categoryID,
	}
}
