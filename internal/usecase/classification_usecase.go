package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/domain"
	"github.com/DRSN-tech/product-intelligence/pkg/artifact"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/DRSN-tech/product-intelligence/pkg/naivebayes"
	"github.com/DRSN-tech/product-intelligence/pkg/textproc"
	"github.com/shopspring/decimal"
)

const (
	maxFeatures        = 1000
	maxCommonTags      = 50
	maxSuggestedTags   = 10
	categoryTagSample  = 100
	maxCategoryTags    = 10
	defaultSuggestions = 10
)

var (
	priceLowerFactor = decimal.RequireFromString("0.7")
	priceUpperFactor = decimal.RequireFromString("1.3")
)

// classifierSnapshot — модели, обученные в одной сборке. Любая из моделей может отсутствовать.
type classifierSnapshot struct {
	category *naivebayes.Model
	tags     *TagModel
	builtAt  time.Time
}

func (s *classifierSnapshot) stats() ClassifierStats {
	if s == nil {
		return ClassifierStats{}
	}
	st := ClassifierStats{BuiltAt: s.builtAt}
	if s.category != nil {
		st.Trained = true
		st.Classes = len(s.category.Classes)
	}
	if s.tags != nil {
		st.Tags = len(s.tags.Tags)
	}
	return st
}

// ClassificationUseCase предсказывает категории, подбирает теги и ценовой диапазон.
type ClassificationUseCase struct {
	catalogRepo       CatalogRepository
	categoryRepo      CategoryRepository
	snapshots         SnapshotRunner
	artifactRepo      ArtifactRepository
	metrics           MetricsInfra
	logger            logger.Logger
	defaultCategoryID int64

	current atomic.Pointer[classifierSnapshot]
	buildMu sync.Mutex
}

func NewClassificationUC(
	catalogRepo CatalogRepository,
	categoryRepo CategoryRepository,
	snapshots SnapshotRunner,
	artifactRepo ArtifactRepository,
	metrics MetricsInfra,
	logger logger.Logger,
	defaultCategoryID int64,
) *ClassificationUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &ClassificationUseCase{
		catalogRepo:       catalogRepo,
		categoryRepo:      categoryRepo,
		snapshots:         snapshots,
		artifactRepo:      artifactRepo,
		metrics:           metrics,
		logger:            logger,
		defaultCategoryID: defaultCategoryID,
	}
}

// Init загружает модели из артефактов. Если хотя бы одной нет, обе модели обучаются заново.
func (u *ClassificationUseCase) Init(ctx context.Context) error {
	const op = "ClassificationUseCase.Init"

	snap, err := u.load(ctx)
	if err == nil {
		u.current.Store(snap)
		u.logger.Infof("classification models loaded: classes=%d tags=%d", len(snap.category.Classes), len(snap.tags.Tags))
		return nil
	}

	u.logger.Warnf("failed to load classification models, training: %v", e.Wrap(op, err))

	if _, err := u.Rebuild(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// Rebuild обучает классификатор категорий и модель тегов на активных продуктах с категорией.
// Без обучающих данных модели остаются пустыми и ничего не сохраняется.
func (u *ClassificationUseCase) Rebuild(ctx context.Context) (ClassifierStats, error) {
	const op = "ClassificationUseCase.Rebuild"

	u.buildMu.Lock()
	defer u.buildMu.Unlock()

	start := time.Now()
	snap, err := u.build(ctx)
	u.metrics.ObserveRebuild("classifier", time.Since(start), err)
	if err != nil {
		return ClassifierStats{}, e.Wrap(op, err)
	}

	u.current.Store(snap)

	if snap.category == nil {
		u.logger.Warnf("no training data for classification, models are empty")
		return snap.stats(), nil
	}

	u.logger.Infof(
		"classification models trained: classes=%d tags=%d took=%s",
		len(snap.category.Classes), len(snap.tags.Tags), time.Since(start),
	)

	if err := u.save(ctx, snap); err != nil {
		u.logger.Warnf("failed to save classification models: %v", e.Wrap(op, err))
	}

	return snap.stats(), nil
}

func (u *ClassificationUseCase) Stats() ClassifierStats {
	return u.current.Load().stats()
}

// Predict предсказывает категорию текста. Любая внутренняя ошибка превращается в отсутствие предсказания.
func (u *ClassificationUseCase) Predict(text string) domain.Prediction {
	const op = "ClassificationUseCase.Predict"

	snap := u.current.Load()
	if snap == nil || snap.category == nil {
		u.metrics.ObservePrediction(false)
		return domain.NoPrediction()
	}

	label, confidence, err := snap.category.Predict(text)
	if err != nil {
		u.logger.Warnf("category prediction failed: %v", e.Wrap(op, err))
		u.metrics.ObservePrediction(false)
		return domain.NoPrediction()
	}

	u.metrics.ObservePrediction(true)
	return domain.NewPrediction(label, confidence)
}

// ClassifyProduct классифицирует описание продукта: категория, теги и ценовой диапазон.
func (u *ClassificationUseCase) ClassifyProduct(ctx context.Context, req *ClassifyReq) (*domain.ClassificationResult, error) {
	const op = "ClassificationUseCase.ClassifyProduct"

	if req.Title == "" {
		return nil, e.Wrap(op, e.ErrTitleRequired)
	}

	prediction := u.Predict(domain.JoinText(req.Title, req.Description))

	result := &domain.ClassificationResult{
		CategoryID:   u.defaultCategoryID,
		CategoryName: domain.UnknownCategoryName,
		Confidence:   prediction.Confidence,
	}

	var categoryID *int64
	if prediction.OK {
		id := prediction.CategoryID
		categoryID = &id
		result.CategoryID = id

		name, found, err := u.categoryRepo.GetName(ctx, id)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		if found {
			result.CategoryName = name
		}
	}

	tags, err := u.GenerateTags(ctx, NewGenerateTagsReq(req.Title, req.Description, categoryID))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	result.SuggestedTags = tags.Tags

	result.PriceRange, err = u.SuggestPriceRange(ctx, categoryID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return result, nil
}

// BulkClassify классифицирует набор описаний, сохраняя порядок.
func (u *ClassificationUseCase) BulkClassify(ctx context.Context, reqs []ClassifyReq) ([]domain.ClassificationResult, error) {
	const op = "ClassificationUseCase.BulkClassify"

	results := make([]domain.ClassificationResult, 0, len(reqs))
	for i := range reqs {
		res, err := u.ClassifyProduct(ctx, &reqs[i])
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		results = append(results, *res)
	}

	return results, nil
}

// GenerateTags объединяет ключевые слова текста с частыми тегами категории
// и возвращает до 10 самых частых значений с их частотами.
func (u *ClassificationUseCase) GenerateTags(ctx context.Context, req *GenerateTagsReq) (*domain.TagSuggestion, error) {
	const op = "ClassificationUseCase.GenerateTags"

	candidates := textproc.ExtractKeywords(domain.JoinText(req.Title, req.Description))

	if req.CategoryID != nil {
		categoryTags, err := u.CategoryTags(ctx, *req.CategoryID)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		candidates = append(candidates, categoryTags...)
	}

	counts := textproc.MostCommon(candidates, maxSuggestedTags)
	scores := make(map[string]float64, len(counts))
	for _, c := range counts {
		scores[c.Value] = float64(c.Count)
	}

	return &domain.TagSuggestion{
		Tags:   textproc.Values(counts),
		Scores: scores,
	}, nil
}

// CategoryTags возвращает до 10 самых частых тегов среди не более чем 100 активных продуктов категории.
func (u *ClassificationUseCase) CategoryTags(ctx context.Context, categoryID int64) ([]string, error) {
	const op = "ClassificationUseCase.CategoryTags"

	lists, err := u.catalogRepo.CategoryTagSample(ctx, categoryID, categoryTagSample)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var all []string
	for _, tags := range lists {
		all = append(all, tags...)
	}

	return textproc.Values(textproc.MostCommon(all, maxCategoryTags)), nil
}

// SuggestPriceRange считает диапазон по ценам активных продуктов категории:
// [max(min, avg*0.7), min(max, avg*1.3)]. Без категории или цен возвращает nil.
func (u *ClassificationUseCase) SuggestPriceRange(ctx context.Context, categoryID *int64) (*domain.PriceRange, error) {
	const op = "ClassificationUseCase.SuggestPriceRange"

	if categoryID == nil {
		return nil, nil
	}

	prices, err := u.catalogRepo.CategoryPrices(ctx, *categoryID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(prices) == 0 {
		return nil, nil
	}

	lowest := decimal.Min(prices[0], prices[1:]...)
	highest := decimal.Max(prices[0], prices[1:]...)
	average := decimal.Sum(prices[0], prices[1:]...).Div(decimal.NewFromInt(int64(len(prices))))

	return &domain.PriceRange{
		Min:     decimal.Max(lowest, average.Mul(priceLowerFactor)).InexactFloat64(),
		Max:     decimal.Min(highest, average.Mul(priceUpperFactor)).InexactFloat64(),
		Average: average.InexactFloat64(),
	}, nil
}

// CategorySuggestions ищет активные категории по подстроке имени.
func (u *ClassificationUseCase) CategorySuggestions(ctx context.Context, query string, limit int) ([]domain.CategorySuggestion, error) {
	const op = "ClassificationUseCase.CategorySuggestions"

	if limit <= 0 {
		limit = defaultSuggestions
	}

	suggestions, err := u.categoryRepo.Suggest(ctx, query, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return suggestions, nil
}

func (u *ClassificationUseCase) build(ctx context.Context) (*classifierSnapshot, error) {
	const op = "ClassificationUseCase.build"

	var (
		texts  []string
		labels []int64
		tags   [][]string
	)

	err := u.snapshots.InSnapshot(ctx, func(ctx context.Context) error {
		return u.catalogRepo.StreamActive(ctx, func(p *domain.ProductRecord) error {
			if !p.HasCategory() {
				return nil
			}
			texts = append(texts, p.ClassificationText())
			labels = append(labels, p.CategoryID)
			tags = append(tags, p.Tags)
			return nil
		})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	snap := &classifierSnapshot{builtAt: time.Now().UTC()}
	if len(texts) == 0 {
		return snap, nil
	}

	model, err := naivebayes.Train(texts, labels, maxFeatures, naivebayes.DefaultAlpha)
	if errors.Is(err, e.ErrNoTrainingData) {
		return snap, nil
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	snap.category = model
	snap.tags = buildTagModel(texts, tags)

	return snap, nil
}

// buildTagModel выбирает 50 самых частых тегов и для каждого обучающего текста строит
// бинарный вектор: 1, если тег встречается в тексте как подстрока без учёта регистра.
func buildTagModel(texts []string, productTags [][]string) *TagModel {
	var all []string
	for _, tags := range productTags {
		all = append(all, tags...)
	}
	common := textproc.Values(textproc.MostCommon(all, maxCommonTags))

	lowered := make([]string, len(common))
	for j, tag := range common {
		lowered[j] = strings.ToLower(tag)
	}

	features := make([][]uint8, len(texts))
	for i, text := range texts {
		text = strings.ToLower(text)
		row := make([]uint8, len(common))
		for j, tag := range lowered {
			if strings.Contains(text, tag) {
				row[j] = 1
			}
		}
		features[i] = row
	}

	return &TagModel{Tags: common, Features: features}
}

func (u *ClassificationUseCase) save(ctx context.Context, snap *classifierSnapshot) error {
	const op = "ClassificationUseCase.save"

	categoryData, err := artifact.Encode(artifact.KindCategoryClassifier, snap.category)
	if err != nil {
		return e.Wrap(op, err)
	}
	tagData, err := artifact.Encode(artifact.KindTagModel, snap.tags)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := u.artifactRepo.Save(ctx, string(artifact.KindCategoryClassifier), categoryData); err != nil {
		return e.Wrap(op, err)
	}
	if err := u.artifactRepo.Save(ctx, string(artifact.KindTagModel), tagData); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (u *ClassificationUseCase) load(ctx context.Context) (*classifierSnapshot, error) {
	const op = "ClassificationUseCase.load"

	categoryData, err := u.artifactRepo.Load(ctx, string(artifact.KindCategoryClassifier))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	tagData, err := u.artifactRepo.Load(ctx, string(artifact.KindTagModel))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var model naivebayes.Model
	env, err := artifact.Decode(categoryData, artifact.KindCategoryClassifier, &model)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(model.Classes) == 0 || model.Vectorizer == nil {
		return nil, e.Wrap(op, e.ErrModelNotTrained)
	}

	var tags TagModel
	if _, err := artifact.Decode(tagData, artifact.KindTagModel, &tags); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &classifierSnapshot{
		category: &model,
		tags:     &tags,
		builtAt:  env.CreatedAt,
	}, nil
}
