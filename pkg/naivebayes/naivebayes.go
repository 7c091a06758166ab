// Package naivebayes — мультиномиальный наивный байесовский классификатор поверх TF-IDF признаков.
package naivebayes

import (
	"fmt"
	"math"
	"slices"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
)

// DefaultAlpha — аддитивное сглаживание Лапласа.
const DefaultAlpha = 1.0

// Model — обученный классификатор. Поля экспортируются для сериализации в артефакт.
type Model struct {
	Vectorizer     *Vectorizer `json:"vectorizer"`
	Classes        []int64     `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// Train обучает модель на парах (текст, метка). Классы упорядочены по возрастанию.
func Train(texts []string, labels []int64, maxFeatures int, alpha float64) (*Model, error) {
	const op = "naivebayes.Train"

	if len(texts) == 0 || len(texts) != len(labels) {
		return nil, e.Wrap(op, e.ErrNoTrainingData)
	}

	vectorizer := FitVectorizer(texts, maxFeatures)
	if vectorizer.Dim() == 0 {
		return nil, e.Wrap(op, fmt.Errorf("%w: empty vocabulary", e.ErrNoTrainingData))
	}

	classes := slices.Clone(labels)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	classIdx := make(map[int64]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}

	dim := vectorizer.Dim()
	featureCount := make([][]float64, len(classes))
	for i := range featureCount {
		featureCount[i] = make([]float64, dim)
	}
	classCount := make([]float64, len(classes))

	for i, text := range texts {
		c := classIdx[labels[i]]
		classCount[c]++
		for j, x := range vectorizer.Transform(text) {
			featureCount[c][j] += x
		}
	}

	model := &Model{
		Vectorizer:     vectorizer,
		Classes:        classes,
		ClassLogPrior:  make([]float64, len(classes)),
		FeatureLogProb: make([][]float64, len(classes)),
	}

	total := float64(len(texts))
	for c := range classes {
		model.ClassLogPrior[c] = math.Log(classCount[c] / total)

		var sum float64
		for _, fc := range featureCount[c] {
			sum += fc
		}
		denom := math.Log(sum + alpha*float64(dim))

		model.FeatureLogProb[c] = make([]float64, dim)
		for j, fc := range featureCount[c] {
			model.FeatureLogProb[c][j] = math.Log(fc+alpha) - denom
		}
	}

	return model, nil
}

// PredictProba возвращает апостериорные вероятности классов в порядке Classes.
func (m *Model) PredictProba(text string) ([]float64, error) {
	const op = "Model.PredictProba"

	if err := m.validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	x := m.Vectorizer.Transform(text)

	jll := make([]float64, len(m.Classes))
	for c := range m.Classes {
		score := m.ClassLogPrior[c]
		for j, v := range x {
			if v != 0 {
				score += v * m.FeatureLogProb[c][j]
			}
		}
		jll[c] = score
	}

	maxLL := slices.Max(jll)
	var sum float64
	for _, ll := range jll {
		sum += math.Exp(ll - maxLL)
	}
	logNorm := maxLL + math.Log(sum)

	proba := make([]float64, len(jll))
	for c, ll := range jll {
		p := math.Exp(ll - logNorm)
		if math.IsNaN(p) {
			return nil, e.Wrap(op, fmt.Errorf("non-finite posterior for class %d", m.Classes[c]))
		}
		proba[c] = p
	}

	return proba, nil
}

// Predict возвращает класс с максимальной апостериорной вероятностью и саму вероятность.
// При равенстве выбирается класс с меньшим идентификатором.
func (m *Model) Predict(text string) (int64, float64, error) {
	proba, err := m.PredictProba(text)
	if err != nil {
		return 0, 0, err
	}

	best := 0
	for c := range proba {
		if proba[c] > proba[best] {
			best = c
		}
	}

	return m.Classes[best], proba[best], nil
}

// validate проверяет согласованность размерностей (в том числе после загрузки из артефакта).
func (m *Model) validate() error {
	if m == nil || m.Vectorizer == nil || len(m.Classes) == 0 {
		return e.ErrModelNotTrained
	}
	if len(m.ClassLogPrior) != len(m.Classes) || len(m.FeatureLogProb) != len(m.Classes) {
		return e.ErrModelNotTrained
	}
	for _, row := range m.FeatureLogProb {
		if len(row) != m.Vectorizer.Dim() {
			return e.ErrModelNotTrained
		}
	}
	if len(m.Vectorizer.Vocabulary) != m.Vectorizer.Dim() {
		return e.ErrModelNotTrained
	}
	return nil
}
