package naivebayes

import (
	"cmp"
	"math"
	"slices"

	"github.com/DRSN-tech/product-intelligence/pkg/textproc"
)

// Vectorizer — мешок слов с весами TF-IDF (сглаженный idf, L2-нормализация строки).
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// FitVectorizer строит словарь из maxFeatures самых частых по корпусу термов
// (при равенстве частот — по алфавиту) и считает idf. maxFeatures <= 0 — без ограничения.
func FitVectorizer(corpus []string, maxFeatures int) *Vectorizer {
	df := make(map[string]int)
	tf := make(map[string]int)

	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range textproc.Tokenize(doc) {
			tf[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(tf))
	for term := range tf {
		terms = append(terms, term)
	}
	slices.SortFunc(terms, func(a, b string) int {
		if c := cmp.Compare(tf[b], tf[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	slices.Sort(terms)

	n := float64(len(corpus))
	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	return v
}

// Dim возвращает число признаков.
func (v *Vectorizer) Dim() int { return len(v.IDF) }

// Transform возвращает плотный L2-нормализованный TF-IDF вектор текста.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.IDF))
	for _, tok := range textproc.Tokenize(text) {
		if idx, ok := v.Vocabulary[tok]; ok {
			vec[idx]++
		}
	}

	var norm float64
	for i := range vec {
		vec[i] *= v.IDF[i]
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		return vec
	}

	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}
