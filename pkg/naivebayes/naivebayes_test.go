package naivebayes

import (
	"testing"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	trainTexts = []string{
		"leather wallet brown",
		"slim leather wallet card holder",
		"wireless headphones noise cancelling",
		"bluetooth headphones over ear",
		"running shoes lightweight",
		"trail running shoes waterproof",
	}
	trainLabels = []int64{3, 3, 1, 1, 2, 2}
)

func TestTrainAndPredict(t *testing.T) {
	model, err := Train(trainTexts, trainLabels, 1000, DefaultAlpha)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, model.Classes)

	label, confidence, err := model.Predict("genuine leather wallet")
	require.NoError(t, err)
	assert.Equal(t, int64(3), label)
	assert.Greater(t, confidence, 1.0/3)
	assert.LessOrEqual(t, confidence, 1.0)

	label, _, err = model.Predict("noise cancelling headphones")
	require.NoError(t, err)
	assert.Equal(t, int64(1), label)
}

func TestPredictProba_SumsToOne(t *testing.T) {
	model, err := Train(trainTexts, trainLabels, 1000, DefaultAlpha)
	require.NoError(t, err)

	proba, err := model.PredictProba("something entirely unrelated")
	require.NoError(t, err)

	var sum float64
	for _, p := range proba {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	// Без известных токенов решает только prior, а классы сбалансированы.
	assert.InDelta(t, proba[0], proba[1], 1e-9)
}

func TestTrain_Errors(t *testing.T) {
	_, err := Train(nil, nil, 10, DefaultAlpha)
	assert.ErrorIs(t, err, e.ErrNoTrainingData)

	_, err = Train([]string{"a"}, []int64{1, 2}, 10, DefaultAlpha)
	assert.ErrorIs(t, err, e.ErrNoTrainingData)

	_, err = Train([]string{"the a of"}, []int64{1}, 10, DefaultAlpha)
	assert.ErrorIs(t, err, e.ErrNoTrainingData)
}

func TestPredict_BrokenModel(t *testing.T) {
	var nilModel *Model
	_, _, err := nilModel.Predict("wallet")
	assert.ErrorIs(t, err, e.ErrModelNotTrained)

	model, err := Train(trainTexts, trainLabels, 1000, DefaultAlpha)
	require.NoError(t, err)
	model.FeatureLogProb = model.FeatureLogProb[:1]
	_, _, err = model.Predict("wallet")
	assert.ErrorIs(t, err, e.ErrModelNotTrained)
}

func TestModel_JSONRoundTrip(t *testing.T) {
	model, err := Train(trainTexts, trainLabels, 1000, DefaultAlpha)
	require.NoError(t, err)

	data, err := json.Marshal(model)
	require.NoError(t, err)

	var restored Model
	require.NoError(t, json.Unmarshal(data, &restored))

	for _, text := range []string{"leather card holder", "waterproof shoes", "ear"} {
		want, err := model.PredictProba(text)
		require.NoError(t, err)
		got, err := restored.PredictProba(text)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFitVectorizer_MaxFeatures(t *testing.T) {
	v := FitVectorizer([]string{"wallet wallet leather", "wallet card", "card"}, 2)

	assert.Equal(t, 2, v.Dim())
	assert.Contains(t, v.Vocabulary, "wallet")
	assert.Contains(t, v.Vocabulary, "card")
	assert.NotContains(t, v.Vocabulary, "leather")

	vec := v.Transform("wallet")
	assert.InDelta(t, 1.0, vec[v.Vocabulary["wallet"]], 1e-9)
}
