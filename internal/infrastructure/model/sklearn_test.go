package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func rowValues(row []feature) map[int]float64 {
	out := make(map[int]float64, len(row))
	for _, f := range row {
		out[f.col] = f.val
	}
	return out
}

func TestVectorizer_Transform(t *testing.T) {
	t.Run("counts without idf are not normalized", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary: map[string]int{"web": 0, "page": 1},
		})
		require.NoError(t, err)

		row := vec.transform("Web page, web PAGE, web")

		assert.Equal(t, map[int]float64{0: 3, 1: 2}, rowValues(row))
	})

	t.Run("tfidf with l2 norm", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary: map[string]int{"a1": 0, "b2": 1},
			IDF:        []float64{1, 2},
		})
		require.NoError(t, err)

		values := rowValues(vec.transform("a1 b2"))

		norm := math.Sqrt(1 + 4)
		assert.InDelta(t, 1/norm, values[0], 1e-12)
		assert.InDelta(t, 2/norm, values[1], 1e-12)
	})

	t.Run("l1 norm and sublinear tf", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary:  map[string]int{"go": 0, "gopher": 1},
			SublinearTF: true,
			Norm:        strPtr("l1"),
		})
		require.NoError(t, err)

		values := rowValues(vec.transform("go go go gopher"))

		a := 1 + math.Log(3)
		b := 1.0
		assert.InDelta(t, a/(a+b), values[0], 1e-12)
		assert.InDelta(t, b/(a+b), values[1], 1e-12)
	})

	t.Run("binary counts", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary: map[string]int{"spam": 0},
			Binary:     true,
		})
		require.NoError(t, err)

		assert.Equal(t, map[int]float64{0: 1}, rowValues(vec.transform("spam spam spam")))
	})

	t.Run("word ngrams", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary: map[string]int{"machine": 0, "learning": 1, "machine learning": 2},
			NgramRange: [2]int{1, 2},
		})
		require.NoError(t, err)

		assert.Equal(t, map[int]float64{0: 1, 1: 1, 2: 1}, rowValues(vec.transform("Machine learning")))
	})

	t.Run("stop words are removed before ngrams", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary: map[string]int{"news today": 0},
			NgramRange: [2]int{2, 2},
			StopWords:  []string{"of"},
		})
		require.NoError(t, err)

		assert.Equal(t, map[int]float64{0: 1}, rowValues(vec.transform("news of today")))
	})

	t.Run("case sensitive when lowercase is disabled", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary: map[string]int{"Go": 0},
			Lowercase:  boolPtr(false),
		})
		require.NoError(t, err)

		assert.Empty(t, vec.transform("go"))
		assert.Len(t, vec.transform("Go"), 1)
	})

	t.Run("single characters are not tokens", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary: map[string]int{"a": 0, "ab": 1},
		})
		require.NoError(t, err)

		assert.Equal(t, map[int]float64{1: 1}, rowValues(vec.transform("a ab")))
	})

	t.Run("unicode words", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary: map[string]int{"café": 0, "überall": 1},
		})
		require.NoError(t, err)

		assert.Equal(t, map[int]float64{0: 1, 1: 1}, rowValues(vec.transform("Café ÜBERALL")))
	})

	t.Run("row is ordered by column", func(t *testing.T) {
		vec, err := newVectorizer(&VectorizerSpec{
			Vocabulary: map[string]int{"zz": 0, "yy": 1, "xx": 2},
		})
		require.NoError(t, err)

		row := vec.transform("xx yy zz")

		require.Len(t, row, 3)
		for i := range row {
			assert.Equal(t, i, row[i].col)
		}
	})
}

func TestNewVectorizer_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec VectorizerSpec
	}{
		{name: "empty vocabulary", spec: VectorizerSpec{}},
		{name: "column out of range", spec: VectorizerSpec{Vocabulary: map[string]int{"a": 5}}},
		{name: "idf length", spec: VectorizerSpec{Vocabulary: map[string]int{"ab": 0}, IDF: []float64{1, 2}}},
		{name: "bad pattern", spec: VectorizerSpec{Vocabulary: map[string]int{"ab": 0}, TokenPattern: "("}},
		{name: "bad ngram range", spec: VectorizerSpec{Vocabulary: map[string]int{"ab": 0}, NgramRange: [2]int{2, 1}}},
		{name: "bad norm", spec: VectorizerSpec{Vocabulary: map[string]int{"ab": 0}, Norm: strPtr("max")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newVectorizer(&tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestEstimators(t *testing.T) {
	t.Run("binary linear model", func(t *testing.T) {
		est, err := newEstimator(&EstimatorSpec{
			Kind:      EstimatorLinear,
			Coef:      [][]float64{{2, -2}},
			Intercept: []float64{-0.5},
		}, 2)
		require.NoError(t, err)

		assert.Equal(t, 2, est.numClasses())
		assert.Equal(t, 1, est.decide([]feature{{col: 0, val: 1}}))
		assert.Equal(t, 0, est.decide([]feature{{col: 1, val: 1}}))
		assert.Equal(t, 0, est.decide(nil))
	})

	t.Run("multiclass linear ties pick the first class", func(t *testing.T) {
		est, err := newEstimator(&EstimatorSpec{
			Kind: EstimatorLinear,
			Coef: [][]float64{{0, 1}, {1, 0}, {1, 0}},
		}, 2)
		require.NoError(t, err)

		assert.Equal(t, 3, est.numClasses())
		assert.Equal(t, 1, est.decide([]feature{{col: 0, val: 1}}))
	})

	t.Run("multinomial naive bayes", func(t *testing.T) {
		est, err := newEstimator(&EstimatorSpec{
			Kind:           EstimatorMultinomialNB,
			FeatureLogProb: [][]float64{{math.Log(0.9), math.Log(0.1)}, {math.Log(0.2), math.Log(0.8)}},
			ClassLogPrior:  []float64{math.Log(0.5), math.Log(0.5)},
		}, 2)
		require.NoError(t, err)

		assert.Equal(t, 0, est.decide([]feature{{col: 0, val: 3}}))
		assert.Equal(t, 1, est.decide([]feature{{col: 1, val: 3}}))
	})

	t.Run("prior decides empty documents", func(t *testing.T) {
		est, err := newEstimator(&EstimatorSpec{
			Kind:           EstimatorMultinomialNB,
			FeatureLogProb: [][]float64{{-1}, {-1}},
			ClassLogPrior:  []float64{math.Log(0.3), math.Log(0.7)},
		}, 1)
		require.NoError(t, err)

		assert.Equal(t, 1, est.decide(nil))
	})
}

func TestNewEstimator_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec EstimatorSpec
	}{
		{name: "unknown kind", spec: EstimatorSpec{Kind: "random_forest"}},
		{name: "empty coef", spec: EstimatorSpec{Kind: EstimatorLinear}},
		{name: "coef width", spec: EstimatorSpec{Kind: EstimatorLinear, Coef: [][]float64{{1}}}},
		{name: "intercept length", spec: EstimatorSpec{Kind: EstimatorLinear, Coef: [][]float64{{1, 2}}, Intercept: []float64{1, 2}}},
		{name: "nb prior length", spec: EstimatorSpec{Kind: EstimatorMultinomialNB, FeatureLogProb: [][]float64{{1, 2}}, ClassLogPrior: []float64{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEstimator(&tt.spec, 2)
			assert.Error(t, err)
		})
	}
}

func TestSklearnPipeline_Classes(t *testing.T) {
	t.Run("maps estimator rows to class outputs", func(t *testing.T) {
		p, err := newSklearnPipeline(&SklearnArtifact{
			Vectorizer: VectorizerSpec{Vocabulary: map[string]int{"left": 0, "right": 1}},
			Estimator: EstimatorSpec{
				Kind:    EstimatorLinear,
				Coef:    [][]float64{{1, 0}, {0, 1}},
				Classes: []int{5, 2},
			},
		})
		require.NoError(t, err)

		idx, err := p.PredictIndex("right")
		require.NoError(t, err)
		assert.Equal(t, 2, idx)
		assert.Equal(t, []int{5, 2}, p.ClassIndices())
		assert.Equal(t, 2, p.NumClasses())
	})

	t.Run("class list must match outputs", func(t *testing.T) {
		_, err := newSklearnPipeline(&SklearnArtifact{
			Vectorizer: VectorizerSpec{Vocabulary: map[string]int{"ab": 0}},
			Estimator: EstimatorSpec{
				Kind:    EstimatorLinear,
				Coef:    [][]float64{{1}, {2}, {3}},
				Classes: []int{0, 1},
			},
		})
		assert.Error(t, err)
	})
}
