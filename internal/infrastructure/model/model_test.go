package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLabels = []string{
	"Adult",
	"Business/Corporate",
	"Computers and Technology",
	"E-Commerce",
	"Education",
	"Food",
	"Forums",
	"Games",
	"Health and Fitness",
	"Law and Government",
	"News",
	"Photography",
	"Social Networking and Messaging",
	"Sports",
	"Streaming Services",
	"Travel",
}

// keywordArtifact builds a linear artifact where each class is driven by one
// keyword, and "buy"/"online" also vote for E-Commerce.
func keywordArtifact() *SklearnArtifact {
	keywords := []string{
		"casino", "company", "software", "shoes", "university", "recipe", "forum", "game",
		"fitness", "government", "news", "photo", "chat", "football", "stream", "hotel",
	}
	vocab := make(map[string]int)
	for i, k := range keywords {
		vocab[k] = i
	}
	vocab["buy"] = len(keywords)
	vocab["online"] = len(keywords) + 1
	nFeatures := len(vocab)

	coef := make([][]float64, len(keywords))
	for i := range coef {
		coef[i] = make([]float64, nFeatures)
		coef[i][i] = 1
	}
	coef[3][vocab["buy"]] = 0.5
	coef[3][vocab["online"]] = 0.5

	idf := make([]float64, nFeatures)
	for i := range idf {
		idf[i] = 1
	}

	return &SklearnArtifact{
		Name:      "LScribe-Model",
		Version:   1,
		Framework: "sklearn",
		Vectorizer: VectorizerSpec{
			Vocabulary: vocab,
			IDF:        idf,
			StopWords:  []string{"now"},
		},
		Estimator: EstimatorSpec{
			Kind:      EstimatorLinear,
			Coef:      coef,
			Intercept: make([]float64, len(keywords)),
		},
	}
}

func writeArtifact(t *testing.T, art interface{}) string {
	t.Helper()
	data, err := json.Marshal(art)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "linkscribe.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func loadedModel(t *testing.T) *Model {
	t.Helper()
	m := New(Spec{
		Name:      "LScribe-Model",
		Path:      writeArtifact(t, keywordArtifact()),
		Framework: FrameworkSklearn,
		Version:   1,
		Labels:    testLabels,
	})
	require.NoError(t, m.Load())
	return m
}

type stubPredictor struct {
	index   int
	classes int
}

func (s *stubPredictor) PredictIndex(string) (int, error) { return s.index, nil }
func (s *stubPredictor) NumClasses() int                  { return s.classes }
func (s *stubPredictor) ClassIndices() []int {
	out := make([]int, s.classes)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestParseFramework(t *testing.T) {
	t.Run("accepts sklearn", func(t *testing.T) {
		fw, err := ParseFramework(" SKLearn ")

		require.NoError(t, err)
		assert.Equal(t, FrameworkSklearn, fw)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := ParseFramework("tensorflow")

		assert.ErrorIs(t, err, ErrUnsupportedFramework)
	})
}

func TestModel_Load(t *testing.T) {
	t.Run("loads artifact", func(t *testing.T) {
		m := loadedModel(t)

		assert.Equal(t, StateLoaded, m.State())
		info := m.Info()
		assert.Equal(t, "LScribe-Model", info.Name)
		assert.Equal(t, "sklearn", info.Framework)
		assert.Equal(t, 1, info.Version)
		assert.Equal(t, "loaded", info.State)
		assert.Equal(t, testLabels, info.Labels)
	})

	t.Run("unsupported framework", func(t *testing.T) {
		m := New(Spec{Path: writeArtifact(t, keywordArtifact()), Framework: "onnx", Labels: testLabels})

		err := m.Load()

		assert.ErrorIs(t, err, ErrUnsupportedFramework)
		assert.Equal(t, StateFailed, m.State())
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.json")
		m := New(Spec{Path: path, Framework: FrameworkSklearn, Labels: testLabels})

		err := m.Load()

		var loadErr *ArtifactLoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, path, loadErr.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, StateFailed, m.State())
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "corrupt.json")
		require.NoError(t, os.WriteFile(path, []byte("\x80\x04\x95 not json"), 0o600))
		m := New(Spec{Path: path, Framework: FrameworkSklearn, Labels: testLabels})

		err := m.Load()

		var loadErr *ArtifactLoadError
		assert.ErrorAs(t, err, &loadErr)
		assert.Equal(t, StateFailed, m.State())
	})

	t.Run("label count mismatch", func(t *testing.T) {
		m := New(Spec{Path: writeArtifact(t, keywordArtifact()), Framework: FrameworkSklearn, Labels: testLabels[:4]})

		err := m.Load()

		var loadErr *ArtifactLoadError
		assert.ErrorAs(t, err, &loadErr)
		assert.ErrorIs(t, err, ErrLabelMismatch)
	})

	t.Run("class mapping outside label set", func(t *testing.T) {
		art := keywordArtifact()
		art.Estimator.Classes = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 42}
		m := New(Spec{Path: writeArtifact(t, art), Framework: FrameworkSklearn, Labels: testLabels})

		err := m.Load()

		var rangeErr *IndexOutOfRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, 42, rangeErr.Index)
		assert.Equal(t, 16, rangeErr.Size)
		var loadErr *ArtifactLoadError
		assert.ErrorAs(t, err, &loadErr)
		assert.Equal(t, StateFailed, m.State())
	})

	t.Run("artifact from another framework", func(t *testing.T) {
		art := keywordArtifact()
		art.Framework = "pytorch"
		m := New(Spec{Path: writeArtifact(t, art), Framework: FrameworkSklearn, Labels: testLabels})

		err := m.Load()

		var loadErr *ArtifactLoadError
		assert.ErrorAs(t, err, &loadErr)
	})

	t.Run("load twice", func(t *testing.T) {
		m := loadedModel(t)

		err := m.Load()

		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, StateLoaded, m.State())
	})

	t.Run("failed is terminal", func(t *testing.T) {
		m := New(Spec{Path: filepath.Join(t.TempDir(), "missing.json"), Framework: FrameworkSklearn, Labels: testLabels})
		require.Error(t, m.Load())

		err := m.Load()

		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, StateFailed, m.State())
	})
}

func TestModel_Predict(t *testing.T) {
	t.Run("returns one label from the taxonomy", func(t *testing.T) {
		m := loadedModel(t)

		labels, err := m.Predict("Buy shoes online now")

		require.NoError(t, err)
		require.Len(t, labels, 1)
		assert.NotEmpty(t, labels[0])
		assert.Contains(t, testLabels, labels[0])
		assert.Equal(t, "E-Commerce", labels[0])
	})

	t.Run("every keyword maps to its class", func(t *testing.T) {
		m := loadedModel(t)

		tests := map[string]string{
			"Breaking news from the capital":     "News",
			"Latest football scores":             "Sports",
			"Book a hotel for your trip":         "Travel",
			"Government announces new law":       "Law and Government",
			"Open source software for engineers": "Computers and Technology",
		}
		for text, want := range tests {
			labels, err := m.Predict(text)
			require.NoError(t, err)
			assert.Equal(t, []string{want}, labels, text)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		m := loadedModel(t)
		text := "stream the game online and chat in the forum"

		first, err := m.Predict(text)
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			labels, err := m.Predict(text)
			require.NoError(t, err)
			assert.Equal(t, first, labels)
		}
	})

	t.Run("empty text still yields a label", func(t *testing.T) {
		m := loadedModel(t)

		labels, err := m.Predict("")

		require.NoError(t, err)
		assert.Equal(t, []string{"Adult"}, labels)
	})

	t.Run("not loaded", func(t *testing.T) {
		m := New(Spec{Path: "unused", Framework: FrameworkSklearn, Labels: testLabels})

		labels, err := m.Predict("text")

		assert.ErrorIs(t, err, ErrModelNotLoaded)
		assert.Nil(t, labels)
	})

	t.Run("failed model", func(t *testing.T) {
		m := New(Spec{Path: filepath.Join(t.TempDir(), "missing.json"), Framework: FrameworkSklearn, Labels: testLabels})
		require.Error(t, m.Load())

		_, err := m.Predict("text")

		assert.ErrorIs(t, err, ErrModelNotLoaded)
	})

	t.Run("unsupported framework", func(t *testing.T) {
		m := New(Spec{Path: "unused", Framework: "onnx", Labels: testLabels})
		m.state = StateLoaded
		m.predictor = &stubPredictor{index: 0, classes: len(testLabels)}

		labels, err := m.Predict("text")

		assert.ErrorIs(t, err, ErrUnsupportedFramework)
		assert.Nil(t, labels)
	})

	t.Run("artifact index out of range", func(t *testing.T) {
		m := New(Spec{Path: "unused", Framework: FrameworkSklearn, Labels: testLabels})
		m.state = StateLoaded
		m.predictor = &stubPredictor{index: 99, classes: len(testLabels)}

		labels, err := m.Predict("text")

		var rangeErr *IndexOutOfRangeError
		require.True(t, errors.As(err, &rangeErr))
		assert.Equal(t, 99, rangeErr.Index)
		assert.Equal(t, len(testLabels), rangeErr.Size)
		assert.Nil(t, labels)
	})

	t.Run("negative index", func(t *testing.T) {
		m := New(Spec{Path: "unused", Framework: FrameworkSklearn, Labels: testLabels})
		m.state = StateLoaded
		m.predictor = &stubPredictor{index: -1, classes: len(testLabels)}

		_, err := m.Predict("text")

		var rangeErr *IndexOutOfRangeError
		assert.ErrorAs(t, err, &rangeErr)
	})
}

func TestModel_LabelsAreCopied(t *testing.T) {
	labels := []string{"a", "b"}
	m := New(Spec{Labels: labels, Framework: FrameworkSklearn})

	labels[0] = "changed"
	info := m.Info()
	info.Labels[1] = "changed"

	assert.Equal(t, []string{"a", "b"}, m.Info().Labels)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unloaded", StateUnloaded.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(7)", State(7).String())
}

func TestSampleArtifact(t *testing.T) {
	m := New(Spec{
		Name:      "LScribe-Model",
		Path:      filepath.Join("..", "..", "..", "models", "sklearn", "linkscribe.json"),
		Framework: FrameworkSklearn,
		Version:   1,
		Labels:    testLabels,
	})
	require.NoError(t, m.Load())

	tests := map[string]string{
		"Free shipping on every checkout, buy today": "E-Commerce",
		"Breaking news and headlines":                "News",
		"Cheap flights and hotel booking":            "Travel",
	}
	for text, want := range tests {
		labels, err := m.Predict(text)
		require.NoError(t, err)
		assert.Equal(t, []string{want}, labels, text)
	}
}
