package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkscribe/api-service/internal/infrastructure/model"
)

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	art := model.SklearnArtifact{
		Framework:  "sklearn",
		Vectorizer: model.VectorizerSpec{Vocabulary: map[string]int{"shoes": 0, "news": 1}},
		Estimator: model.EstimatorSpec{
			Kind: model.EstimatorLinear,
			Coef: [][]float64{{1, 0}, {0, 1}},
		},
	}
	data, err := json.Marshal(art)
	require.NoError(t, err)
	artifactPath := filepath.Join(dir, "linkscribe.json")
	require.NoError(t, os.WriteFile(artifactPath, data, 0o600))

	configYAML := fmt.Sprintf(`
model:
  path: %s
  labels: ["E-Commerce", "News"]
log:
  level: error
`, artifactPath)
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o600))
	return configPath
}

func TestRootCmd_Commands(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "predict")
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestPredictCmd(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>Latest news today</p></body></html>"))
	}))
	defer pages.Close()

	configPath := writeFixtures(t)

	t.Run("prints the prediction", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--config", configPath, "predict", pages.URL, "--text"})

		require.NoError(t, cmd.Execute())

		var result predictResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, []string{"News"}, result.Prediction)
		assert.Equal(t, pages.URL, result.URL)
		assert.Equal(t, "Latest news today", result.WebText)
	})

	t.Run("requires a url", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", configPath, "predict"})

		assert.Error(t, cmd.Execute())
	})

	t.Run("missing artifact aborts", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		t.Setenv("LINKSCRIBE_MODEL_PATH", filepath.Join(t.TempDir(), "missing.json"))
		cmd.SetArgs([]string{"--config", configPath, "predict", pages.URL})

		err := cmd.Execute()

		var loadErr *model.ArtifactLoadError
		assert.ErrorAs(t, err, &loadErr)
	})
}
