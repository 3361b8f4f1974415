package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

// DefaultTokenPattern matches runs of two or more word characters, the RE2
// equivalent of scikit-learn's default token pattern.
const DefaultTokenPattern = `[\p{L}\p{N}_]{2,}`

// Estimator kinds understood by the sklearn loader
const (
	EstimatorLinear        = "linear"
	EstimatorMultinomialNB = "multinomial_nb"
)

// SklearnArtifact is the JSON export of a scikit-learn text pipeline
// (vectorizer followed by an estimator).
type SklearnArtifact struct {
	Name       string         `json:"name,omitempty"`
	Version    int            `json:"version,omitempty"`
	Framework  string         `json:"framework,omitempty"`
	Vectorizer VectorizerSpec `json:"vectorizer"`
	Estimator  EstimatorSpec  `json:"estimator"`
}

// VectorizerSpec mirrors the fitted state of CountVectorizer/TfidfVectorizer
type VectorizerSpec struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf,omitempty"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty"`
	NgramRange   [2]int         `json:"ngram_range,omitempty"`
	StopWords    []string       `json:"stop_words,omitempty"`
	SublinearTF  bool           `json:"sublinear_tf,omitempty"`
	Binary       bool           `json:"binary,omitempty"`
	Norm         *string        `json:"norm,omitempty"`
}

// EstimatorSpec mirrors the fitted state of a linear model or MultinomialNB
type EstimatorSpec struct {
	Kind           string      `json:"kind"`
	Coef           [][]float64 `json:"coef,omitempty"`
	Intercept      []float64   `json:"intercept,omitempty"`
	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty"`
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty"`
	Classes        []int       `json:"classes,omitempty"`
}

func loadSklearn(path string) (predictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var art SklearnArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if art.Framework != "" && Framework(art.Framework) != FrameworkSklearn {
		return nil, fmt.Errorf("artifact framework %q is not %q", art.Framework, FrameworkSklearn)
	}

	return newSklearnPipeline(&art)
}

type sklearnPipeline struct {
	vec     *vectorizer
	est     estimator
	classes []int
}

func newSklearnPipeline(art *SklearnArtifact) (*sklearnPipeline, error) {
	vec, err := newVectorizer(&art.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}

	est, err := newEstimator(&art.Estimator, vec.nFeatures)
	if err != nil {
		return nil, fmt.Errorf("estimator: %w", err)
	}

	classes := art.Estimator.Classes
	if classes == nil {
		classes = make([]int, est.numClasses())
		for i := range classes {
			classes[i] = i
		}
	}
	if len(classes) != est.numClasses() {
		return nil, fmt.Errorf("estimator: %d classes listed for %d outputs", len(classes), est.numClasses())
	}

	return &sklearnPipeline{vec: vec, est: est, classes: classes}, nil
}

func (p *sklearnPipeline) PredictIndex(text string) (int, error) {
	return p.classes[p.est.decide(p.vec.transform(text))], nil
}

func (p *sklearnPipeline) NumClasses() int {
	return len(p.classes)
}

func (p *sklearnPipeline) ClassIndices() []int {
	out := make([]int, len(p.classes))
	copy(out, p.classes)
	return out
}

type vectorizer struct {
	vocab     map[string]int
	idf       []float64
	lowercase bool
	token     *regexp.Regexp
	minN      int
	maxN      int
	stop      map[string]struct{}
	sublinear bool
	binary    bool
	norm      string
	nFeatures int
}

func newVectorizer(spec *VectorizerSpec) (*vectorizer, error) {
	if len(spec.Vocabulary) == 0 {
		return nil, errors.New("empty vocabulary")
	}

	n := len(spec.Vocabulary)
	for term, idx := range spec.Vocabulary {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("term %q has column %d outside [0, %d)", term, idx, n)
		}
	}
	if spec.IDF != nil && len(spec.IDF) != n {
		return nil, fmt.Errorf("idf has %d entries for %d terms", len(spec.IDF), n)
	}

	pattern := spec.TokenPattern
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	token, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("token pattern: %w", err)
	}

	minN, maxN := spec.NgramRange[0], spec.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("invalid ngram range [%d, %d]", minN, maxN)
	}

	norm := ""
	if spec.IDF != nil {
		norm = "l2"
	}
	if spec.Norm != nil {
		norm = *spec.Norm
	}
	switch norm {
	case "", "l1", "l2":
	default:
		return nil, fmt.Errorf("unsupported norm %q", norm)
	}

	lowercase := true
	if spec.Lowercase != nil {
		lowercase = *spec.Lowercase
	}

	stop := make(map[string]struct{}, len(spec.StopWords))
	for _, w := range spec.StopWords {
		stop[w] = struct{}{}
	}

	return &vectorizer{
		vocab:     spec.Vocabulary,
		idf:       spec.IDF,
		lowercase: lowercase,
		token:     token,
		minN:      minN,
		maxN:      maxN,
		stop:      stop,
		sublinear: spec.SublinearTF,
		binary:    spec.Binary,
		norm:      norm,
		nFeatures: n,
	}, nil
}

func (v *vectorizer) tokenize(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	raw := v.token.FindAllString(text, -1)
	if len(v.stop) == 0 {
		return raw
	}
	tokens := raw[:0]
	for _, t := range raw {
		if _, ok := v.stop[t]; !ok {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// feature is one non-zero column of a document row.
type feature struct {
	col int
	val float64
}

// transform returns the non-zero features of a single document ordered by
// column, so every reduction over a row sums in the same order.
func (v *vectorizer) transform(text string) []feature {
	tokens := v.tokenize(text)
	counts := make(map[int]float64)

	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if col, ok := v.vocab[term]; ok {
				counts[col]++
			}
		}
	}

	row := make([]feature, 0, len(counts))
	for col, tf := range counts {
		row = append(row, feature{col: col, val: tf})
	}
	sort.Slice(row, func(i, j int) bool { return row[i].col < row[j].col })

	var total float64
	for i := range row {
		tf := row[i].val
		if v.binary {
			tf = 1
		}
		if v.sublinear {
			tf = 1 + math.Log(tf)
		}
		if v.idf != nil {
			tf *= v.idf[row[i].col]
		}
		row[i].val = tf
		switch v.norm {
		case "l2":
			total += tf * tf
		case "l1":
			total += math.Abs(tf)
		}
	}

	if v.norm == "l2" {
		total = math.Sqrt(total)
	}
	if v.norm != "" && total > 0 {
		for i := range row {
			row[i].val /= total
		}
	}

	return row
}

// estimator maps a feature row to the index of the winning output.
type estimator interface {
	decide(row []feature) int
	numClasses() int
}

func newEstimator(spec *EstimatorSpec, nFeatures int) (estimator, error) {
	switch spec.Kind {
	case EstimatorLinear:
		return newLinear(spec, nFeatures)
	case EstimatorMultinomialNB:
		return newMultinomialNB(spec, nFeatures)
	default:
		return nil, fmt.Errorf("unsupported estimator kind %q", spec.Kind)
	}
}

func checkMatrix(name string, m [][]float64, nFeatures int) error {
	if len(m) == 0 {
		return fmt.Errorf("%s is empty", name)
	}
	for i, r := range m {
		if len(r) != nFeatures {
			return fmt.Errorf("%s row %d has %d columns, want %d", name, i, len(r), nFeatures)
		}
	}
	return nil
}

type linear struct {
	coef      [][]float64
	intercept []float64
}

func newLinear(spec *EstimatorSpec, nFeatures int) (*linear, error) {
	if err := checkMatrix("coef", spec.Coef, nFeatures); err != nil {
		return nil, err
	}
	intercept := spec.Intercept
	if intercept == nil {
		intercept = make([]float64, len(spec.Coef))
	}
	if len(intercept) != len(spec.Coef) {
		return nil, fmt.Errorf("intercept has %d entries for %d coef rows", len(intercept), len(spec.Coef))
	}
	return &linear{coef: spec.Coef, intercept: intercept}, nil
}

func (l *linear) decide(row []feature) int {
	// A single coef row is a binary decision function.
	if len(l.coef) == 1 {
		if dot(l.coef[0], row)+l.intercept[0] > 0 {
			return 1
		}
		return 0
	}
	scores := make([]float64, len(l.coef))
	for k, w := range l.coef {
		scores[k] = dot(w, row) + l.intercept[k]
	}
	return argmax(scores)
}

func (l *linear) numClasses() int {
	if len(l.coef) == 1 {
		return 2
	}
	return len(l.coef)
}

type multinomialNB struct {
	featureLogProb [][]float64
	classLogPrior  []float64
}

func newMultinomialNB(spec *EstimatorSpec, nFeatures int) (*multinomialNB, error) {
	if err := checkMatrix("feature_log_prob", spec.FeatureLogProb, nFeatures); err != nil {
		return nil, err
	}
	if len(spec.ClassLogPrior) != len(spec.FeatureLogProb) {
		return nil, fmt.Errorf("class_log_prior has %d entries for %d classes", len(spec.ClassLogPrior), len(spec.FeatureLogProb))
	}
	return &multinomialNB{featureLogProb: spec.FeatureLogProb, classLogPrior: spec.ClassLogPrior}, nil
}

func (nb *multinomialNB) decide(row []feature) int {
	scores := make([]float64, len(nb.featureLogProb))
	for k, w := range nb.featureLogProb {
		scores[k] = dot(w, row) + nb.classLogPrior[k]
	}
	return argmax(scores)
}

func (nb *multinomialNB) numClasses() int {
	return len(nb.featureLogProb)
}

func dot(w []float64, row []feature) float64 {
	var s float64
	for _, f := range row {
		s += w[f.col] * f.val
	}
	return s
}

// argmax returns the first index holding the maximum score.
func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
