// Package model loads a pre-trained text classifier artifact and maps page
// text to a label of a fixed taxonomy.
//
// A Model moves through Unloaded -> Loaded, or Unloaded -> Failed when Load
// returns an error. Failed is terminal. Once loaded, a Model is read-only and
// Predict is safe for concurrent use.
package model

import (
	"fmt"
	"strings"
)

// Framework identifies the toolkit that produced an artifact
type Framework string

const (
	FrameworkSklearn Framework = "sklearn"
)

// loader deserializes an artifact of one framework kind.
type loader func(path string) (predictor, error)

// predictor runs inference for a loaded artifact.
type predictor interface {
	// PredictIndex classifies a single-document batch and returns the
	// artifact's integer class output.
	PredictIndex(text string) (int, error)
	// NumClasses is the trained class count.
	NumClasses() int
	// ClassIndices lists every class output the artifact can produce.
	ClassIndices() []int
}

var loaders = map[Framework]loader{
	FrameworkSklearn: loadSklearn,
}

// ParseFramework converts a configured framework name to a Framework
func ParseFramework(name string) (Framework, error) {
	fw := Framework(strings.ToLower(strings.TrimSpace(name)))
	if !fw.Supported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFramework, name)
	}
	return fw, nil
}

// Supported reports whether an artifact loader exists for f
func (f Framework) Supported() bool {
	_, ok := loaders[f]
	return ok
}

// State is the lifecycle state of a Model
type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Spec identifies an artifact and the label taxonomy it predicts into
type Spec struct {
	Name      string
	Path      string
	Framework Framework
	Version   int
	Labels    []string
}

// Info describes a Model for status endpoints
type Info struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	Framework string   `json:"framework"`
	Version   int      `json:"version"`
	Labels    []string `json:"labels"`
	State     string   `json:"state"`
}

// Model is a classifier handle. Create it with New and call Load once
// before serving predictions.
type Model struct {
	spec      Spec
	labels    []string
	state     State
	predictor predictor
}

// New creates an unloaded Model
func New(spec Spec) *Model {
	labels := make([]string, len(spec.Labels))
	copy(labels, spec.Labels)
	return &Model{
		spec:   spec,
		labels: labels,
		state:  StateUnloaded,
	}
}

// Load reads the artifact from disk. It is not safe to call concurrently
// with Predict.
func (m *Model) Load() error {
	if m.state != StateUnloaded {
		return fmt.Errorf("%w: cannot load model in state %s", ErrInvalidState, m.state)
	}

	load, ok := loaders[m.spec.Framework]
	if !ok {
		m.state = StateFailed
		return fmt.Errorf("%w: %q", ErrUnsupportedFramework, m.spec.Framework)
	}

	p, err := load(m.spec.Path)
	if err != nil {
		m.state = StateFailed
		return &ArtifactLoadError{Path: m.spec.Path, Err: err}
	}

	if p.NumClasses() != len(m.labels) {
		m.state = StateFailed
		return &ArtifactLoadError{
			Path: m.spec.Path,
			Err:  fmt.Errorf("%w: artifact has %d classes, %d labels configured", ErrLabelMismatch, p.NumClasses(), len(m.labels)),
		}
	}
	for _, idx := range p.ClassIndices() {
		if idx < 0 || idx >= len(m.labels) {
			m.state = StateFailed
			return &ArtifactLoadError{
				Path: m.spec.Path,
				Err:  &IndexOutOfRangeError{Index: idx, Size: len(m.labels)},
			}
		}
	}

	m.predictor = p
	m.state = StateLoaded
	return nil
}

// Predict classifies text and returns a one-element slice holding its label
func (m *Model) Predict(text string) ([]string, error) {
	if !m.spec.Framework.Supported() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFramework, m.spec.Framework)
	}
	if m.state != StateLoaded {
		return nil, fmt.Errorf("%w: model %s is %s", ErrModelNotLoaded, m.spec.Name, m.state)
	}

	idx, err := m.predictor.PredictIndex(text)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	if idx < 0 || idx >= len(m.labels) {
		return nil, &IndexOutOfRangeError{Index: idx, Size: len(m.labels)}
	}

	return []string{m.labels[idx]}, nil
}

// State returns the lifecycle state
func (m *Model) State() State {
	return m.state
}

// Info returns a snapshot of the model identity and state
func (m *Model) Info() Info {
	labels := make([]string, len(m.labels))
	copy(labels, m.labels)
	return Info{
		Name:      m.spec.Name,
		Path:      m.spec.Path,
		Framework: string(m.spec.Framework),
		Version:   m.spec.Version,
		Labels:    labels,
		State:     m.state.String(),
	}
}
