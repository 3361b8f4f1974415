package service

import (
	"context"
	"errors"
)

// Classifier errors surfaced to the usecase layer
var (
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrInconsistentModel     = errors.New("classifier output outside label taxonomy")
)

// ClassificationResult represents the result of text classification
type ClassificationResult struct {
	Labels       []string `json:"labels"`
	ModelName    string   `json:"model_name"`
	ModelVersion int      `json:"model_version"`
}

// ModelInfo describes the loaded classifier
type ModelInfo struct {
	Name      string   `json:"name"`
	Framework string   `json:"framework"`
	Version   int      `json:"version"`
	Labels    []string `json:"labels"`
	State     string   `json:"state"`
	Ready     bool     `json:"ready"`
}

// Classifier defines the interface for page text classification
type Classifier interface {
	// Classify maps text to a one-element label list
	Classify(ctx context.Context, text string) (*ClassificationResult, error)

	// Info describes the underlying model
	Info() ModelInfo
}
