package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/linkscribe/api-service/internal/domain/service"
	"github.com/linkscribe/api-service/internal/infrastructure/model"
)

// Predictor is the part of *model.Model the classifier depends on
type Predictor interface {
	Predict(text string) ([]string, error)
	Info() model.Info
}

// ModelClassifier adapts a loaded model to the Classifier interface
type ModelClassifier struct {
	model Predictor
}

// NewModelClassifier creates a new ModelClassifier
func NewModelClassifier(m Predictor) service.Classifier {
	return &ModelClassifier{model: m}
}

// Classify classifies a single text
func (c *ModelClassifier) Classify(ctx context.Context, text string) (*service.ClassificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	labels, err := c.model.Predict(text)
	if err != nil {
		return nil, mapModelError(err)
	}

	info := c.model.Info()
	return &service.ClassificationResult{
		Labels:       labels,
		ModelName:    info.Name,
		ModelVersion: info.Version,
	}, nil
}

// Info describes the underlying model
func (c *ModelClassifier) Info() service.ModelInfo {
	info := c.model.Info()
	return service.ModelInfo{
		Name:      info.Name,
		Framework: info.Framework,
		Version:   info.Version,
		Labels:    info.Labels,
		State:     info.State,
		Ready:     info.State == model.StateLoaded.String(),
	}
}

func mapModelError(err error) error {
	var rangeErr *model.IndexOutOfRangeError
	switch {
	case errors.Is(err, model.ErrUnsupportedFramework), errors.Is(err, model.ErrModelNotLoaded):
		return fmt.Errorf("%w: %w", service.ErrClassifierUnavailable, err)
	case errors.As(err, &rangeErr):
		return fmt.Errorf("%w: %w", service.ErrInconsistentModel, err)
	default:
		return fmt.Errorf("classification failed: %w", err)
	}
}
