package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/linkscribe/api-service/internal/adapter/classifier"
	"github.com/linkscribe/api-service/internal/adapter/preview"
	"github.com/linkscribe/api-service/internal/adapter/scraper"
	"github.com/linkscribe/api-service/internal/domain/service"
	"github.com/linkscribe/api-service/internal/infrastructure/config"
	"github.com/linkscribe/api-service/internal/infrastructure/model"
)

// loadModel reads the classifier artifact. Any error here aborts startup.
func loadModel(cfg *config.ModelConfig, log *zap.Logger) (*model.Model, error) {
	framework, err := model.ParseFramework(cfg.Framework)
	if err != nil {
		return nil, err
	}

	m := model.New(model.Spec{
		Name:      cfg.Name,
		Path:      cfg.Path,
		Framework: framework,
		Version:   cfg.Version,
		Labels:    cfg.Labels,
	})
	if err := m.Load(); err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	log.Info("Model loaded",
		zap.String("name", cfg.Name),
		zap.String("path", cfg.Path),
		zap.String("framework", string(framework)),
		zap.Int("version", cfg.Version),
		zap.Int("labels", len(cfg.Labels)),
	)
	return m, nil
}

func newExtractor(cfg *config.FetchConfig) *scraper.Extractor {
	retry := scraper.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries

	fetcher := scraper.NewFetcher(cfg.Timeout,
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithMaxBodyBytes(cfg.MaxBodyBytes),
		scraper.WithRetry(retry),
	)
	return scraper.NewExtractor(fetcher)
}

func newPreviewer(cfg *config.PreviewConfig) service.PagePreviewer {
	if !cfg.Enabled {
		return preview.Disabled{}
	}
	return preview.NewPreviewer(cfg.Timeout,
		preview.WithViewport(cfg.Width, cfg.Height),
		preview.WithExecPath(cfg.ChromePath),
	)
}

func newClassifier(m *model.Model) service.Classifier {
	return classifier.NewModelClassifier(m)
}
