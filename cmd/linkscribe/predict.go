package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkscribe/api-service/internal/infrastructure/config"
	"github.com/linkscribe/api-service/internal/infrastructure/logger"
	"github.com/linkscribe/api-service/internal/usecase"
)

type predictResult struct {
	URL          string   `json:"url"`
	Prediction   []string `json:"prediction"`
	ModelName    string   `json:"model_name"`
	ModelVersion int      `json:"model_version"`
	WebText      string   `json:"web_text,omitempty"`
}

func newPredictCmd(flags *rootFlags) *cobra.Command {
	var withText bool

	cmd := &cobra.Command{
		Use:   "predict <url>",
		Short: "Classify a single page and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(flags.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Keep stdout for the result
			logCfg := cfg.Log
			if logCfg.Level == "info" {
				logCfg.Level = "warn"
			}
			log, err := logger.NewLogger(&logCfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			m, err := loadModel(&cfg.Model, log)
			if err != nil {
				return err
			}

			linkUC := usecase.NewLinkUsecase(newExtractor(&cfg.Fetch), newClassifier(m), nil, usecase.WithLogger(log))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, cfg.Fetch.Timeout*time.Duration(cfg.Fetch.MaxRetries+2))
			defer cancel()

			output, err := linkUC.Predict(ctx, &usecase.URLInput{URL: args[0]})
			if err != nil {
				return err
			}
			result := predictResult{
				URL:          args[0],
				Prediction:   output.Prediction,
				ModelName:    output.ModelName,
				ModelVersion: output.ModelVersion,
			}
			if withText {
				result.WebText = output.WebText
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().BoolVar(&withText, "text", false, "include the extracted page text in the output")
	return cmd
}
