package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrisense/survey-cli/internal/config"
	"github.com/agrisense/survey-cli/internal/ingest"
	"github.com/agrisense/survey-cli/internal/pipeline"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "survey-cli",
	Short: "Agricultural survey data pipeline",
	Long:  "Ingests field-survey and weather-station data, normalizes both, fuses them on the station mapping, and compares field-reported against station-reported measurements.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newPipeline builds a pipeline over the configured sources. The caller
// owns the returned close function.
func newPipeline() (*pipeline.Pipeline, func() error, error) {
	survey, err := ingest.OpenSurvey(cfg.Store.DatabasePath, cfg.Store.Query)
	if err != nil {
		return nil, nil, err
	}
	csv := ingest.NewCSVSource(ingest.CSVOptions{
		UserAgent:  cfg.Sources.UserAgent,
		Timeout:    cfg.Sources.Timeout(),
		RatePerSec: cfg.Sources.RatePerSec,
	})
	return pipeline.New(cfg, survey, csv), survey.Close, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
