package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrisense/survey-cli/internal/pipeline"
)

var runSkipExport bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full normalization pipeline and export the cleaned tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, closeSurvey, err := newPipeline()
		if err != nil {
			return err
		}
		defer closeSurvey()

		result, err := p.Run(ctx)
		if err != nil {
			return err
		}

		for _, problem := range pipeline.Validate(result, cfg.Clean) {
			zap.L().Warn("validation", zap.String("problem", problem))
		}

		if runSkipExport {
			return nil
		}
		return result.Export(cfg.Export)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runSkipExport, "no-export", false, "skip writing the CSV artifacts")
	rootCmd.AddCommand(runCmd)
}
