package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrisense/survey-cli/internal/stats"
	"github.com/agrisense/survey-cli/internal/weather"
)

var compareAlpha float64

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Test field-reported against station-reported measurements per station",
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

		alpha := cfg.Compare.Alpha
		if cmd.Flags().Changed("alpha") {
			alpha = compareAlpha
		}

		comparator := stats.NewComparator(alpha)
		verdicts, err := comparator.Compare(result.Field, result.Weather, weather.CanonicalKinds, os.Stdout)
		if err != nil {
			return err
		}

		undefined := 0
		for _, v := range verdicts {
			if v.Undefined() {
				undefined++
			}
		}
		if undefined > 0 {
			zap.L().Warn("some tests were statistically undefined", zap.Int("count", undefined))
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().Float64Var(&compareAlpha, "alpha", 0.05, "significance threshold")
	rootCmd.AddCommand(compareCmd)
}
