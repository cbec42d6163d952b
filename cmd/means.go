package main

import (
	"os"

	"github.com/spf13/cobra"
)

var meansCmd = &cobra.Command{
	Use:   "means",
	Short: "Print per-station mean measurements from the weather feed",
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

		return result.Means.WriteCSV(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(meansCmd)
}
