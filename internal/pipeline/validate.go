package pipeline

import (
	"fmt"

	"github.com/agrisense/survey-cli/internal/config"
	"github.com/agrisense/survey-cli/internal/field"
	"github.com/agrisense/survey-cli/internal/table"
	"github.com/agrisense/survey-cli/internal/weather"
)

// Validate runs post-processing sanity checks over a result and returns one
// message per violated property. An empty slice means the run is clean.
// Violations are diagnostics, not errors: the artifacts are still written.
func Validate(r *Result, clean config.CleanConfig) []string {
	var problems []string

	if r.Field.Len() == 0 {
		problems = append(problems, "field table is empty")
	}
	if r.Weather.Len() == 0 {
		problems = append(problems, "weather table is empty")
	}

	for _, col := range []string{field.ColFieldID, clean.AbsColumn, clean.CropColumn} {
		if !r.Field.HasColumn(col) {
			problems = append(problems, fmt.Sprintf("field table missing column %q", col))
		}
	}
	for _, col := range []string{weather.ColStation, weather.ColMessage} {
		if !r.Weather.HasColumn(col) {
			problems = append(problems, fmt.Sprintf("weather table missing column %q", col))
		}
	}

	crops := make(map[string]bool, len(clean.CropTypes))
	for _, c := range clean.CropTypes {
		crops[c] = true
	}

	for i, row := range r.Field.Rows {
		if f, ok := table.Float(row[clean.AbsColumn]); ok && f < 0 {
			problems = append(problems, fmt.Sprintf("row %d: negative %s %v", i, clean.AbsColumn, f))
		}
		if f, ok := table.Float(row[string(weather.KindRainfall)]); ok && f < 0 {
			problems = append(problems, fmt.Sprintf("row %d: negative Rainfall %v", i, f))
		}
		if len(crops) > 0 {
			if s, ok := row[clean.CropColumn].(string); ok && !crops[s] {
				problems = append(problems, fmt.Sprintf("row %d: unknown crop type %q", i, s))
			}
		}
	}

	return problems
}
