// Package pipeline wires the acquisition sources and processing stages into
// one batch run. Stages execute in a fixed sequence over fully materialized
// tables; only acquisition of the two remote CSVs runs concurrently.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrisense/survey-cli/internal/config"
	"github.com/agrisense/survey-cli/internal/field"
	"github.com/agrisense/survey-cli/internal/table"
	"github.com/agrisense/survey-cli/internal/weather"
)

// SurveySource yields raw field-survey rows.
type SurveySource interface {
	Fetch(ctx context.Context) (*table.Table, error)
}

// CSVFetcher yields a table from a remote CSV resource.
type CSVFetcher interface {
	Fetch(ctx context.Context, url string) (*table.Table, error)
}

// Pipeline runs the full normalization pass.
type Pipeline struct {
	cfg    *config.Config
	survey SurveySource
	csv    CSVFetcher
}

// New creates a pipeline with its acquisition sources.
func New(cfg *config.Config, survey SurveySource, csv CSVFetcher) *Pipeline {
	return &Pipeline{cfg: cfg, survey: survey, csv: csv}
}

// Result holds the artifacts of one run.
type Result struct {
	RunID   string
	Field   *table.Table // cleaned, fused field-survey table
	Weather *table.Table // parsed weather-message table
	Means   *table.Table // per-station measurement means, wide form
}

// Run executes acquisition, normalization, parsing, fusion and aggregation.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting run")

	rules, err := weather.CompileRules(p.cfg.Weather.Rules)
	if err != nil {
		return nil, err
	}

	// Acquisition. The two remote CSVs download in parallel; everything
	// downstream is strictly sequential.
	var mapping, messages *table.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := p.csv.Fetch(gctx, p.cfg.Sources.MappingCSV)
		if err != nil {
			return err
		}
		mapping = t
		return nil
	})
	g.Go(func() error {
		t, err := p.csv.Fetch(gctx, p.cfg.Sources.WeatherCSV)
		if err != nil {
			return err
		}
		messages = t
		return nil
	})

	raw, err := p.survey.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Field branch: normalize, then fuse with the station mapping.
	cleaned, err := field.NewNormalizer(p.cfg.Clean).Normalize(raw)
	if err != nil {
		return nil, err
	}
	fused, err := field.Fuse(cleaned, mapping)
	if err != nil {
		return nil, err
	}

	// Weather branch: parse messages, then aggregate.
	parsed, err := weather.NewParser(rules).ProcessMessages(messages)
	if err != nil {
		return nil, err
	}
	means, err := weather.Means(parsed, weather.CanonicalKinds)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline: run complete",
		zap.Int("field_rows", fused.Len()),
		zap.Int("weather_rows", parsed.Len()),
	)
	return &Result{RunID: runID, Field: fused, Weather: parsed, Means: means}, nil
}

// Export writes the fused field table and the parsed weather table as CSV
// files under the configured directory. These files are the persisted
// contract other tooling consumes.
func (r *Result) Export(cfg config.ExportConfig) error {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return eris.Wrap(err, "pipeline: create export dir")
	}
	for _, f := range []struct {
		name string
		t    *table.Table
	}{
		{cfg.FieldFile, r.Field},
		{cfg.WeatherFile, r.Weather},
	} {
		path := filepath.Join(cfg.Dir, f.name)
		out, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "pipeline: create %s", path)
		}
		if err := f.t.WriteCSV(out); err != nil {
			out.Close()
			return eris.Wrapf(err, "pipeline: export %s", path)
		}
		if err := out.Close(); err != nil {
			return eris.Wrapf(err, "pipeline: close %s", path)
		}
		zap.L().Info("pipeline: exported table",
			zap.String("path", path),
			zap.Int("rows", f.t.Len()),
		)
	}
	return nil
}
