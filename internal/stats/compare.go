package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agrisense/survey-cli/internal/field"
	"github.com/agrisense/survey-cli/internal/table"
	"github.com/agrisense/survey-cli/internal/weather"
)

// Verdict is the outcome of one (station, kind) comparison.
type Verdict struct {
	Station     string
	Kind        weather.Kind
	T           float64
	P           float64
	Significant bool
}

// Undefined reports whether the test was statistically undefined (too few
// observations or zero variance).
func (v Verdict) Undefined() bool {
	return math.IsNaN(v.P)
}

// Comparator pairs field-reported and station-reported samples and tests
// them for a difference in means.
type Comparator struct {
	alpha float64
	log   *zap.Logger
}

// NewComparator creates a comparator with the given significance threshold.
func NewComparator(alpha float64) *Comparator {
	return &Comparator{alpha: alpha, log: zap.L().Named("stats")}
}

// Compare runs one Welch test per (station, kind) pair and writes a report
// line for each, with a blank line after every station block. Stations are
// visited in ascending order of id. Kinds are always visited in
// weather.CanonicalKinds order; the kinds argument is accepted for
// interface compatibility but does not change the iteration order.
func (c *Comparator) Compare(fused, parsed *table.Table, kinds []weather.Kind, w io.Writer) ([]Verdict, error) {
	if !fused.HasColumn(field.ColStation) {
		return nil, eris.Errorf("stats: fused table missing column %q", field.ColStation)
	}
	for _, col := range []string{weather.ColStation, weather.ColMeasurement, weather.ColValue} {
		if !parsed.HasColumn(col) {
			return nil, eris.Errorf("stats: parsed table missing column %q", col)
		}
	}

	stations := uniqueStations(parsed)

	var verdicts []Verdict
	for _, station := range stations {
		for _, kind := range weather.CanonicalKinds {
			sampleA, err := fieldSample(fused, station, kind)
			if err != nil {
				return nil, err
			}
			sampleB := weatherSample(parsed, station, kind)

			t, p := Welch(sampleA, sampleB)
			v := Verdict{
				Station:     station,
				Kind:        kind,
				T:           t,
				P:           p,
				Significant: p <= c.alpha,
			}
			verdicts = append(verdicts, v)
			if err := writeVerdict(w, v, c.alpha); err != nil {
				return nil, err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return nil, eris.Wrap(err, "stats: write report")
		}
	}

	c.log.Info("comparison complete",
		zap.Int("stations", len(stations)),
		zap.Int("verdicts", len(verdicts)),
	)
	return verdicts, nil
}

// uniqueStations returns the distinct station ids of the parsed weather
// table in ascending order, for reproducible reporting.
func uniqueStations(parsed *table.Table) []string {
	seen := make(map[string]bool)
	var stations []string
	for _, row := range parsed.Rows {
		k := table.Key(row[weather.ColStation])
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		stations = append(stations, k)
	}
	table.SortKeys(stations)
	return stations
}

// fieldSample collects the fused field-row values of the column named after
// kind, restricted to rows governed by station. A missing measurement
// column is fatal: the field and weather vocabularies must agree.
func fieldSample(fused *table.Table, station string, kind weather.Kind) ([]float64, error) {
	if !fused.HasColumn(string(kind)) {
		return nil, eris.Errorf("stats: fused table missing measurement column %q", kind)
	}
	var sample []float64
	for _, row := range fused.Rows {
		if table.Key(row[field.ColStation]) != station {
			continue
		}
		if f, ok := table.Float(row[string(kind)]); ok {
			sample = append(sample, f)
		}
	}
	return sample, nil
}

// weatherSample collects parsed values for one station and kind. Rows with
// nil kind/value never parsed and are skipped.
func weatherSample(parsed *table.Table, station string, kind weather.Kind) []float64 {
	var sample []float64
	for _, row := range parsed.Rows {
		if table.Key(row[weather.ColStation]) != station {
			continue
		}
		if m, ok := row[weather.ColMeasurement].(string); !ok || m != string(kind) {
			continue
		}
		if f, ok := table.Float(row[weather.ColValue]); ok {
			sample = append(sample, f)
		}
	}
	return sample
}

func writeVerdict(w io.Writer, v Verdict, alpha float64) error {
	var line string
	switch {
	case v.Undefined():
		line = fmt.Sprintf("   Test undefined for %s at Station  %s (insufficient observations or zero variance).",
			v.Kind, v.Station)
	case v.Significant:
		line = fmt.Sprintf("   Significant difference in %s detected at Station  %s, (P-Value: %.5f < %v). Null hypothesis rejected.",
			v.Kind, v.Station, v.P, alpha)
	default:
		line = fmt.Sprintf("   No significant difference in %s detected at Station  %s, (P-Value: %.5f > %v). Null hypothesis not rejected.",
			v.Kind, v.Station, v.P, alpha)
	}
	_, err := fmt.Fprintln(w, line)
	return eris.Wrap(err, "stats: write report")
}
