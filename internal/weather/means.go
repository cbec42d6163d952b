package weather

import (
	"github.com/rotisserie/eris"

	"github.com/agrisense/survey-cli/internal/table"
)

// Means computes per-station mean values for each measurement kind from a
// parsed weather table. The result is wide form: one row per station,
// ordered ascending, one column per kind. A station with no observations
// for a kind gets nil, never zero. Rows whose Measurement or Value is nil
// were never parsed and are skipped.
func Means(t *table.Table, kinds []Kind) (*table.Table, error) {
	for _, col := range []string{ColStation, ColMeasurement, ColValue} {
		if !t.HasColumn(col) {
			return nil, eris.Errorf("weather: missing column %q", col)
		}
	}

	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string]map[Kind]*acc)
	for _, row := range t.Rows {
		if row[ColMeasurement] == nil || row[ColValue] == nil {
			continue
		}
		value, ok := table.Float(row[ColValue])
		if !ok {
			continue
		}
		station := table.Key(row[ColStation])
		kind := Kind(row[ColMeasurement].(string))
		if groups[station] == nil {
			groups[station] = make(map[Kind]*acc)
		}
		if groups[station][kind] == nil {
			groups[station][kind] = &acc{}
		}
		groups[station][kind].sum += value
		groups[station][kind].count++
	}

	stations := make([]string, 0, len(groups))
	for s := range groups {
		stations = append(stations, s)
	}
	table.SortKeys(stations)

	cols := []string{ColStation}
	for _, k := range kinds {
		cols = append(cols, string(k))
	}
	out := table.New(cols...)
	for _, station := range stations {
		row := table.Row{ColStation: station}
		for _, k := range kinds {
			if a := groups[station][k]; a != nil {
				row[string(k)] = a.sum / float64(a.count)
			} else {
				row[string(k)] = nil
			}
		}
		out.Append(row)
	}
	return out, nil
}
