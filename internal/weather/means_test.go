package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/survey-cli/internal/table"
)

func parsedTable() *table.Table {
	t := table.New(ColStation, ColMessage, ColMeasurement, ColValue)
	t.Append(table.Row{ColStation: "2", ColMeasurement: "Temperature", ColValue: 20.0})
	t.Append(table.Row{ColStation: "2", ColMeasurement: "Temperature", ColValue: 24.0})
	t.Append(table.Row{ColStation: "10", ColMeasurement: "Rainfall", ColValue: 5.0})
	t.Append(table.Row{ColStation: "2", ColMeasurement: nil, ColValue: nil}) // unparsed row
	return t
}

func TestMeans(t *testing.T) {
	out, err := Means(parsedTable(), CanonicalKinds)
	require.NoError(t, err)

	// Wide form, stations ascending numerically, one column per kind.
	assert.Equal(t, []string{ColStation, "Temperature", "Rainfall", "Pollution_level"}, out.Columns)
	require.Equal(t, 2, out.Len())

	assert.Equal(t, "2", out.Rows[0][ColStation])
	assert.InDelta(t, 22.0, out.Rows[0]["Temperature"].(float64), 1e-9)
	assert.Nil(t, out.Rows[0]["Rainfall"]) // no observations: nil, not zero
	assert.Nil(t, out.Rows[0]["Pollution_level"])

	assert.Equal(t, "10", out.Rows[1][ColStation])
	assert.InDelta(t, 5.0, out.Rows[1]["Rainfall"].(float64), 1e-9)
}

func TestMeansSkipsUnparsedRows(t *testing.T) {
	in := table.New(ColStation, ColMeasurement, ColValue)
	in.Append(table.Row{ColStation: "1", ColMeasurement: nil, ColValue: nil})

	out, err := Means(in, CanonicalKinds)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestMeansMissingColumnFails(t *testing.T) {
	in := table.New(ColStation, ColMessage)
	_, err := Means(in, CanonicalKinds)
	require.Error(t, err)
}
