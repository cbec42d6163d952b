package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := ",Field_ID,Weather_station\n0,1,4\n1,2,\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Field_ID", "Weather_station"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "4", tbl.Rows[0]["Weather_station"])
	assert.Nil(t, tbl.Rows[1]["Weather_station"])
}

func TestReadCSVEmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestWriteCSV(t *testing.T) {
	tbl := New("Field_ID", "Elevation", "Crop_type")
	tbl.Append(Row{"Field_ID": "1", "Elevation": 604.0, "Crop_type": "wheat"})
	tbl.Append(Row{"Field_ID": "2", "Elevation": nil, "Crop_type": "tea"})

	var b strings.Builder
	require.NoError(t, tbl.WriteCSV(&b))

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Field_ID,Elevation,Crop_type", lines[0])
	assert.Equal(t, "1,604,wheat", lines[1])
	assert.Equal(t, "2,,tea", lines[2])
}
