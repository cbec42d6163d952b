package table

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
)

// ReadCSV decodes a header-prefixed CSV stream into a table. All cells come
// back as strings; empty cells come back as nil.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("csv: empty input, no header row")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	t := New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) && record[i] != "" {
				row[col] = record[i]
			} else {
				row[col] = nil
			}
		}
		t.Append(row)
	}
}

// WriteCSV encodes the table as delimited text: header row first, one record
// per row, nil cells as empty fields.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = formatCell(row[col])
		}
		if err := writer.Write(record); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "csv: flush")
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}
