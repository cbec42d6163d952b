// Package table provides the in-memory table that every pipeline stage
// consumes and produces. Columns are ordered; cells are string, float64, or
// nil (missing).
package table

import (
	"math"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
)

// Row maps column name to cell value.
type Row map[string]any

// Table is an ordered-column collection of rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a row. Columns absent from the row read back as nil.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy: mutating the clone's rows leaves the receiver
// untouched.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows = append(out.Rows, cp)
	}
	return out
}

// RenameColumn renames old to new in place, keeping the column position.
// It fails if old does not exist or new already does, so a careless rename
// can never silently overwrite a column.
func (t *Table) RenameColumn(old, new string) error {
	if t.HasColumn(new) {
		return eris.Errorf("table: rename target %q already exists", new)
	}
	idx := -1
	for i, c := range t.Columns {
		if c == old {
			idx = i
			break
		}
	}
	if idx < 0 {
		return eris.Errorf("table: no such column %q", old)
	}
	t.Columns[idx] = new
	for _, row := range t.Rows {
		if v, ok := row[old]; ok {
			row[new] = v
			delete(row, old)
		}
	}
	return nil
}

// DropColumn removes the named column and its cells. Dropping a column that
// does not exist is a no-op.
func (t *Table) DropColumn(name string) {
	for i, c := range t.Columns {
		if c == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			for _, row := range t.Rows {
				delete(row, name)
			}
			return
		}
	}
}

// Column returns every cell of the named column in row order.
func (t *Table) Column(name string) ([]any, error) {
	if !t.HasColumn(name) {
		return nil, eris.Errorf("table: no such column %q", name)
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[name]
	}
	return out, nil
}

// LeftJoin joins right onto left by the named key column. Every left row is
// retained; right columns (minus the key) are appended and filled from the
// first right row with a matching key, or nil when none matches. Right rows
// with no matching left row are dropped.
func LeftJoin(left, right *Table, key string) (*Table, error) {
	if !left.HasColumn(key) {
		return nil, eris.Errorf("table: join key %q missing from left table", key)
	}
	if !right.HasColumn(key) {
		return nil, eris.Errorf("table: join key %q missing from right table", key)
	}

	var extra []string
	for _, c := range right.Columns {
		if c != key {
			extra = append(extra, c)
		}
	}

	index := make(map[string]Row, len(right.Rows))
	for _, row := range right.Rows {
		k := Key(row[key])
		if _, seen := index[k]; !seen {
			index[k] = row
		}
	}

	out := New(append(append([]string(nil), left.Columns...), extra...)...)
	out.Rows = make([]Row, 0, len(left.Rows))
	for _, row := range left.Rows {
		joined := make(Row, len(row)+len(extra))
		for k, v := range row {
			joined[k] = v
		}
		match := index[Key(row[key])]
		for _, c := range extra {
			if match != nil {
				joined[c] = match[c]
			} else {
				joined[c] = nil
			}
		}
		out.Rows = append(out.Rows, joined)
	}
	return out, nil
}

// Float coerces a cell to float64. Strings are parsed; nil and unparseable
// values report false.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Key normalizes a cell for use as a join or group key. Numeric cells format
// without a trailing fraction so SQL int64/float64 keys line up with CSV
// string keys.
func Key(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	default:
		return ""
	}
}

// SortKeys sorts group keys ascending, numerically when every key parses as
// a number, lexically otherwise.
func SortKeys(keys []string) {
	numeric := true
	vals := make(map[string]float64, len(keys))
	for _, k := range keys {
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			numeric = false
			break
		}
		vals[k] = f
	}
	if numeric {
		sort.Slice(keys, func(i, j int) bool { return vals[keys[i]] < vals[keys[j]] })
		return
	}
	sort.Strings(keys)
}
