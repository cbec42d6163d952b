// Package ingest acquires the raw tables the pipeline consumes: field-survey
// rows from the relational store and arbitrary tabular data from remote CSV
// resources. The pipeline itself never touches a database or the network.
package ingest

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/agrisense/survey-cli/internal/table"
)

// SurveySource reads field-survey rows by running a fixed query against a
// SQLite database.
type SurveySource struct {
	db    *sql.DB
	query string
}

// OpenSurvey opens the survey database at path.
func OpenSurvey(path, query string) (*SurveySource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open survey database")
	}
	return &SurveySource{db: db, query: query}, nil
}

func (s *SurveySource) Close() error {
	return s.db.Close()
}

// Fetch runs the configured query and materializes the result set.
func (s *SurveySource) Fetch(ctx context.Context) (*table.Table, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: run survey query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read result columns")
	}

	t := table.New(cols...)
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "ingest: scan survey row")
		}
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeSQL(vals[i])
		}
		t.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "ingest: iterate survey rows")
	}

	zap.L().Info("ingest: loaded field survey data", zap.Int("rows", t.Len()))
	return t, nil
}

// normalizeSQL maps driver scan types onto the table cell vocabulary
// (string, float64, nil).
func normalizeSQL(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case int64:
		return float64(x)
	case float64:
		return x
	case string:
		return x
	case bool:
		if x {
			return float64(1)
		}
		return float64(0)
	default:
		return nil
	}
}
