package database

import (
	"context"
	"fmt"
)

// Row is one retrieved tuple keyed by column name. The service passes rows
// through without interpreting columns.
type Row map[string]any

// selectRows runs a parameterized SELECT and materializes every row.
// Args are always bound, never formatted into the query text.
func (db *DB) selectRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = columnValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// columnValue converts driver values into something encoding/json renders
// as the stored value. TEXT can arrive as []byte, which would otherwise be
// emitted as base64.
func columnValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// nullableString binds an optional parameter: nil binds SQL NULL
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
