package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timeLayout is a fixed-width RFC 3339 variant. The fixed nanosecond
// fraction keeps encoded timestamps lexicographically ordered, which
// the query layer relies on for ORDER BY over JSON fields.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite implements Client over a single documents table, one row per
// document, fields stored as JSON.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite returns a document store backed by db.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

// Create inserts a new document and returns its assigned id.
func (s *SQLite) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	id := uuid.NewString()
	data, err := encodeFields(fields, s.now())
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields) VALUES (?, ?, ?)`,
		collection, id, string(data),
	)
	if err != nil {
		return "", fmt.Errorf("creating document in %s: %w", collection, err)
	}
	return id, nil
}

// Get returns a document by id, or nil when absent.
func (s *SQLite) Get(ctx context.Context, collection, id string) (*Doc, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %s/%s: %w", collection, id, err)
	}
	return &Doc{ID: id, Data: []byte(data)}, nil
}

// Query returns the documents matching q.
func (s *SQLite) Query(ctx context.Context, collection string, q Query) ([]Doc, error) {
	query := `SELECT id, fields FROM documents WHERE collection = ?`
	args := []any{collection}

	for _, f := range q.Filters {
		query += ` AND json_extract(fields, ?) = ?`
		args = append(args, fieldPath(f.Field), encodeValue(f.Value))
	}
	if q.OrderBy != "" {
		query += ` ORDER BY json_extract(fields, ?)`
		args = append(args, fieldPath(q.OrderBy))
		if q.Desc {
			query += ` DESC`
		}
	}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Doc
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, Doc{ID: id, Data: []byte(data)})
	}
	return docs, rows.Err()
}

// Update overwrites the named fields, leaving the rest of the document
// untouched. Last writer wins.
func (s *SQLite) Update(ctx context.Context, collection, id string, fields Fields) error {
	data, err := encodeFields(fields, s.now())
	if err != nil {
		return fmt.Errorf("encoding update: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET fields = json_patch(fields, ?), updated_at = CURRENT_TIMESTAMP
		 WHERE collection = ? AND id = ?`,
		string(data), collection, id,
	)
	if err != nil {
		return fmt.Errorf("updating document %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating document %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateIf overwrites the named fields only when cond currently holds.
// The condition and the write happen in a single statement, so this is
// a real compare-and-swap against concurrent writers.
func (s *SQLite) UpdateIf(ctx context.Context, collection, id string, fields Fields, cond Filter) (bool, error) {
	data, err := encodeFields(fields, s.now())
	if err != nil {
		return false, fmt.Errorf("encoding update: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET fields = json_patch(fields, ?), updated_at = CURRENT_TIMESTAMP
		 WHERE collection = ? AND id = ? AND json_extract(fields, ?) = ?`,
		string(data), collection, id, fieldPath(cond.Field), encodeValue(cond.Value),
	)
	if err != nil {
		return false, fmt.Errorf("conditionally updating document %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("conditionally updating document %s/%s: %w", collection, id, err)
	}
	if n > 0 {
		return true, nil
	}

	// Distinguish "condition failed" from "no such document".
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, ErrNotFound
	}
	return false, nil
}

// Delete removes a document.
func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("deleting document %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique index violation.
// The SQLite driver exposes constraint failures as flat error strings.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func fieldPath(field string) string {
	return "$." + field
}

// encodeFields resolves server timestamps and normalizes time values so
// every stored timestamp uses the same sortable representation.
func encodeFields(fields Fields, now time.Time) ([]byte, error) {
	stamp := now.UTC().Format(timeLayout)
	resolved := make(map[string]any, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case ServerTimestamp:
			resolved[k] = stamp
		case time.Time:
			resolved[k] = t.UTC().Format(timeLayout)
		default:
			resolved[k] = v
		}
	}
	return json.Marshal(resolved)
}

// encodeValue normalizes a filter value the same way encodeFields
// normalizes stored values.
func encodeValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(timeLayout)
	}
	return v
}
