// Package docstore provides a minimal document store over named
// collections: create, point get, equality-filtered queries, and
// last-write-wins field updates. It mirrors the subset of a hosted
// document database the application actually uses, with one deliberate
// extension: UpdateIf, a single-field compare-and-swap, so callers can
// turn racy status overwrites into explicit conflicts.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// ServerTimestamp marks a field whose value is assigned by the store at
// write time.
type ServerTimestamp struct{}

// Fields is a set of named document field values.
type Fields map[string]any

// Filter is an equality predicate on a single field.
type Filter struct {
	Field string
	Value any
}

// Query selects documents in a collection. Filters are ANDed together;
// only equality is supported. OrderBy sorts by a field, Limit truncates
// the result.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Doc is a stored document: its id plus the raw field data.
type Doc struct {
	ID   string
	Data []byte
}

// Decode unmarshals the document fields into v. The document id is not
// part of the fields; callers assign it separately.
func (d *Doc) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// ErrNotFound is returned by Update, UpdateIf and Delete when the
// document does not exist. Point reads return a nil document instead.
var ErrNotFound = errors.New("docstore: document not found")

// Client is the document store capability consumed by the repositories.
// No method spans more than one document; there is no cross-document
// transaction here, and the workflow layer is written not to need one.
type Client interface {
	// Create inserts a new document and returns its assigned id.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Get returns a document by id, or nil when absent.
	Get(ctx context.Context, collection, id string) (*Doc, error)
	// Query returns the documents matching q.
	Query(ctx context.Context, collection string, q Query) ([]Doc, error)
	// Update overwrites the named fields unconditionally, leaving the
	// rest of the document untouched.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// UpdateIf overwrites the named fields only when cond currently
	// holds, reporting whether the write was applied.
	UpdateIf(ctx context.Context, collection, id string, fields Fields, cond Filter) (bool, error)
	// Delete removes a document.
	Delete(ctx context.Context, collection, id string) error
}
