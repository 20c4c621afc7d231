package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Domain entities (users, items,
// claims, threads) live as JSON documents in a single table; the
// partial expression indexes give the document layer its
// per-collection uniqueness and lookup guarantees.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id         TEXT NOT NULL,
    fields     TEXT NOT NULL CHECK (json_valid(fields)),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (collection, id)
);

-- Exactly one thread per claim, enforced by the store rather than only
-- by the check-then-act in the thread repository.
CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_thread_claim
    ON documents(json_extract(fields, '$.claimId')) WHERE collection = 'threads';

CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_user_email
    ON documents(json_extract(fields, '$.email')) WHERE collection = 'users';

CREATE INDEX IF NOT EXISTS idx_documents_claim_item
    ON documents(json_extract(fields, '$.itemId')) WHERE collection = 'claims';

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
