package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: claim lookups filter by itemId constantly; index the
	// JSON path so listForItem and findForUser don't scan the table.
	`CREATE INDEX IF NOT EXISTS idx_documents_claim_item
	     ON documents(json_extract(fields, '$.itemId')) WHERE collection = 'claims'`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
