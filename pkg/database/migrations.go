package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreateGINIndexes creates full-text search GIN indexes for PostgreSQL.
// These enable efficient search over requirement text on the dashboard.
func CreateGINIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_conversations_requirement_gin
		ON conversations USING gin(to_tsvector('english', requirement))`)
	if err != nil {
		return fmt.Errorf("failed to create requirement GIN index: %w", err)
	}

	return nil
}
