package db

import (
	"context"
	"fmt"
)

// Written to run unchanged on sqlite, postgres and mysql.
const schema = `CREATE TABLE IF NOT EXISTS action_history (
	id          VARCHAR(32)  PRIMARY KEY,
	type        VARCHAR(128) NOT NULL,
	contents    TEXT         NOT NULL,
	from_server BOOLEAN      NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMP    NOT NULL
)`

// Migrate creates the tables the server needs.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create action_history: %w", err)
	}
	return nil
}
