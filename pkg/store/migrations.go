package store

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist. Statements are dialect
// specific because the drivers disagree on auto-increment syntax.
func (s *SQLStore) Migrate(ctx context.Context) error {
	var statements []string
	switch s.driver {
	case DriverPostgres:
		statements = postgresMigrations
	case DriverSQLite:
		statements = sqliteMigrations
	default:
		return fmt.Errorf("no migrations for driver: %s", s.driver)
	}

	for i, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER'
	)`,
	`CREATE TABLE IF NOT EXISTS collections (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration TEXT NOT NULL,
		outcome TEXT NOT NULL DEFAULT '',
		user_id BIGINT NOT NULL REFERENCES users(id),
		collection_id BIGINT REFERENCES collections(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_user_id ON courses(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_collection_id ON courses(collection_id)`,
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER'
	)`,
	`CREATE TABLE IF NOT EXISTS collections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration TEXT NOT NULL,
		outcome TEXT NOT NULL DEFAULT '',
		user_id INTEGER NOT NULL REFERENCES users(id),
		collection_id INTEGER REFERENCES collections(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_user_id ON courses(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_collection_id ON courses(collection_id)`,
}
