package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateUser inserts a user and fills in the assigned id
func (s *SQLStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.Role).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id
func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT id, username, password_hash, role FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by unique username
func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, password_hash, role FROM users WHERE username = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

// ListUsers returns all users ordered by id
func (s *SQLStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `SELECT id, username, password_hash, role FROM users ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (s *SQLStore) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
