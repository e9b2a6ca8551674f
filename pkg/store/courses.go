package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateCourse inserts a course and fills in the assigned id
func (s *SQLStore) CreateCourse(ctx context.Context, course *Course) error {
	query := `
		INSERT INTO courses (title, description, duration, outcome, user_id, collection_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		course.Title,
		course.Description,
		course.Duration,
		course.Outcome,
		course.OwnerUserID,
		course.CollectionID,
	).Scan(&course.ID)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetCourse retrieves one course within the caller's visibility filter. The
// owner restriction is part of the WHERE clause, so a row outside the filter
// is indistinguishable from a missing row.
func (s *SQLStore) GetCourse(ctx context.Context, id int64, filter CourseFilter) (*Course, error) {
	query := `
		SELECT id, title, description, duration, outcome, user_id, collection_id
		FROM courses
		WHERE id = $1
	`
	args := []interface{}{id}
	if filter.OwnerID != nil {
		query += ` AND user_id = $2`
		args = append(args, *filter.OwnerID)
	}

	var c Course
	var collectionID sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.Title, &c.Description, &c.Duration, &c.Outcome, &c.OwnerUserID, &collectionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if collectionID.Valid {
		c.CollectionID = &collectionID.Int64
	}
	return &c, nil
}

// ListCourses returns courses matching the filter, ordered by id
func (s *SQLStore) ListCourses(ctx context.Context, filter CourseFilter, opts ListOptions) ([]*Course, error) {
	opts = opts.Normalize()

	query := `
		SELECT id, title, description, duration, outcome, user_id, collection_id
		FROM courses
	`
	args := []interface{}{}
	if filter.OwnerID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *filter.OwnerID)
	}

	// Sort direction is validated enum text, never caller input
	direction := "ASC"
	if opts.Sort == SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY id %s LIMIT $%d", direction, len(args)+1)
	args = append(args, opts.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []*Course{}
	for rows.Next() {
		var c Course
		var collectionID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Duration, &c.Outcome, &c.OwnerUserID, &collectionID); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		if collectionID.Valid {
			c.CollectionID = &collectionID.Int64
		}
		courses = append(courses, &c)
	}
	return courses, rows.Err()
}

// UpdateCourse applies the non-nil fields of update and returns the number
// of rows changed. Zero rows means the course disappeared between the
// caller's ownership check and this mutation.
func (s *SQLStore) UpdateCourse(ctx context.Context, id int64, update CourseUpdate) (int64, error) {
	set := []string{}
	args := []interface{}{}

	appendField := func(column string, value *string) {
		if value != nil {
			set = append(set, fmt.Sprintf("%s = $%d", column, len(args)+1))
			args = append(args, *value)
		}
	}
	appendField("title", update.Title)
	appendField("description", update.Description)
	appendField("duration", update.Duration)
	appendField("outcome", update.Outcome)

	if len(set) == 0 {
		return 0, fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf("UPDATE courses SET %s WHERE id = $%d", strings.Join(set, ", "), len(args)+1)
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

// DeleteCourse removes a course and returns the number of rows deleted
func (s *SQLStore) DeleteCourse(ctx context.Context, id int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}
