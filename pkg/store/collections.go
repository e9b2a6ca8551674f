package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateCollection inserts a collection and fills in the assigned id
func (s *SQLStore) CreateCollection(ctx context.Context, collection *Collection) error {
	query := `INSERT INTO collections (name) VALUES ($1) RETURNING id`
	if err := s.db.QueryRowContext(ctx, query, collection.Name).Scan(&collection.ID); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// GetCollection retrieves one collection with its nested courses, within the
// caller's visibility filter. For a restricted filter the collection is only
// visible when it contains at least one course owned by the filtered user,
// and the nested course list carries the same owner restriction.
func (s *SQLStore) GetCollection(ctx context.Context, id int64, filter CollectionFilter) (*Collection, error) {
	collections, err := s.queryCollections(ctx, filter, &id)
	if err != nil {
		return nil, err
	}
	if len(collections) == 0 {
		return nil, ErrNotFound
	}
	return collections[0], nil
}

// ListCollections returns all visible collections with nested courses
func (s *SQLStore) ListCollections(ctx context.Context, filter CollectionFilter) ([]*Collection, error) {
	return s.queryCollections(ctx, filter, nil)
}

// queryCollections assembles collections and their courses from one joined
// query. The existential visibility check and the nested-course restriction
// use the same owner id so collection reads cannot widen course visibility.
func (s *SQLStore) queryCollections(ctx context.Context, filter CollectionFilter, id *int64) ([]*Collection, error) {
	query := `
		SELECT col.id, col.name, c.id, c.title, c.description, c.duration, c.outcome, c.user_id, c.collection_id
		FROM collections col
		LEFT JOIN courses c ON c.collection_id = col.id
	`
	args := []interface{}{}
	where := []string{}

	if filter.OwnerCourseUserID != nil {
		args = append(args, *filter.OwnerCourseUserID)
		owner := fmt.Sprintf("$%d", len(args))
		query = `
		SELECT col.id, col.name, c.id, c.title, c.description, c.duration, c.outcome, c.user_id, c.collection_id
		FROM collections col
		LEFT JOIN courses c ON c.collection_id = col.id AND c.user_id = ` + owner + `
		`
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM courses oc WHERE oc.collection_id = col.id AND oc.user_id = %s)", owner))
	}

	if id != nil {
		args = append(args, *id)
		where = append(where, fmt.Sprintf("col.id = $%d", len(args)))
	}

	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY col.id, c.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	collections := []*Collection{}
	byID := map[int64]*Collection{}

	for rows.Next() {
		var colID int64
		var colName string
		var courseID, ownerID, collectionID sql.NullInt64
		var title, description, duration, outcome sql.NullString

		if err := rows.Scan(&colID, &colName, &courseID, &title, &description, &duration, &outcome, &ownerID, &collectionID); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}

		col, ok := byID[colID]
		if !ok {
			col = &Collection{ID: colID, Name: colName, Courses: []Course{}}
			byID[colID] = col
			collections = append(collections, col)
		}

		// LEFT JOIN produces a null course row for empty collections
		if !courseID.Valid {
			continue
		}
		course := Course{
			ID:          courseID.Int64,
			Title:       title.String,
			Description: description.String,
			Duration:    duration.String,
			Outcome:     outcome.String,
			OwnerUserID: ownerID.Int64,
		}
		if collectionID.Valid {
			course.CollectionID = &collectionID.Int64
		}
		col.Courses = append(col.Courses, course)
	}
	return collections, rows.Err()
}
