package store

import (
	"context"

	"github.com/coursehq/courseapi/pkg/auth"
)

// User is a registered account. PasswordHash is never serialized outward.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
}

// Course is owned by exactly one user and optionally belongs to a collection
type Course struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Duration     string `json:"duration"`
	Outcome      string `json:"outcome,omitempty"`
	OwnerUserID  int64  `json:"userId"`
	CollectionID *int64 `json:"collectionId,omitempty"`
}

// Collection groups courses. Collections are not owned by a user; visibility
// for non-admins is derived from course ownership.
type Collection struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Courses []Course `json:"courses,omitempty"`
}

// SortOrder controls listing order by id
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// CourseFilter restricts a course query. A nil OwnerID means unrestricted
// (the admin view).
type CourseFilter struct {
	OwnerID *int64
}

// ListOptions bounds and orders a listing query
type ListOptions struct {
	Sort  SortOrder
	Limit int
}

// DefaultLimit applies when a caller does not request a limit
const DefaultLimit = 100

// Normalize fills unset options with defaults
func (o ListOptions) Normalize() ListOptions {
	if o.Sort != SortDesc {
		o.Sort = SortAsc
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// CollectionFilter restricts a collection query. A nil OwnerCourseUserID
// means unrestricted; otherwise only collections containing at least one
// course owned by that user are visible, and nested courses are limited to
// that owner's courses.
type CollectionFilter struct {
	OwnerCourseUserID *int64
}

// CourseUpdate carries the partial fields of a course update. Nil fields are
// left untouched.
type CourseUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	Outcome     *string `json:"outcome,omitempty"`
}

// Empty reports whether the update would change nothing
func (u CourseUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Duration == nil && u.Outcome == nil
}

// UserStore persists users
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
}

// CourseStore persists courses
type CourseStore interface {
	CreateCourse(ctx context.Context, course *Course) error
	GetCourse(ctx context.Context, id int64, filter CourseFilter) (*Course, error)
	ListCourses(ctx context.Context, filter CourseFilter, opts ListOptions) ([]*Course, error)
	// UpdateCourse applies the partial update and returns the number of rows
	// changed; zero means the row vanished between the ownership check and
	// the mutation.
	UpdateCourse(ctx context.Context, id int64, update CourseUpdate) (int64, error)
	DeleteCourse(ctx context.Context, id int64) (int64, error)
}

// CollectionStore persists collections
type CollectionStore interface {
	CreateCollection(ctx context.Context, collection *Collection) error
	GetCollection(ctx context.Context, id int64, filter CollectionFilter) (*Collection, error)
	ListCollections(ctx context.Context, filter CollectionFilter) ([]*Collection, error)
}

// Store is the full data access surface
type Store interface {
	UserStore
	CourseStore
	CollectionStore

	Migrate(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Close() error
}
