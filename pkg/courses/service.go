package courses

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coursehq/courseapi/pkg/apperrors"
	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/authz"
	"github.com/coursehq/courseapi/pkg/cache"
	"github.com/coursehq/courseapi/pkg/observability"
	"github.com/coursehq/courseapi/pkg/schema"
	"github.com/coursehq/courseapi/pkg/store"
)

// Service implements the course operations
type Service struct {
	store    store.CourseStore
	cache    cache.Cache
	schema   *schema.Registry
	logger   *observability.Logger
	metrics  *observability.Metrics
	cacheTTL time.Duration
}

// NewService creates a course service. Dependencies are passed in
// explicitly so the access rules stay testable without a live store.
func NewService(st store.CourseStore, c cache.Cache, reg *schema.Registry, logger *observability.Logger, metrics *observability.Metrics, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &Service{
		store:    st,
		cache:    c,
		schema:   reg,
		logger:   logger,
		metrics:  metrics,
		cacheTTL: cacheTTL,
	}
}

// CreateInput carries the fields of a new course. AssociatedUserID is
// honored only for admins; everyone else owns what they create.
type CreateInput struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Duration         string `json:"duration"`
	Outcome          string `json:"outcome"`
	CollectionID     *int64 `json:"collectionId"`
	AssociatedUserID *int64 `json:"assocatedUserId"`
}

// List returns the courses visible to the principal, serving from the query
// cache when possible
func (s *Service) List(ctx context.Context, p *auth.Principal, opts store.ListOptions) ([]*store.Course, error) {
	if err := authz.Check(p, s.schema.RequiredRoles(schema.OpListCourses)); err != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues("list_courses").Inc()
		return nil, err
	}

	filter := authz.CourseFilter(p)
	opts = opts.Normalize()
	key := cache.CourseListKey(filter, opts)

	if data, ok := s.cache.Get(ctx, key); ok {
		var courses []*store.Course
		if err := json.Unmarshal(data, &courses); err == nil {
			s.metrics.CacheHitsTotal.WithLabelValues("courses").Inc()
			s.logger.WithField("key", key).Debug("returning cached courses")
			return courses, nil
		}
		// Undecodable entries are treated as misses and overwritten below
	}
	s.metrics.CacheMissesTotal.WithLabelValues("courses").Inc()

	courses, err := s.store.ListCourses(ctx, filter, opts)
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("list_courses").Inc()
		return nil, apperrors.Internal("failed to list courses", err)
	}

	if data, err := json.Marshal(courses); err == nil {
		s.cache.Set(ctx, key, data, s.cacheTTL)
	}
	return courses, nil
}

// Get returns one course if it is visible to the principal. The visibility
// filter shapes the query, so an invisible row reads as NotFound rather
// than Forbidden.
func (s *Service) Get(ctx context.Context, p *auth.Principal, id int64) (*store.Course, error) {
	if err := authz.Check(p, s.schema.RequiredRoles(schema.OpGetCourse)); err != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues("get_course").Inc()
		return nil, err
	}

	course, err := s.store.GetCourse(ctx, id, authz.CourseFilter(p))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("course with id %d not found", id)
	}
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("get_course").Inc()
		return nil, apperrors.Internal("failed to get course", err)
	}
	return course, nil
}

// Create inserts a new course and invalidates the course listings
func (s *Service) Create(ctx context.Context, p *auth.Principal, input CreateInput) (*store.Course, error) {
	if err := authz.Check(p, s.schema.RequiredRoles(schema.OpCreateCourse)); err != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues("create_course").Inc()
		return nil, err
	}

	var messages []string
	if input.Title == "" {
		messages = append(messages, "Title is required")
	}
	if input.Duration == "" {
		messages = append(messages, "Duration is required")
	}
	if len(messages) > 0 {
		return nil, apperrors.Validation(messages...)
	}

	course := &store.Course{
		Title:        input.Title,
		Description:  input.Description,
		Duration:     input.Duration,
		Outcome:      input.Outcome,
		OwnerUserID:  authz.ResolveCourseOwner(p, input.AssociatedUserID),
		CollectionID: input.CollectionID,
	}

	if err := s.store.CreateCourse(ctx, course); err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("create_course").Inc()
		return nil, apperrors.Internal("failed to create course", err)
	}

	s.metrics.MutationsTotal.WithLabelValues("course", "create").Inc()
	s.invalidateListings(ctx)
	return course, nil
}

// Update applies a partial update to a course the principal may mutate.
// Existence is checked before ownership, so probing an id that does not
// exist reads as NotFound even for non-owners.
func (s *Service) Update(ctx context.Context, p *auth.Principal, id int64, update store.CourseUpdate) (*store.Course, error) {
	if err := authz.Check(p, s.schema.RequiredRoles(schema.OpUpdateCourse)); err != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues("update_course").Inc()
		return nil, err
	}
	if update.Empty() {
		return nil, apperrors.Validation("no fields to update")
	}

	course, err := s.store.GetCourse(ctx, id, store.CourseFilter{})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("course with id %d not found", id)
	}
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("update_course").Inc()
		return nil, apperrors.Internal("failed to get course", err)
	}

	if !authz.CanMutateCourse(p, course.OwnerUserID) {
		s.metrics.AuthFailuresTotal.WithLabelValues("update_course").Inc()
		return nil, apperrors.Forbidden("you are not authorized to update this course")
	}

	affected, err := s.store.UpdateCourse(ctx, id, update)
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("update_course").Inc()
		return nil, apperrors.Internal("failed to update course", err)
	}
	// The row may have been deleted between the ownership check and the
	// mutation; a zero-row update means it no longer exists
	if affected == 0 {
		return nil, apperrors.NotFound("course with id %d not found", id)
	}

	updated, err := s.store.GetCourse(ctx, id, store.CourseFilter{})
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("update_course").Inc()
		return nil, apperrors.Internal("failed to reload course", err)
	}

	s.metrics.MutationsTotal.WithLabelValues("course", "update").Inc()
	s.invalidateListings(ctx)
	return updated, nil
}

// Delete removes a course the principal may mutate. Deleting twice yields
// success then NotFound.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	if err := authz.Check(p, s.schema.RequiredRoles(schema.OpDeleteCourse)); err != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues("delete_course").Inc()
		return err
	}

	course, err := s.store.GetCourse(ctx, id, store.CourseFilter{})
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("course with id %d not found", id)
	}
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("delete_course").Inc()
		return apperrors.Internal("failed to get course", err)
	}

	if !authz.CanMutateCourse(p, course.OwnerUserID) {
		s.metrics.AuthFailuresTotal.WithLabelValues("delete_course").Inc()
		return apperrors.Forbidden("you are not authorized to delete this course")
	}

	affected, err := s.store.DeleteCourse(ctx, id)
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("delete_course").Inc()
		return apperrors.Internal("failed to delete course", err)
	}
	if affected == 0 {
		return apperrors.NotFound("course with id %d not found", id)
	}

	s.metrics.MutationsTotal.WithLabelValues("course", "delete").Inc()
	s.invalidateListings(ctx)
	return nil
}

// invalidateListings drops every cached course listing. Over-invalidation
// by prefix is deliberate: both the owner's filtered listings and the admin
// view may have changed composition. Failures are logged, never surfaced;
// a stale entry is bounded by the cache TTL, a corrupted mutation response
// is not acceptable.
func (s *Service) invalidateListings(ctx context.Context) {
	// Do not issue further dependent calls once the caller has gone away
	if ctx.Err() != nil {
		s.logger.Warn("skipping cache invalidation: request cancelled")
		return
	}
	if _, err := s.cache.Invalidate(ctx, cache.CoursePrefix); err != nil {
		s.logger.WithError(err).Warn("course cache invalidation failed")
	}
}
