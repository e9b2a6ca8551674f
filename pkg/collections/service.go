package collections

import (
	"context"
	"errors"

	"github.com/coursehq/courseapi/pkg/apperrors"
	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/authz"
	"github.com/coursehq/courseapi/pkg/observability"
	"github.com/coursehq/courseapi/pkg/schema"
	"github.com/coursehq/courseapi/pkg/store"
)

// Service implements the collection read operations. Collections have no
// mutation surface, so the service carries no cache: listings are assembled
// per request with the caller's visibility filter baked into the query.
type Service struct {
	store   store.CollectionStore
	schema  *schema.Registry
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates a collection service
func NewService(st store.CollectionStore, reg *schema.Registry, logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{store: st, schema: reg, logger: logger, metrics: metrics}
}

// List returns the collections visible to the principal
func (s *Service) List(ctx context.Context, p *auth.Principal) ([]*store.Collection, error) {
	if err := authz.Check(p, s.schema.RequiredRoles(schema.OpListCollections)); err != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues("list_collections").Inc()
		return nil, err
	}

	collections, err := s.store.ListCollections(ctx, authz.CollectionFilter(p))
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("list_collections").Inc()
		return nil, apperrors.Internal("failed to list collections", err)
	}
	return collections, nil
}

// Get returns one collection if it is visible to the principal. A collection
// that exists but holds none of the caller's courses reads as NotFound.
func (s *Service) Get(ctx context.Context, p *auth.Principal, id int64) (*store.Collection, error) {
	if err := authz.Check(p, s.schema.RequiredRoles(schema.OpGetCollection)); err != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues("get_collection").Inc()
		return nil, err
	}

	collection, err := s.store.GetCollection(ctx, id, authz.CollectionFilter(p))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("collection with id %d not found", id)
	}
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("get_collection").Inc()
		return nil, apperrors.Internal("failed to get collection", err)
	}
	return collection, nil
}
