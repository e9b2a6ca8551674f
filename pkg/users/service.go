package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coursehq/courseapi/pkg/apperrors"
	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/authz"
	"github.com/coursehq/courseapi/pkg/cache"
	"github.com/coursehq/courseapi/pkg/observability"
	"github.com/coursehq/courseapi/pkg/schema"
	"github.com/coursehq/courseapi/pkg/store"
)

// RegisterSuccessMessage is returned to callers after a successful signup
const RegisterSuccessMessage = "User registered successfully!"

// Service implements the user operations
type Service struct {
	store    store.UserStore
	cache    cache.Cache
	schema   *schema.Registry
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
	logger   *observability.Logger
	metrics  *observability.Metrics
	cacheTTL time.Duration
}

// NewService creates a user service
func NewService(st store.UserStore, c cache.Cache, reg *schema.Registry, tokens *auth.TokenManager, hasher *auth.PasswordHasher, logger *observability.Logger, metrics *observability.Metrics, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &Service{
		store:    st,
		cache:    c,
		schema:   reg,
		tokens:   tokens,
		hasher:   hasher,
		logger:   logger,
		metrics:  metrics,
		cacheTTL: cacheTTL,
	}
}

// RegisterInput carries a signup request. Role is accepted for validation
// but never stored; every new account starts as USER.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Credentials carries a login request
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new USER account. All field validations are collected
// and reported together.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*store.User, error) {
	if err := s.validateRegistration(input); err != nil {
		return nil, err
	}

	// Friendly duplicate check first; the unique constraint below still
	// backstops the race
	if _, err := s.store.GetUserByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.Conflict("Username already taken.")
	} else if !errors.Is(err, store.ErrNotFound) {
		s.metrics.StoreErrorsTotal.WithLabelValues("register_user").Inc()
		return nil, apperrors.Internal("failed to check username", err)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &store.User{
		Username:     input.Username,
		PasswordHash: digest,
		Role:         auth.RoleUser,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Conflict("Username already taken.")
		}
		s.metrics.StoreErrorsTotal.WithLabelValues("register_user").Inc()
		return nil, apperrors.Internal("failed to create user", err)
	}

	s.metrics.MutationsTotal.WithLabelValues("user", "register").Inc()
	s.invalidateListings(ctx)
	return user, nil
}

func (s *Service) validateRegistration(input RegisterInput) error {
	op := s.schema.MustGet(schema.OpRegisterUser)
	var messages []string

	username, _ := op.FieldByName("username")
	if input.Username == "" {
		messages = append(messages, "Username is required")
	} else if len(input.Username) < username.MinLength || len(input.Username) > username.MaxLength {
		messages = append(messages, fmt.Sprintf("Username must be between %d and %d characters", username.MinLength, username.MaxLength))
	}

	password, _ := op.FieldByName("password")
	if input.Password == "" {
		messages = append(messages, "Password is required")
	} else if len(input.Password) < password.MinLength || len(input.Password) > password.MaxLength {
		messages = append(messages, fmt.Sprintf("Password must be between %d and %d characters", password.MinLength, password.MaxLength))
	}

	if input.Role != "" && !auth.Role(input.Role).Valid() {
		messages = append(messages, "Role must be either ADMIN or USER")
	}

	if len(messages) > 0 {
		return apperrors.Validation(messages...)
	}
	return nil
}

// Login verifies credentials and returns a signed bearer token. The two
// failure messages are distinct on purpose, matching the API contract.
func (s *Service) Login(ctx context.Context, creds Credentials) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, creds.Username)
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.AuthFailuresTotal.WithLabelValues("login").Inc()
		return "", apperrors.Unauthorized("invalid username.")
	}
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("login").Inc()
		return "", apperrors.Internal("failed to look up user", err)
	}

	if !s.hasher.Compare(creds.Password, user.PasswordHash) {
		s.metrics.AuthFailuresTotal.WithLabelValues("login").Inc()
		return "", apperrors.Unauthorized("invalid password.")
	}

	token, err := s.tokens.Issue(auth.Principal{ID: user.ID, Role: user.Role})
	if err != nil {
		return "", apperrors.Internal("failed to issue token", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")
	return token, nil
}

// List returns all users. Admin only, served from the query cache when
// possible.
func (s *Service) List(ctx context.Context, p *auth.Principal) ([]*store.User, error) {
	if err := authz.Check(p, s.schema.RequiredRoles(schema.OpListUsers)); err != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues("list_users").Inc()
		return nil, err
	}

	if data, ok := s.cache.Get(ctx, cache.UsersAllKey); ok {
		var users []*store.User
		if err := json.Unmarshal(data, &users); err == nil {
			s.metrics.CacheHitsTotal.WithLabelValues("users").Inc()
			return users, nil
		}
	}
	s.metrics.CacheMissesTotal.WithLabelValues("users").Inc()

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.metrics.StoreErrorsTotal.WithLabelValues("list_users").Inc()
		return nil, apperrors.Internal("failed to list users", err)
	}

	if data, err := json.Marshal(users); err == nil {
		s.cache.Set(ctx, cache.UsersAllKey, data, s.cacheTTL)
	}
	return users, nil
}

func (s *Service) invalidateListings(ctx context.Context) {
	if ctx.Err() != nil {
		s.logger.Warn("skipping cache invalidation: request cancelled")
		return
	}
	if _, err := s.cache.Invalidate(ctx, cache.UserPrefix); err != nil {
		s.logger.WithError(err).Warn("user cache invalidation failed")
	}
}
