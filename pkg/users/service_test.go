package users

import (
	"context"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehq/courseapi/pkg/apperrors"
	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/cache"
	"github.com/coursehq/courseapi/pkg/observability"
	"github.com/coursehq/courseapi/pkg/schema"
	"github.com/coursehq/courseapi/pkg/store"
)

type fakeUserStore struct {
	nextID    int64
	byName    map[string]*store.User
	listCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, byName: make(map[string]*store.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *store.User) error {
	if _, ok := f.byName[user.Username]; ok {
		return store.ErrDuplicate
	}
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.byName[user.Username] = &copied
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	for _, user := range f.byName {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	user, ok := f.byName[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]*store.User, error) {
	f.listCalls++
	var out []*store.User
	for _, user := range f.byName {
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserStore) {
	t.Helper()

	st := newFakeUserStore()
	c, err := cache.NewMemoryCache(64, 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	// min cost keeps the hashing fast under test
	hasher := auth.NewPasswordHasher(4)

	svc := NewService(st, c, schema.Assemble(), tokens, hasher, logger, observability.NewMetrics(), time.Hour)
	return svc, st
}

func TestRegisterCreatesUserRoleAccount(t *testing.T) {
	svc, st := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Password: "supersecret", Role: "ADMIN",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, user.Role, "requested role must be ignored")
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	stored, err := st.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, stored.Role)
}

func TestRegisterValidationMessages(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		input   RegisterInput
		message string
	}{
		{"missing username", RegisterInput{Password: "supersecret"}, "Username is required"},
		{"short username", RegisterInput{Username: "ab", Password: "supersecret"}, "Username must be between 3 and 30 characters"},
		{"missing password", RegisterInput{Username: "alice"}, "Password is required"},
		{"short password", RegisterInput{Username: "alice", Password: "short"}, "Password must be between 8 and 50 characters"},
		{"bad role", RegisterInput{Username: "alice", Password: "supersecret", Role: "ROOT"}, "Role must be either ADMIN or USER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestRegisterCollectsAllValidationFailures(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Username is required")
	assert.Contains(t, err.Error(), "Password is required")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "othersecret"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Username already taken.")
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), Credentials{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	p, err := auth.NewTokenManager("test-secret", time.Hour).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.ID)
	assert.Equal(t, auth.RoleUser, p.Role)
}

func TestLoginFailureMessages(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), Credentials{Username: "nobody", Password: "supersecret"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "invalid username.")

	_, err = svc.Login(context.Background(), Credentials{Username: "alice", Password: "wrongsecret"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "invalid password.")
}

func TestListIsAdminOnly(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.List(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, err = svc.List(context.Background(), &auth.Principal{ID: 7, Role: auth.RoleUser})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestListCachesAndInvalidatesOnRegister(t *testing.T) {
	svc, st := newTestService(t)
	admin := &auth.Principal{ID: 1, Role: auth.RoleAdmin}

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)

	users, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, users, 1)

	_, err = svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, st.listCalls, "second read must come from cache")

	_, err = svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "supersecret"})
	require.NoError(t, err)

	users, err = svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, users, 2, "listing after a registration must reflect it")
	assert.Equal(t, 2, st.listCalls)
}
