package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/cache"
	"github.com/coursehq/courseapi/pkg/collections"
	"github.com/coursehq/courseapi/pkg/courses"
	"github.com/coursehq/courseapi/pkg/observability"
	"github.com/coursehq/courseapi/pkg/schema"
	"github.com/coursehq/courseapi/pkg/store"
	"github.com/coursehq/courseapi/pkg/users"
)

// fakeStore backs the full service stack in-memory for handler tests
type fakeStore struct {
	nextUserID   int64
	nextCourseID int64
	usersByName  map[string]*store.User
	courseRows   map[int64]*store.Course
	collections  map[int64]*store.Collection
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextUserID:   1,
		nextCourseID: 1,
		usersByName:  make(map[string]*store.User),
		courseRows:   make(map[int64]*store.Course),
		collections:  make(map[int64]*store.Collection),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *store.User) error {
	if _, ok := f.usersByName[user.Username]; ok {
		return store.ErrDuplicate
	}
	user.ID = f.nextUserID
	f.nextUserID++
	copied := *user
	f.usersByName[user.Username] = &copied
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	for _, user := range f.usersByName {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	user, ok := f.usersByName[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]*store.User, error) {
	var out []*store.User
	for _, user := range f.usersByName {
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateCourse(_ context.Context, course *store.Course) error {
	course.ID = f.nextCourseID
	f.nextCourseID++
	copied := *course
	f.courseRows[course.ID] = &copied
	return nil
}

func (f *fakeStore) GetCourse(_ context.Context, id int64, filter store.CourseFilter) (*store.Course, error) {
	course, ok := f.courseRows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if filter.OwnerID != nil && course.OwnerUserID != *filter.OwnerID {
		return nil, store.ErrNotFound
	}
	copied := *course
	return &copied, nil
}

func (f *fakeStore) ListCourses(_ context.Context, filter store.CourseFilter, opts store.ListOptions) ([]*store.Course, error) {
	opts = opts.Normalize()
	var out []*store.Course
	for _, course := range f.courseRows {
		if filter.OwnerID != nil && course.OwnerUserID != *filter.OwnerID {
			continue
		}
		copied := *course
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.Sort == store.SortDesc {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeStore) UpdateCourse(_ context.Context, id int64, update store.CourseUpdate) (int64, error) {
	course, ok := f.courseRows[id]
	if !ok {
		return 0, nil
	}
	if update.Title != nil {
		course.Title = *update.Title
	}
	if update.Description != nil {
		course.Description = *update.Description
	}
	if update.Duration != nil {
		course.Duration = *update.Duration
	}
	if update.Outcome != nil {
		course.Outcome = *update.Outcome
	}
	return 1, nil
}

func (f *fakeStore) DeleteCourse(_ context.Context, id int64) (int64, error) {
	if _, ok := f.courseRows[id]; !ok {
		return 0, nil
	}
	delete(f.courseRows, id)
	return 1, nil
}

func (f *fakeStore) CreateCollection(_ context.Context, collection *store.Collection) error {
	f.collections[collection.ID] = collection
	return nil
}

func (f *fakeStore) GetCollection(_ context.Context, id int64, filter store.CollectionFilter) (*store.Collection, error) {
	c, ok := f.collections[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	visible, ok := f.visibleCollection(c, filter)
	if !ok {
		return nil, store.ErrNotFound
	}
	return visible, nil
}

func (f *fakeStore) ListCollections(_ context.Context, filter store.CollectionFilter) ([]*store.Collection, error) {
	var out []*store.Collection
	for _, c := range f.collections {
		if visible, ok := f.visibleCollection(c, filter); ok {
			out = append(out, visible)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) visibleCollection(c *store.Collection, filter store.CollectionFilter) (*store.Collection, bool) {
	if filter.OwnerCourseUserID == nil {
		copied := *c
		return &copied, true
	}
	var owned []store.Course
	for _, course := range c.Courses {
		if course.OwnerUserID == *filter.OwnerCourseUserID {
			owned = append(owned, course)
		}
	}
	if len(owned) == 0 {
		return nil, false
	}
	copied := *c
	copied.Courses = owned
	return &copied, true
}

type testEnv struct {
	server *httptest.Server
	store  *fakeStore
	tokens *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := newFakeStore()
	c, err := cache.NewMemoryCache(64, 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics()
	reg := schema.Assemble()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	hasher := auth.NewPasswordHasher(4)

	courseSvc := courses.NewService(st, c, reg, logger, metrics, time.Hour)
	collectionSvc := collections.NewService(st, reg, logger, metrics)
	userSvc := users.NewService(st, c, reg, tokens, hasher, logger, metrics, time.Hour)

	srv := httptest.NewServer(NewServer(courseSvc, collectionSvc, userSvc, tokens, logger, metrics).Handler())
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, store: st, tokens: tokens}
}

func (e *testEnv) tokenFor(t *testing.T, p auth.Principal) string {
	t.Helper()
	token, err := e.tokens.Issue(p)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestRegisterAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]string
	decode(t, resp, &created)
	assert.Equal(t, "User registered successfully!", created["message"])

	resp = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "supersecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login map[string]string
	decode(t, resp, &login)
	require.NotEmpty(t, login["token"])

	p, err := env.tokens.Verify(login["token"])
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, p.Role)
}

func TestRegisterValidationStatus(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{"username": "ab"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Username must be between 3 and 30 characters")
	assert.Contains(t, string(body), "Password is required")
}

func TestLoginFailureStatus(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody", "password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCoursesRequireAuthentication(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCourseLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, auth.Principal{ID: 7, Role: auth.RoleUser})

	resp := env.do(t, http.MethodPost, "/courses", token, map[string]string{
		"title": "Go Basics", "duration": "4 weeks",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created store.Course
	decode(t, resp, &created)
	assert.Equal(t, int64(7), created.OwnerUserID)

	path := fmt.Sprintf("/courses/%d", created.ID)

	resp = env.do(t, http.MethodPatch, path, token, map[string]string{"title": "Go Basics, 2nd ed."})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated store.Course
	decode(t, resp, &updated)
	assert.Equal(t, "Go Basics, 2nd ed.", updated.Title)

	resp = env.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCourseVisibilityAcrossOwners(t *testing.T) {
	env := newTestEnv(t)
	mine := env.tokenFor(t, auth.Principal{ID: 7, Role: auth.RoleUser})
	theirs := env.tokenFor(t, auth.Principal{ID: 8, Role: auth.RoleUser})
	admin := env.tokenFor(t, auth.Principal{ID: 1, Role: auth.RoleAdmin})

	resp := env.do(t, http.MethodPost, "/courses", mine, map[string]string{
		"title": "Go Basics", "duration": "4 weeks",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created store.Course
	decode(t, resp, &created)

	path := fmt.Sprintf("/courses/%d", created.ID)

	resp = env.do(t, http.MethodGet, path, theirs, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "invisible row reads as absent")

	resp = env.do(t, http.MethodPatch, path, theirs, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminAssignsCourseOwner(t *testing.T) {
	env := newTestEnv(t)
	admin := env.tokenFor(t, auth.Principal{ID: 1, Role: auth.RoleAdmin})

	resp := env.do(t, http.MethodPost, "/courses", admin, map[string]interface{}{
		"title": "SQL Basics", "duration": "2 weeks", "assocatedUserId": 42,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created store.Course
	decode(t, resp, &created)
	assert.Equal(t, int64(42), created.OwnerUserID)
}

func TestListCoursesQueryParameters(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, auth.Principal{ID: 7, Role: auth.RoleUser})

	for i := 0; i < 3; i++ {
		resp := env.do(t, http.MethodPost, "/courses", token, map[string]string{
			"title": fmt.Sprintf("Course %d", i), "duration": "1 week",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := env.do(t, http.MethodGet, "/courses?sort=desc&limit=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []store.Course
	decode(t, resp, &listed)
	require.Len(t, listed, 2)
	assert.Greater(t, listed[0].ID, listed[1].ID)
}

func TestCollectionsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.CreateCollection(context.Background(), &store.Collection{
		ID: 1, Name: "Backend",
		Courses: []store.Course{
			{ID: 10, Title: "Go Basics", Duration: "4 weeks", OwnerUserID: 7},
			{ID: 11, Title: "SQL Basics", Duration: "2 weeks", OwnerUserID: 8},
		},
	}))

	token := env.tokenFor(t, auth.Principal{ID: 7, Role: auth.RoleUser})

	resp := env.do(t, http.MethodGet, "/collections", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []store.Collection
	decode(t, resp, &listed)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Courses, 1)
	assert.Equal(t, "Go Basics", listed[0].Courses[0].Title)
}

func TestListUsersIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	user := env.tokenFor(t, auth.Principal{ID: 7, Role: auth.RoleUser})
	resp = env.do(t, http.MethodGet, "/users", user, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := env.tokenFor(t, auth.Principal{ID: 1, Role: auth.RoleAdmin})
	resp = env.do(t, http.MethodGet, "/users", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []store.User
	decode(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "alice", listed[0].Username)
}

func TestInvalidJSONIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, auth.Principal{ID: 7, Role: auth.RoleUser})

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/courses", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
