package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugTracker/internal/auth"
	"bugTracker/internal/metrics"
	"bugTracker/internal/service"
	"bugTracker/internal/store"
	"bugTracker/internal/testutil"
	"bugTracker/repository"
)

const testSecret = "http-test-secret"

type testServer struct {
	t       *testing.T
	handler http.Handler
	gw      store.Gateway
}

func newTestServer(t *testing.T, name string) *testServer {
	t.Helper()
	gw := testutil.NewGateway(t, name)
	users := repository.NewUserRepository(gw)
	projects := repository.NewProjectRepository(gw)
	bugs := repository.NewBugRepository(gw)
	comments := repository.NewCommentRepository(gw)
	api := New(Options{
		Comments:  service.NewCommentService(gw, comments, bugs, users, nil),
		Bugs:      service.NewBugService(gw, bugs, comments, projects, users, nil),
		Projects:  service.NewProjectService(gw, projects, users, nil),
		Users:     service.NewUserService(gw, users, auth.BcryptHasher{Cost: 4}, auth.NewIssuer(testSecret, time.Hour), nil),
		Store:     gw,
		Metrics:   metrics.New(),
		JWTSecret: testSecret,
		Version:   "test",
	})
	return &testServer{t: t, handler: api.Router(), gw: gw}
}

// do sends body (nil, a string, or a value to marshal) and returns the recorder.
func (s *testServer) do(method, path string, body any, header ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestIndexAndHealth(t *testing.T) {
	s := newTestServer(t, "http_index")

	rec := s.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Bug Tracker API is running", body["message"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = s.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/", nil, requestIDHeader, "fixed-id")
	assert.Equal(t, "fixed-id", rec.Header().Get(requestIDHeader))
}

func TestCommentLifecycle(t *testing.T) {
	s := newTestServer(t, "http_comments")
	u1 := testutil.SeedUser(t, s.gw, "u1")
	p1 := testutil.SeedProject(t, s.gw, "p1", u1)
	b1 := testutil.SeedBug(t, s.gw, p1, "b1", u1)

	rec := s.do(http.MethodPost, "/comments", map[string]any{"BugID": b1, "UserID": u1, "CommentText": " hi "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "hi", created["CommentText"])
	id := int64(created["CommentID"].(float64))

	rec = s.do(http.MethodGet, fmt.Sprintf("/comments/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[map[string]any](t, rec))

	rec = s.do(http.MethodPost, "/comments", map[string]any{"BugID": 9999, "UserID": u1, "CommentText": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bug not found", decode[map[string]string](t, rec)["error"])

	rec = s.do(http.MethodPost, "/comments", map[string]any{"BugID": b1, "CommentText": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing fields", decode[map[string]string](t, rec)["error"])

	rec = s.do(http.MethodPost, "/comments", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	for _, body := range []string{`{"CommentText":"a"} garbage`, `{"CommentText":"a"}{"CommentText":"b"}`} {
		rec = s.do(http.MethodPost, "/comments", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "invalid JSON body", decode[map[string]string](t, rec)["error"])
	}

	rec = s.do(http.MethodPost, "/comments", fmt.Sprintf(`{"BugID": %d.0, "UserID": %de0, "CommentText": "whole"}`+"\n", b1, u1))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(b1), decode[map[string]any](t, rec)["BugID"])

	rec = s.do(http.MethodPut, fmt.Sprintf("/comments/%d", id), map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no update data", decode[map[string]string](t, rec)["error"])

	rec = s.do(http.MethodPut, "/comments/999", map[string]any{"CommentText": "ok"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPut, fmt.Sprintf("/comments/%d", id), map[string]any{"CommentText": "edited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", decode[map[string]any](t, rec)["CommentText"])

	rec = s.do(http.MethodGet, "/comments/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/comments/user/%d", u1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	// Deleting the bug removes its comments.
	rec = s.do(http.MethodDelete, fmt.Sprintf("/bugs/%d", b1), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, fmt.Sprintf("/comments/bug/%d", b1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = s.do(http.MethodDelete, fmt.Sprintf("/comments/%d", id), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCommentsByBug(t *testing.T) {
	s := newTestServer(t, "http_comments_bybug")
	u1 := testutil.SeedUser(t, s.gw, "u1")
	b1 := testutil.SeedBug(t, s.gw, testutil.SeedProject(t, s.gw, "p", u1), "b", u1)
	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodPost, "/comments", map[string]any{"BugID": b1, "UserID": u1, "CommentText": "c"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(http.MethodGet, fmt.Sprintf("/bugs/%d/comments", b1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/comments/bug/%d", b1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int64{"deleted": 2}, decode[map[string]int64](t, rec))

	rec = s.do(http.MethodDelete, fmt.Sprintf("/comments/bug/%d", b1), nil)
	assert.Equal(t, map[string]int64{"deleted": 0}, decode[map[string]int64](t, rec))
}

func TestProjectsAndBugs(t *testing.T) {
	s := newTestServer(t, "http_projects_bugs")
	u1 := testutil.SeedUser(t, s.gw, "u1")
	u2 := testutil.SeedUser(t, s.gw, "u2")

	rec := s.do(http.MethodPost, "/projects", map[string]any{"ProjectName": "Apollo", "CreatedBy": u1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	proj := decode[map[string]any](t, rec)
	pid := int64(proj["ProjectID"].(float64))
	assert.Nil(t, proj["Description"])

	rec = s.do(http.MethodPut, fmt.Sprintf("/projects/%d", pid), map[string]any{"Description": "moon"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "moon", decode[map[string]any](t, rec)["Description"])

	rec = s.do(http.MethodGet, fmt.Sprintf("/projects/creator/%d", u1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.do(http.MethodPost, "/bugs", map[string]any{"ProjectID": pid, "Title": "crash", "ReportedBy": u1, "AssignedTo": u2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bug := decode[map[string]any](t, rec)
	bid := int64(bug["BugID"].(float64))
	assert.Equal(t, "open", bug["Status"])

	rec = s.do(http.MethodPut, fmt.Sprintf("/bugs/%d", bid), map[string]any{"Status": "closed", "AssignedTo": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "closed", updated["Status"])
	assert.Nil(t, updated["AssignedTo"])

	rec = s.do(http.MethodGet, fmt.Sprintf("/bugs/project/%d", pid), nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
	rec = s.do(http.MethodGet, fmt.Sprintf("/bugs/reporter/%d", u1), nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
	rec = s.do(http.MethodGet, fmt.Sprintf("/bugs/assignee/%d", u2), nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 0)

	// Still owns a bug: refused by the store.
	rec = s.do(http.MethodDelete, fmt.Sprintf("/projects/%d", pid), nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode[map[string]string](t, rec)["error"])

	rec = s.do(http.MethodDelete, fmt.Sprintf("/bugs/%d", bid), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, fmt.Sprintf("/projects/%d", pid), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, fmt.Sprintf("/projects/%d", pid), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserFlow(t *testing.T) {
	s := newTestServer(t, "http_users")

	rec := s.do(http.MethodPost, "/users/register", map[string]any{"Username": "alice", "Email": "alice@example.com", "Password": "s3cret-pass"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[map[string]any](t, rec)
	assert.Equal(t, "developer", user["Role"])
	assert.NotContains(t, rec.Body.String(), "s3cret-pass")
	assert.NotContains(t, rec.Body.String(), "PasswordHash")

	rec = s.do(http.MethodPost, "/users/login", map[string]any{"Username": "alice", "Password": "wrong-pass"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/users/login", map[string]any{"Username": "alice", "Password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]any](t, rec)["Token"].(string)
	require.NotEmpty(t, token)
	bearer := "Bearer " + token

	rec = s.do(http.MethodGet, "/users/profile", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/users/profile", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[map[string]any](t, rec)["Username"])

	rec = s.do(http.MethodPut, "/users/profile", map[string]any{"Email": "alice@example.org"}, "Authorization", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.org", decode[map[string]any](t, rec)["Email"])

	rec = s.do(http.MethodPut, "/users/change-password", map[string]any{"CurrentPassword": "s3cret-pass", "NewPassword": "an0ther-pass"}, "Authorization", bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/users/login", map[string]any{"Username": "alice", "Password": "an0ther-pass"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/users/register", map[string]any{"Username": "bob", "Email": "bob@example.com", "Password": "b0b-password"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]map[string]any](t, rec)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0]["Username"])
	assert.NotContains(t, rec.Body.String(), "PasswordHash")

	rec = s.do(http.MethodDelete, "/users/profile", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodDelete, "/users/profile", nil, "Authorization", bearer)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/users/profile", nil, "Authorization", bearer)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "http_metrics")
	s.do(http.MethodGet, "/comments", nil)

	rec := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/comments"`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&service.ValidationError{Reason: "x"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("wrapped: %w", &service.ReferenceError{Entity: "bug", ID: 1})))
	assert.Equal(t, http.StatusUnauthorized, statusFor(&service.AuthError{Reason: "x"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
