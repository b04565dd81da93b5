package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/middleware"
	"microblog/internal/repositories"
	"microblog/internal/seeder"
	"microblog/internal/service"
	"microblog/validators"
)

func testServer(t *testing.T, users, tweetsPerUser int) *echo.Echo {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	userRepo := repositories.NewMemoryUserRepository()
	tweetRepo := repositories.NewMemoryTweetRepository()
	s := seeder.New(userRepo, tweetRepo, seeder.Config{NumberOfUsers: users, TweetsPerUser: tweetsPerUser}, log)
	require.NoError(t, s.Run(context.Background()))

	svc := service.NewUserService(userRepo, tweetRepo, log)
	h := NewUserHandler(svc)

	e := echo.New()
	e.Validator = validators.NewValidator()
	e.GET("/health", HealthCheck)
	h.RegisterPublicRoutes(e)
	usersGroup := e.Group("/users")
	usersGroup.Use(middleware.BasicAuth(svc))
	h.RegisterUserRoutes(usersGroup)
	return e
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type pageEnvelope struct {
	Content       []json.RawMessage `json:"content"`
	Page          int               `json:"page"`
	PageSize      int               `json:"pageSize"`
	TotalElements int64             `json:"totalElements"`
}

func TestHealthIsPublic(t *testing.T) {
	e := testServer(t, 2, 1)
	rec := do(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUsersRoutesRequireAuth(t *testing.T) {
	e := testServer(t, 2, 1)
	for _, path := range []string{"/users", "/users/me", "/users/me/feed", "/users/username1"} {
		rec := do(e, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestGetUsersEnvelopeAndDefaults(t *testing.T) {
	e := testServer(t, 3, 1)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.SetBasicAuth("username0", "password0")
	rec := do(e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page pageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.EqualValues(t, 3, page.TotalElements)
	assert.Len(t, page.Content, 3)
}

func TestGetUsersHonorsPageParams(t *testing.T) {
	e := testServer(t, 5, 1)
	req := httptest.NewRequest(http.MethodGet, "/users?page=1&pageSize=2", nil)
	req.SetBasicAuth("username0", "password0")
	rec := do(e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page pageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Len(t, page.Content, 2)
}

func TestInvalidPageParamsAreBadRequests(t *testing.T) {
	e := testServer(t, 2, 1)
	for _, query := range []string{"?page=-1", "?pageSize=0", "?page=abc", "?pageSize=500"} {
		req := httptest.NewRequest(http.MethodGet, "/users"+query, nil)
		req.SetBasicAuth("username0", "password0")
		rec := do(e, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	e := testServer(t, 2, 1)
	req := httptest.NewRequest(http.MethodGet, "/users/nonexistent", nil)
	req.SetBasicAuth("username0", "password0")
	rec := do(e, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMeReturnsPrincipalWithoutPassword(t *testing.T) {
	e := testServer(t, 2, 1)
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.SetBasicAuth("username1", "password1")
	rec := do(e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "username1", body["username"])
	assert.NotContains(t, body, "password")
}

func TestGetFeedForPrincipal(t *testing.T) {
	e := testServer(t, 3, 2)
	req := httptest.NewRequest(http.MethodGet, "/users/me/feed", nil)
	req.SetBasicAuth("username0", "password0")
	rec := do(e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page pageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 4, page.TotalElements)
}

func TestLoginReturnsFeedPage(t *testing.T) {
	e := testServer(t, 3, 2)
	body := `{"username":"username0","password":"password0"}`
	req := httptest.NewRequest(http.MethodPost, "/login?pageSize=3", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page pageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.PageSize)
	assert.Len(t, page.Content, 3)
	assert.EqualValues(t, 4, page.TotalElements)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	e := testServer(t, 2, 1)

	responses := make([]*httptest.ResponseRecorder, 0, 2)
	for _, body := range []string{
		`{"username":"ghost","password":"password0"}`,
		`{"username":"username0","password":"wrongpass"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		responses = append(responses, do(e, req))
	}

	assert.Equal(t, http.StatusUnauthorized, responses[0].Code)
	assert.Equal(t, http.StatusUnauthorized, responses[1].Code)
	assert.Equal(t, responses[0].Body.String(), responses[1].Body.String())
}

func TestLoginValidatesBody(t *testing.T) {
	e := testServer(t, 2, 1)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"username0"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(e, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFollowerAndFollowingRoutes(t *testing.T) {
	e := testServer(t, 4, 1)
	for _, path := range []string{"/users/me/followers", "/users/me/followings"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.SetBasicAuth("username0", "password0")
		rec := do(e, req)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var page pageEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.EqualValues(t, 3, page.TotalElements, path)
	}
}
