package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kngrck/mern-project/internal/config"
	"github.com/kngrck/mern-project/internal/handler"
	"github.com/kngrck/mern-project/internal/repository"
	"github.com/kngrck/mern-project/internal/router"
)

// These tests drive the full stack below Echo: router, JWT gate, handlers
// and the MySQL-backed repositories. They need a throwaway database named
// by TEST_DATABASE_DSN (with parseTime=true) and are skipped without one.

type testServer struct {
	e  *echo.Echo
	db *sql.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping API integration test")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			image VARCHAR(512) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS places (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			address VARCHAR(512) NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			image VARCHAR(512) NOT NULL DEFAULT '',
			creator_id BIGINT UNSIGNED NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_places (
			user_id BIGINT UNSIGNED NOT NULL,
			place_id BIGINT UNSIGNED NOT NULL,
			PRIMARY KEY (user_id, place_id)
		)`,
		`DELETE FROM user_places`,
		`DELETE FROM places`,
		`DELETE FROM users`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	cfg := config.Config{
		JWTSecret:    "integration-secret",
		AccessTTLMin: 60,
		BcryptCost:   4,
	}
	users := repository.NewUserRepo(db)
	places := repository.NewPlaceRepo(db)

	e := echo.New()
	router.RegisterRoutes(e)
	// nil Redis: cache and rate limiting are pass-through in tests.
	router.RegisterUsers(e, handler.NewUserHandler(cfg, users), config.RateLimitConfig{}, nil)
	router.RegisterPlaces(e, handler.NewPlaceHandler(cfg, places, users), cfg.JWTSecret, config.CacheConfig{}, nil)

	return &testServer{e: e, db: db}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signup(t *testing.T, name, email string) (userID uint64, token string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":"password1"}`, name, email)
	rec := s.do(http.MethodPost, "/api/users/signup", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		UserID uint64 `json:"userId"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotZero(t, resp.UserID)
	require.NotEmpty(t, resp.Token)
	return resp.UserID, resp.Token
}

type placeResp struct {
	Place struct {
		ID       uint64 `json:"id"`
		Title    string `json:"title"`
		Creator  uint64 `json:"creator"`
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"place"`
}

const createBody = `{"title":"X","description":"somewhere worth seeing","address":"1 Main St","location":{"lat":40,"lng":50}}`

// Full lifecycle: create, read back, list, delete, observe the empty set.
func TestPlaceLifecycle(t *testing.T) {
	s := newTestServer(t)
	uid, token := s.signup(t, "A", "a@example.com")

	rec := s.do(http.MethodPost, "/api/places", token, createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created placeResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.Place.ID)
	assert.Equal(t, uid, created.Place.Creator)
	assert.Equal(t, float64(40), created.Place.Location.Lat)
	assert.Equal(t, float64(50), created.Place.Location.Lng)

	pid := created.Place.ID

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/places/%d", pid), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched placeResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, uid, fetched.Place.Creator)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/places/user/%d", uid), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Places []json.RawMessage `json:"places"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed.Places, 1)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/places/%d", pid), token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Deleted place.")

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/places/%d", pid), "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/places/user/%d", uid), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed.Places = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed.Places)
}

// A second user can read but never mutate someone else's place.
func TestPlaceOwnership(t *testing.T) {
	s := newTestServer(t)
	uidA, tokenA := s.signup(t, "A", "a@example.com")
	_, tokenB := s.signup(t, "B", "b@example.com")

	rec := s.do(http.MethodPost, "/api/places", tokenA, createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created placeResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	pid := created.Place.ID

	// B updates A's place: forbidden, nothing changes.
	rec = s.do(http.MethodPatch, fmt.Sprintf("/api/places/%d", pid), tokenB,
		`{"title":"Hijacked","description":"should never stick"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are not allowed to edit this place.")

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/places/%d", pid), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched placeResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "X", fetched.Place.Title)
	assert.Equal(t, uidA, fetched.Place.Creator)

	// B deletes A's place: forbidden, place still listed for A.
	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/places/%d", pid), tokenB, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are not allowed to delete this place.")

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/places/user/%d", uidA), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":`)

	// The owner may update.
	rec = s.do(http.MethodPatch, fmt.Sprintf("/api/places/%d", pid), tokenA,
		`{"title":"Renamed","description":"still worth seeing"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Renamed")
}

// Mutations without a token never reach the handlers.
func TestPlaceMutationsRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/places"},
		{http.MethodPatch, "/api/places/1"},
		{http.MethodDelete, "/api/places/1"},
	} {
		rec := s.do(tc.method, tc.path, "", createBody)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
		assert.Contains(t, rec.Body.String(), "Authentication failed!")
	}
}

// Repeated public reads are side-effect free and never need a token.
func TestPublicReadsAreIdempotent(t *testing.T) {
	s := newTestServer(t)
	uid, token := s.signup(t, "A", "a@example.com")

	rec := s.do(http.MethodPost, "/api/places", token, createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created placeResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	var first string
	for i := 0; i < 3; i++ {
		rec = s.do(http.MethodGet, fmt.Sprintf("/api/places/%d", created.Place.ID), "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		if i == 0 {
			first = rec.Body.String()
		} else {
			assert.JSONEq(t, first, rec.Body.String())
		}
	}
	rec = s.do(http.MethodGet, fmt.Sprintf("/api/places/user/%d", uid), "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Login rejects unknown emails and wrong passwords with one answer.
func TestLoginIndistinguishableFailures(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "A", "a@example.com")

	recUnknown := s.do(http.MethodPost, "/api/users/login", "",
		`{"email":"nobody@example.com","password":"password1"}`)
	recWrongPw := s.do(http.MethodPost, "/api/users/login", "",
		`{"email":"a@example.com","password":"wrong-password"}`)

	assert.Equal(t, http.StatusForbidden, recUnknown.Code)
	assert.Equal(t, recUnknown.Code, recWrongPw.Code)
	assert.JSONEq(t, recUnknown.Body.String(), recWrongPw.Body.String())
}

func TestSignupDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "A", "a@example.com")

	rec := s.do(http.MethodPost, "/api/users/signup", "",
		`{"name":"Clone","email":"a@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "User exists already.")
}

func TestGetUsersOmitsPasswordHash(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "A", "a@example.com")

	rec := s.do(http.MethodGet, "/api/users", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@example.com")
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}
