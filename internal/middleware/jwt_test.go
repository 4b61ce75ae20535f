package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kngrck/mern-project/internal/utils"
)

const testSecret = "test-secret"

// runGate sends one request through JWTAuth and returns the recorder plus
// the user_id value the wrapped handler observed (nil when it never ran).
func runGate(t *testing.T, method, authHeader string) (*httptest.ResponseRecorder, interface{}) {
	t.Helper()
	e := echo.New()
	var seen interface{}
	handler := func(c echo.Context) error {
		seen = c.Get("user_id")
		return c.NoContent(http.StatusOK)
	}
	e.Add(method, "/protected", handler, JWTAuth(testSecret))

	req := httptest.NewRequest(method, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestJWTAuth_ValidToken(t *testing.T) {
	t.Parallel()

	tok, err := utils.NewAccessToken(testSecret, 99, "u@example.com", 60)
	require.NoError(t, err)

	rec, seen := runGate(t, http.MethodPost, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(99), seen)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	rec, seen := runGate(t, http.MethodPost, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication failed!")
	assert.Nil(t, seen)
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	t.Parallel()

	rec, seen := runGate(t, http.MethodPost, "Token abc")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication failed!")
	assert.Nil(t, seen)
}

func TestJWTAuth_GarbageToken(t *testing.T) {
	t.Parallel()

	rec, seen := runGate(t, http.MethodPost, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication failed!")
	assert.Nil(t, seen)
}

// Expired and garbage tokens must be indistinguishable at the boundary:
// same status, same body.
func TestJWTAuth_ExpiredLooksLikeGarbage(t *testing.T) {
	t.Parallel()

	expired, err := utils.NewAccessToken(testSecret, 5, "u@example.com", -1)
	require.NoError(t, err)

	recExpired, _ := runGate(t, http.MethodPost, "Bearer "+expired.Token)
	recGarbage, _ := runGate(t, http.MethodPost, "Bearer junk")

	assert.Equal(t, recGarbage.Code, recExpired.Code)
	assert.Equal(t, recGarbage.Body.String(), recExpired.Body.String())
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := utils.NewAccessToken("other-secret", 99, "u@example.com", 60)
	require.NoError(t, err)

	rec, seen := runGate(t, http.MethodPost, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, seen)
}

// Preflight requests carry no credentials and must pass the gate.
func TestJWTAuth_OptionsBypass(t *testing.T) {
	t.Parallel()

	rec, _ := runGate(t, http.MethodOptions, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
