package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/auth"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService("middleware-secret", "HS256")
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/admin", JWTMiddleware(tokens), RequireRole("admin"), func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject})
	})
	return r, tokens
}

func do(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgNotAuthenticated, detail(t, w))
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestJWTMiddleware_WrongScheme(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, "Basic YWRtaW46YWRtaW4=")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgInvalidCredentials, detail(t, w))
}

func TestJWTMiddleware_UserRoleForbidden(t *testing.T) {
	r, tokens := newTestRouter(t)
	token, err := tokens.Issue("user", "user", time.Minute)
	require.NoError(t, err)

	w := do(r, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, MsgNotEnoughPermissions, detail(t, w))
}

func TestJWTMiddleware_Admin(t *testing.T) {
	r, tokens := newTestRouter(t)
	token, err := tokens.Issue("admin", "admin", time.Minute)
	require.NoError(t, err)

	w := do(r, "bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestLogger_KeepsIncomingID(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
