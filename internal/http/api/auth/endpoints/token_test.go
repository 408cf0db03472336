package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/auth"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/api"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/api/auth/packets"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
)

func setupRouter(t *testing.T) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users, err := auth.NewInMemoryUserStore(
		auth.UserSeed{Username: "admin", Password: "adminpassword", Role: model.RoleAdmin},
		auth.UserSeed{Username: "user", Password: "userpassword", Role: model.RoleUser},
	)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService("token-endpoint-secret", "HS256")
	require.NoError(t, err)

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{}, TokenModule(auth.NewAuthenticator(users), tokens, 30*time.Minute))
	return r, tokens
}

func postForm(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueToken_Success(t *testing.T) {
	r, tokens := setupRouter(t)

	for _, tc := range []struct{ username, password, role string }{
		{"admin", "adminpassword", model.RoleAdmin},
		{"user", "userpassword", model.RoleUser},
	} {
		w := postForm(r, url.Values{"username": {tc.username}, "password": {tc.password}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp packets.TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "bearer", resp.TokenType)

		claims, err := tokens.Verify(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, tc.username, claims.Subject)
		assert.Equal(t, tc.role, claims.Role)
		assert.InDelta(t, time.Now().Add(30*time.Minute).Unix(), claims.ExpiresAt, 5)
	}
}

func TestIssueToken_BadCredentials(t *testing.T) {
	r, _ := setupRouter(t)

	w := postForm(r, url.Values{"username": {"admin"}, "password": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Incorrect username or password"}`, w.Body.String())

	w = postForm(r, url.Values{"username": {"ghost"}, "password": {"adminpassword"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueToken_MissingFields(t *testing.T) {
	r, _ := setupRouter(t)
	w := postForm(r, url.Values{"username": {"admin"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
