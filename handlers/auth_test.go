package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bookly/bookly/internal/blocklist"
	"github.com/bookly/bookly/internal/config"
	"github.com/bookly/bookly/internal/tokens"
	"github.com/bookly/bookly/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authEnv struct {
	router *gin.Engine
	redis  *miniredis.Miniredis
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	m, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenTTL = time.Hour
	cfg.JWT.RefreshTokenTTL = 48 * time.Hour
	cfg.JWT.BlocklistTTL = time.Hour

	usersSvc := users.NewService(users.NewMemoryRepository())
	codec := tokens.NewCodec(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	bl := blocklist.NewRedisStore(client, "", cfg.JWT.BlocklistTTL)

	r := gin.New()
	api := r.Group("/api/v1")
	NewAuthHandler(cfg, usersSvc, codec, bl).Register(api)

	return &authEnv{router: r, redis: m}
}

func (e *authEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *authEnv) signup(t *testing.T, email string) {
	t.Helper()
	w := e.do(t, "POST", "/api/v1/auth/signup", "", gin.H{
		"username":   "jedi",
		"email":      email,
		"password":   "testing123",
		"first_name": "Obi-Wan",
		"last_name":  "Kenobi",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (e *authEnv) login(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()
	w := e.do(t, "POST", "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			UID   string `json:"uid"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, email, resp.User.Email)
	return resp.AccessToken, resp.RefreshToken
}

func TestSignup_ValidatesPayload(t *testing.T) {
	env := newAuthEnv(t)

	// missing password
	w := env.do(t, "POST", "/api/v1/auth/signup", "", gin.H{"username": "x", "email": "x@example.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid_input")

	// malformed email
	w = env.do(t, "POST", "/api/v1/auth/signup", "", gin.H{"username": "x", "email": "nope", "password": "testing123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newAuthEnv(t)
	env.signup(t, "dup@example.com")

	w := env.do(t, "POST", "/api/v1/auth/signup", "", gin.H{
		"username": "again", "email": "dup@example.com", "password": "testing123",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "duplicate_user")
}

func TestSignup_NeverReturnsPasswordHash(t *testing.T) {
	env := newAuthEnv(t)
	w := env.do(t, "POST", "/api/v1/auth/signup", "", gin.H{
		"username": "jedi", "email": "safe@example.com", "password": "testing123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotContains(t, w.Body.String(), "passwordHash")
	require.NotContains(t, w.Body.String(), "testing123")
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newAuthEnv(t)

	w := env.do(t, "POST", "/api/v1/auth/login", "", gin.H{"email": "nobody@example.com", "password": "whatever1"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "user_not_found")
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newAuthEnv(t)
	env.signup(t, "alice@example.com")

	w := env.do(t, "POST", "/api/v1/auth/login", "", gin.H{"email": "alice@example.com", "password": "wrongpass1"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "invalid_credentials")
	// a wrong password must not be confused with an unknown account
	require.NotContains(t, w.Body.String(), "user_not_found")
}

func TestAuthFlow_SignupLoginMeLogout(t *testing.T) {
	env := newAuthEnv(t)
	env.signup(t, "flow@example.com")
	access, refresh := env.login(t, "flow@example.com", "testing123")

	// authenticated profile lookup
	w := env.do(t, "GET", "/api/v1/auth/me", access, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "flow@example.com")

	// logout revokes the access token
	w = env.do(t, "GET", "/api/v1/auth/logout", access, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the revoked token no longer opens the profile
	w = env.do(t, "GET", "/api/v1/auth/me", access, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "token_revoked")

	// the refresh token issued alongside stays usable after logout
	w = env.do(t, "GET", "/api/v1/auth/refresh_token", refresh, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRefresh_IssuesWorkingAccessToken(t *testing.T) {
	env := newAuthEnv(t)
	env.signup(t, "ref@example.com")
	_, refresh := env.login(t, "ref@example.com", "testing123")

	w := env.do(t, "GET", "/api/v1/auth/refresh_token", refresh, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	// the freshly minted access token authenticates
	w = env.do(t, "GET", "/api/v1/auth/me", resp.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	env := newAuthEnv(t)
	env.signup(t, "kinds@example.com")
	access, refresh := env.login(t, "kinds@example.com", "testing123")

	// access token on the refresh route
	w := env.do(t, "GET", "/api/v1/auth/refresh_token", access, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "refresh_token_required")

	// refresh token on an access route
	w = env.do(t, "GET", "/api/v1/auth/me", refresh, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "access_token_required")
}

func TestLogout_StoreOutage(t *testing.T) {
	env := newAuthEnv(t)
	env.signup(t, "outage@example.com")
	access, _ := env.login(t, "outage@example.com", "testing123")

	env.redis.SetError("redis gone")
	w := env.do(t, "GET", "/api/v1/auth/logout", access, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "store_unavailable")
	env.redis.SetError("")
}

func TestProtectedRoute_NoToken(t *testing.T) {
	env := newAuthEnv(t)

	w := env.do(t, "GET", "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "missing_credentials")
}
