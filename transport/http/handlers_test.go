package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/todaybook/gateway/adapters/hasher"
	"github.com/todaybook/gateway/adapters/signer"
	"github.com/todaybook/gateway/adapters/store"
	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/service"
)

type staticIdentity struct {
	users map[string]core.AuthenticatedUser
}

func (f *staticIdentity) ResolveOrCreate(_ context.Context, payload core.ExchangePayload) (core.AuthenticatedUser, error) {
	user := core.AuthenticatedUser{
		ID:       "user-7",
		Nickname: payload.Nickname,
		Roles:    []string{"USER"},
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *staticIdentity) Load(_ context.Context, userID string) (core.AuthenticatedUser, error) {
	user, ok := f.users[userID]
	if !ok {
		return core.AuthenticatedUser{}, core.ErrNotFound
	}
	return user, nil
}

type authFixture struct {
	engine *gin.Engine
	codes  *store.MemoryExchangeStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	sign, err := signer.New(strings.Repeat("a", 32), 15*time.Minute)
	require.NoError(t, err)
	hash, err := hasher.New(strings.Repeat("b", 32))
	require.NoError(t, err)

	codes := store.NewMemoryExchangeStore()
	refresh := store.NewMemoryRefreshStore()

	tokens, err := service.NewTokenService(refresh, hash, sign, 24*time.Hour, logger)
	require.NoError(t, err)
	auth := service.NewAuthService(codes, &staticIdentity{users: map[string]core.AuthenticatedUser{}}, tokens, nil, logger)

	handlers := NewAuthHandlers(auth, tokens.RefreshTTL(), logger)
	engine, err := NewRouter(handlers, RouterConfig{
		TrustBoundary: TrustBoundary(sign, NewPublicMatcher([]string{AuthPathPrefix + "/**"}), logger),
	}, logger)
	require.NoError(t, err)

	return &authFixture{engine: engine, codes: codes}
}

func (f *authFixture) seedCode(t *testing.T, code string) {
	t.Helper()
	err := f.codes.Save(context.Background(), code, core.ExchangePayload{
		Provider:       "kakao",
		ProviderUserID: "345",
		Nickname:       "reader",
	}, time.Minute)
	require.NoError(t, err)
}

func (f *authFixture) login(t *testing.T, code string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, AuthPathPrefix+"/login",
		strings.NewReader(`{"auth_code":"`+code+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	t.Fatal("refresh cookie not set")
	return nil
}

func TestLoginIssuesTokensAndCookie(t *testing.T) {
	f := newAuthFixture(t)
	f.seedCode(t, "code-1")

	w := f.login(t, "code-1")
	require.Equal(t, http.StatusOK, w.Code)

	var body tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, int64(900), body.ExpiresIn)
	assert.NotContains(t, w.Body.String(), "refresh", "refresh token never appears in the body")

	cookie := refreshCookie(t, w)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.Equal(t, AuthPathPrefix, cookie.Path)
	assert.Equal(t, int(24*time.Hour/time.Second), cookie.MaxAge)
}

func TestLoginRejectsMissingCode(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, AuthPathPrefix+"/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(core.CodeBadRequest))
}

func TestLoginRejectsUnknownCode(t *testing.T) {
	f := newAuthFixture(t)

	w := f.login(t, "never-issued")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginCodeIsSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	f.seedCode(t, "code-1")

	require.Equal(t, http.StatusOK, f.login(t, "code-1").Code)
	require.Equal(t, http.StatusUnauthorized, f.login(t, "code-1").Code)
}

func TestRefreshRotatesCookie(t *testing.T) {
	f := newAuthFixture(t)
	f.seedCode(t, "code-1")
	oldCookie := refreshCookie(t, f.login(t, "code-1"))

	req := httptest.NewRequest(http.MethodPost, AuthPathPrefix+"/refresh", nil)
	req.AddCookie(oldCookie)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)

	newCookie := refreshCookie(t, w)
	assert.NotEqual(t, oldCookie.Value, newCookie.Value)
	assert.Equal(t, oldCookie.MaxAge, newCookie.MaxAge, "rotation restarts the full lifetime")

	// The rotated-out token is dead.
	replay := httptest.NewRequest(http.MethodPost, AuthPathPrefix+"/refresh", nil)
	replay.AddCookie(oldCookie)
	wr := httptest.NewRecorder()
	f.engine.ServeHTTP(wr, replay)
	require.Equal(t, http.StatusUnauthorized, wr.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	f := newAuthFixture(t)

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, AuthPathPrefix+"/refresh", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesAndClearsCookie(t *testing.T) {
	f := newAuthFixture(t)
	f.seedCode(t, "code-1")
	cookie := refreshCookie(t, f.login(t, "code-1"))

	req := httptest.NewRequest(http.MethodPost, AuthPathPrefix+"/logout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cleared := refreshCookie(t, w)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0, "cookie is expired immediately")
	assert.Equal(t, AuthPathPrefix, cleared.Path)

	// The revoked session cannot refresh anymore.
	replay := httptest.NewRequest(http.MethodPost, AuthPathPrefix+"/refresh", nil)
	replay.AddCookie(cookie)
	wr := httptest.NewRecorder()
	f.engine.ServeHTTP(wr, replay)
	require.Equal(t, http.StatusUnauthorized, wr.Code)
}

func TestLogoutWithoutCookieStillSucceeds(t *testing.T) {
	f := newAuthFixture(t)

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, AuthPathPrefix+"/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Less(t, refreshCookie(t, w).MaxAge, 0)
}
