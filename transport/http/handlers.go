package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/service"
)

// AuthPathPrefix mounts the auth endpoints. The refresh cookie is scoped
// to this prefix so it never travels with ordinary API requests.
const AuthPathPrefix = "/api/v1/auth"

// refreshCookieName is the HttpOnly cookie carrying the raw refresh token.
const refreshCookieName = "refresh_token"

// AuthHandlers exposes the login, refresh and logout endpoints.
type AuthHandlers struct {
	auth       *service.AuthService
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewAuthHandlers builds the auth endpoint handlers. refreshTTL drives the
// cookie max-age and must equal the store-side refresh lifetime.
func NewAuthHandlers(auth *service.AuthService, refreshTTL time.Duration, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{auth: auth, refreshTTL: refreshTTL, logger: logger}
}

type loginRequest struct {
	AuthCode string `json:"auth_code" binding:"required"`
}

// tokenResponse is the body of successful login and refresh calls. The
// refresh token travels only in the cookie, never in the body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login exchanges a one-time auth code for a credential pair.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, core.BadRequest("auth_code is required"))
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.AuthCode)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, pair.RawRefreshToken)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   pair.ExpiresIn,
	})
}

// Refresh rotates the refresh cookie and reissues an access token. A
// missing cookie is an authentication failure, not a bad request.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	rawToken, err := c.Cookie(refreshCookieName)
	if err != nil || rawToken == "" {
		respondError(c, h.logger, core.Unauthorized("missing refresh token cookie", nil))
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), rawToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setRefreshCookie(c, pair.RawRefreshToken)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   pair.ExpiresIn,
	})
}

// Logout revokes the refresh session best-effort and always answers 200.
// The cookie is cleared unconditionally, whether or not a session existed
// or the server-side revoke went through.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if rawToken, err := c.Cookie(refreshCookieName); err == nil {
		h.auth.Logout(c.Request.Context(), rawToken)
	}

	h.clearRefreshCookie(c)
	c.Status(http.StatusOK)
}

// setRefreshCookie writes the refresh cookie with max-age exactly equal
// to the refresh TTL. SameSite=None with Secure supports a frontend on a
// different origin.
func (h *AuthHandlers) setRefreshCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookieName, value, int(h.refreshTTL.Seconds()), AuthPathPrefix, "", true, true)
}

// clearRefreshCookie reissues the cookie with the exact same attributes
// and max-age 0. Attribute drift between set and clear makes some
// browsers keep the stale cookie.
func (h *AuthHandlers) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookieName, "", -1, AuthPathPrefix, "", true, true)
}
