package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/ports"
)

// Internal trust headers. Downstream services authenticate requests by
// the presence of the trusted marker, never by re-verifying the original
// credential; that makes this filter the trust boundary of the platform.
const (
	HeaderGatewayTrusted = "X-Gateway-Trusted"
	HeaderClientType     = "X-Client-Type"
	HeaderUserID         = "X-User-Id"
	HeaderUserNickname   = "X-User-Nickname"
	HeaderUserRoles      = "X-User-Roles"
)

// Client type marker values.
const (
	ClientTypeUser   = "USER"
	ClientTypePublic = "PUBLIC"
)

const bearerPrefix = "Bearer "

// trustHeaders are stripped from every inbound request before any
// decision is made, so a client can never smuggle its own identity past
// the boundary.
var trustHeaders = []string{
	HeaderGatewayTrusted,
	HeaderClientType,
	HeaderUserID,
	HeaderUserNickname,
	HeaderUserRoles,
}

// TrustBoundary validates the access credential (or confirms the route is
// public) and converts the outcome into internal trust headers. Requests
// past this middleware carry either the USER identity headers or the
// PUBLIC marker; rejected requests terminate here with 401.
func TrustBoundary(issuer ports.AccessTokenIssuer, public *PublicMatcher, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stripTrustHeaders(c.Request)

		isPublic := public.IsPublic(c.Request.URL.Path)
		token := extractBearer(c.Request)

		if token == "" {
			if !isPublic {
				respondError(c, logger, core.Unauthorized("missing access token", nil))
				return
			}
			setPublicHeaders(c.Request)
			c.Next()
			return
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			// Expired and forged tokens get the same answer, even on
			// public routes: a bad credential is never silently ignored.
			respondError(c, logger, core.Unauthorized("invalid access token", err))
			return
		}

		setUserHeaders(c.Request, claims)
		c.Next()
	}
}

func stripTrustHeaders(r *http.Request) {
	for _, h := range trustHeaders {
		r.Header.Del(h)
	}
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(auth, bearerPrefix)
}

func setPublicHeaders(r *http.Request) {
	r.Header.Set(HeaderGatewayTrusted, "true")
	r.Header.Set(HeaderClientType, ClientTypePublic)
}

func setUserHeaders(r *http.Request, claims core.AccessClaims) {
	// The verified credential is consumed here; downstream only ever
	// sees the trust headers.
	r.Header.Del("Authorization")

	r.Header.Set(HeaderGatewayTrusted, "true")
	r.Header.Set(HeaderClientType, ClientTypeUser)
	r.Header.Set(HeaderUserID, claims.UserID)
	// Free-text fields are URL-encoded to survive header transport.
	r.Header.Set(HeaderUserNickname, url.QueryEscape(claims.Nickname))
	r.Header.Set(HeaderUserRoles, strings.Join(claims.Roles, ","))
}
