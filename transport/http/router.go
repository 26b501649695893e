package http

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig carries everything the HTTP surface needs beyond the
// handlers themselves.
type RouterConfig struct {
	TrustBoundary gin.HandlerFunc
	RateLimit     gin.HandlerFunc
	// DownstreamURL is the backend every non-auth request is proxied to
	// after the trust boundary has rewritten its headers. Empty disables
	// proxying, which is what the transport tests use.
	DownstreamURL string
}

// NewRouter assembles the gin engine. The trust boundary runs on every
// request, including the auth endpoints; the rate limiter covers only the
// auth group, where credentials are minted.
func NewRouter(handlers *AuthHandlers, cfg RouterConfig, logger *zap.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.TrustBoundary != nil {
		router.Use(cfg.TrustBoundary)
	}

	auth := router.Group(AuthPathPrefix)
	if cfg.RateLimit != nil {
		auth.Use(cfg.RateLimit)
	}
	auth.POST("/login", handlers.Login)
	auth.POST("/refresh", handlers.Refresh)
	auth.POST("/logout", handlers.Logout)

	if cfg.DownstreamURL != "" {
		target, err := url.Parse(cfg.DownstreamURL)
		if err != nil {
			return nil, err
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("downstream proxy error",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			w.WriteHeader(http.StatusBadGateway)
		}
		router.NoRoute(gin.WrapH(proxy))
	}

	return router, nil
}
