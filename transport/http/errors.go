package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/todaybook/gateway/core"
)

// errorResponse is the uniform error body: a stable code plus a short
// message. Causes stay in logs.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError renders err with its mapped HTTP status and aborts the
// request. Internal-class failures are logged with their cause.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	code := core.CodeOf(err)
	if code == core.CodeInternal || code == core.CodeServiceUnavailable || code == core.CodeGatewayTimeout {
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(code.Status(), errorResponse{
		Code:    string(code),
		Message: core.MessageOf(err),
	})
}
