package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicMatcher(t *testing.T) {
	m := NewPublicMatcher([]string{
		"/api/v1/auth/**",
		"/health",
		" /docs/** ",
		"",
	})

	assert.True(t, m.IsPublic("/api/v1/auth/login"))
	assert.True(t, m.IsPublic("/api/v1/auth/refresh/whatever"))
	assert.True(t, m.IsPublic("/api/v1/auth"), "bare wildcard prefix is public")
	assert.True(t, m.IsPublic("/health"))
	assert.True(t, m.IsPublic("/docs/openapi.json"), "patterns are trimmed")

	assert.False(t, m.IsPublic("/api/v1/orders"))
	assert.False(t, m.IsPublic("/healthz"), "exact patterns do not prefix-match")
	assert.False(t, m.IsPublic("/api/v1/authenticate"), "wildcard needs the path separator")
}
