package hasher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsWeakSecret(t *testing.T) {
	_, err := New("too-short")
	require.Error(t, err)
}

func TestHashIsDeterministic(t *testing.T) {
	h, err := New(strings.Repeat("k", 32))
	require.NoError(t, err)

	assert.Equal(t, h.Hash("token-a"), h.Hash("token-a"))
	assert.NotEqual(t, h.Hash("token-a"), h.Hash("token-b"))
	assert.NotEqual(t, "token-a", h.Hash("token-a"))
}

func TestHashDependsOnKey(t *testing.T) {
	h1, err := New(strings.Repeat("a", 32))
	require.NoError(t, err)
	h2, err := New(strings.Repeat("b", 32))
	require.NoError(t, err)

	assert.NotEqual(t, h1.Hash("token"), h2.Hash("token"))
}

func TestHashIsKeySafe(t *testing.T) {
	h, err := New(strings.Repeat("k", 32))
	require.NoError(t, err)

	// Store keys travel through Redis key space and logs of key names;
	// the encoding must stay URL- and header-safe.
	hash := h.Hash("any raw token / with : separators")
	assert.NotContains(t, hash, "+")
	assert.NotContains(t, hash, "/")
	assert.NotContains(t, hash, "=")
}
