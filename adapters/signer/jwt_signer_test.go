package signer

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todaybook/gateway/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewRejectsWeakSecret(t *testing.T) {
	_, err := New("short", 15*time.Minute)
	require.Error(t, err)

	_, err = New(testSecret, 0)
	require.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	s, err := New(testSecret, 15*time.Minute)
	require.NoError(t, err)

	user := core.AuthenticatedUser{
		ID:       "42",
		Nickname: "Ann",
		Roles:    []string{"USER_ROLE", "ADMIN_ROLE"},
	}

	issued, err := s.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, int64(900), issued.ExpiresIn)

	claims, err := s.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Nickname, claims.Nickname)
	assert.Equal(t, user.Roles, claims.Roles)
	assert.Equal(t, 15*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	s, err := New(testSecret, 15*time.Minute)
	require.NoError(t, err)

	issued, err := s.Issue(core.AuthenticatedUser{ID: "42", Nickname: "Ann"})
	require.NoError(t, err)

	tampered := issued.Token[:len(issued.Token)-2] + "xx"
	_, err = s.Verify(tampered)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	s, err := New(testSecret, 15*time.Minute)
	require.NoError(t, err)

	other, err := New("ffffffffffffffffffffffffffffffff", 15*time.Minute)
	require.NoError(t, err)

	issued, err := other.Issue(core.AuthenticatedUser{ID: "42"})
	require.NoError(t, err)

	_, err = s.Verify(issued.Token)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s, err := New(testSecret, 15*time.Minute)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
		Nickname: "Ann",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s, err := New(testSecret, 15*time.Minute)
	require.NoError(t, err)

	for _, input := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := s.Verify(input)
		assert.ErrorIs(t, err, core.ErrInvalidToken)
	}
}
