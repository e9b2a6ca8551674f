package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue(Principal{ID: 42, Role: RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, RoleAdmin, p.Role)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue(Principal{ID: 1, Role: RoleUser})
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", time.Hour)
	other := NewTokenManager("secret-b", time.Hour)

	token, err := tm.Issue(Principal{ID: 1, Role: RoleUser})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tm.Verify(token)
		assert.Error(t, err, "token %q should not verify", token)
	}
}
