package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nusalink/ftth-helpdesk/internal/auth"
	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	tm := auth.NewTokenManager("test-secret", 30)

	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleTechnician)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleTechnician, claims.Role)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	t.Parallel()
	issuer := auth.NewTokenManager("secret-a", 30)
	verifier := auth.NewTokenManager("secret-b", 30)

	token, _, err := issuer.GenerateToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	t.Parallel()
	tm := auth.NewTokenManager("secret", 30)

	_, err := tm.ParseToken("not.a.token")
	require.Error(t, err)
}

func TestPasswordHashAndCompare(t *testing.T) {
	t.Parallel()
	hash, err := auth.HashPassword("hunter2secret", 0)
	require.NoError(t, err)
	require.NoError(t, auth.ComparePassword(hash, "hunter2secret"))
	require.Error(t, auth.ComparePassword(hash, "wrong"))
}
