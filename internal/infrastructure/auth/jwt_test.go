package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("secret", "mealsub")

	token, err := svc.Issue(42, "admin", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.PrincipalID)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secret", "mealsub")

	token, err := svc.Issue(42, "", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService("other", "mealsub").Verify(token)
	assert.Error(t, err, "wrong secret")

	_, err = NewJWTService("secret", "someone-else").Verify(token)
	assert.Error(t, err, "wrong issuer")

	_, err = svc.Verify("not-a-token")
	assert.Error(t, err)

	restore := biztime.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	defer restore()
	_, err = svc.Verify(token)
	assert.Error(t, err, "expired")
}

func TestJWTService_RejectsMissingPrincipal(t *testing.T) {
	svc := NewJWTService("secret", "")

	token, err := svc.Issue(0, "", time.Hour)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
