package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("signing-key", "civreg")
	userID := id.NewUserID()
	sessionID := id.NewSessionID()

	signed, err := svc.Generate(userID, sessionID, "veo", time.Now(), time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "veo", claims.Role)
}

func TestTokenExpiry(t *testing.T) {
	svc := NewService("signing-key", "civreg")
	signed, err := svc.Generate(id.NewUserID(), id.NewSessionID(), "admin", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestTokenWrongKey(t *testing.T) {
	signed, err := NewService("key-one", "civreg").Generate(id.NewUserID(), id.NewSessionID(), "weo", time.Now(), time.Hour)
	require.NoError(t, err)

	_, err = NewService("key-two", "civreg").Validate(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
