package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	j := New("test-secret")

	tok, err := j.Sign(Identity{UserID: "u1", Role: "doctor"}, time.Hour)
	require.NoError(t, err)

	id, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "doctor", id.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := New("secret-a").Sign(Identity{UserID: "u1", Role: "patient"}, time.Hour)
	require.NoError(t, err)

	_, err = New("secret-b").Verify(tok)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	j := New("test-secret")

	tok, err := j.Sign(Identity{UserID: "u1", Role: "patient"}, -time.Minute)
	require.NoError(t, err)

	_, err = j.Verify(tok)
	assert.Error(t, err)
}

func TestSignRequiresUserID(t *testing.T) {
	_, err := New("test-secret").Sign(Identity{}, time.Hour)
	assert.Error(t, err)
}

func TestContextIdentity(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "anon", UserID(ctx))
	assert.Equal(t, "guest", Role(ctx))

	ctx = WithIdentity(ctx, Identity{UserID: "u1", Role: "patient"})
	assert.Equal(t, "u1", UserID(ctx))
	assert.Equal(t, "patient", Role(ctx))
}
