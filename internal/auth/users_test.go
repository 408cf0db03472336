package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	users, err := NewInMemoryUserStore(
		UserSeed{Username: "admin", Password: "adminpassword", Role: model.RoleAdmin},
		UserSeed{Username: "user", Password: "userpassword", Role: model.RoleUser},
	)
	require.NoError(t, err)
	return NewAuthenticator(users)
}

func TestAuthenticate(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	u, err := a.Authenticate(ctx, "admin", "adminpassword")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)
	assert.True(t, u.IsAdmin())
	assert.NotEqual(t, "adminpassword", u.HashedPassword)

	u, err = a.Authenticate(ctx, "user", "userpassword")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.False(t, u.IsAdmin())
}

func TestAuthenticate_Failures(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	_, err := a.Authenticate(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = a.Authenticate(ctx, "nobody", "adminpassword")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestNewInMemoryUserStore_RejectsBadSeeds(t *testing.T) {
	_, err := NewInMemoryUserStore(UserSeed{Username: "", Password: "x", Role: model.RoleUser})
	assert.Error(t, err)

	_, err = NewInMemoryUserStore(UserSeed{Username: "root", Password: "x", Role: "superuser"})
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret"))
	assert.False(t, CheckPassword(hash, "Secret"))
	assert.NotEqual(t, "secret", hash)
	assert.False(t, CheckPassword("not-a-bcrypt-digest", "secret"))
}
