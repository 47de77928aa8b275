package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"smart-shopper/internal/database"
	"smart-shopper/internal/models"
	"smart-shopper/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T, v Verifier) *Guard {
	t.Helper()
	s := store.New(database.Seed(), nil, store.WithVerification(true))
	require.NoError(t, s.Mutate(func(tx *store.Tx) error {
		tx.InsertStaff(models.StaffMember{Username: "stock", Role: models.RoleInventoryManager})
		return nil
	}))
	require.NoError(t, SetPassword(s, models.SuperAdminUsername, "s3cret!"))
	return NewGuard(s, v, NewTokens("unit-test-secret", time.Hour))
}

func TestAuthorize(t *testing.T) {
	g := newGuard(t, HeaderVerifier{})

	m, err := g.Authorize("stock", Capabilities[ManageProducts]...)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInventoryManager, m.Role)

	_, err = g.Authorize("stock", Capabilities[DeleteProducts]...)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = g.Authorize("nobody", models.AllRoles...)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = g.Authorize("ORIGICHIDIAH", models.AllRoles...)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	m, err = g.Authorize(models.SuperAdminUsername, models.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Empty(t, m.PasswordHash)
}

func TestHeaderVerifier(t *testing.T) {
	g := newGuard(t, HeaderVerifier{})

	r := httptest.NewRequest("GET", "/", nil)
	_, err := g.Check(r, ViewStats)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	r.Header.Set(AdminHeader, models.SuperAdminUsername)
	m, err := g.Check(r, ViewStats)
	require.NoError(t, err)
	assert.Equal(t, models.SuperAdminUsername, m.Username)
}

func TestLoginAndTokenVerifier(t *testing.T) {
	tokens := NewTokens("unit-test-secret", time.Hour)
	g := newGuard(t, TokenVerifier{Tokens: tokens})

	_, _, err := g.Login(models.SuperAdminUsername, "wrong")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, _, err = g.Login("stock", "anything")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	token, member, err := g.Login(models.SuperAdminUsername, "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, member.Role)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	_, err = g.Check(r, ManageStaff)
	require.NoError(t, err)

	r.Header.Set("Authorization", token)
	_, err = g.Check(r, ManageStaff)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	r.Header.Set(AdminHeader, models.SuperAdminUsername)
	r.Header.Del("Authorization")
	_, err = g.Check(r, ManageStaff)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestValidateToken(t *testing.T) {
	tokens := NewTokens("secret-a", time.Hour)
	token, err := tokens.GenerateToken("stock", models.RoleInventoryManager)
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "stock", claims.Username)

	_, err = NewTokens("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	expired := NewTokens("secret-a", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.GenerateToken("stock", models.RoleInventoryManager)
	require.NoError(t, err)
	_, err = tokens.ValidateToken(old)
	assert.Error(t, err)
}
