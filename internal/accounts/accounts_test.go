package accounts

import (
	"testing"

	"smart-shopper/internal/database"
	"smart-shopper/internal/models"
	"smart-shopper/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	svc := NewService(store.New(database.Seed(), nil, store.WithVerification(true)))
	svc.code = func() string { return "424242" }
	return svc
}

func TestRegister(t *testing.T) {
	svc := newService()

	u, err := svc.Register(Registration{UserID: " 7781 ", Name: "Emeka", Phone: "0803"})
	require.NoError(t, err)
	assert.Equal(t, "7781", u.UserID)
	assert.Equal(t, "424242", u.LoginCode)
	assert.True(t, u.SessionActive)
	assert.Zero(t, u.WalletBalance)

	_, err = svc.Register(Registration{UserID: "7781", Name: "Again"})
	assert.ErrorIs(t, err, models.ErrDuplicateUser)

	_, err = svc.Register(Registration{UserID: "7782"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLoginLogoutCheck(t *testing.T) {
	svc := newService()
	_, err := svc.Register(Registration{UserID: "7781", Name: "Emeka"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout("7781"))
	assert.Equal(t, Status{Registered: true, Name: "Emeka", LoggedIn: false}, svc.Check("7781"))

	_, err = svc.Login("7781", "000000")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = svc.Login("nobody", "424242")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	u, err := svc.Login("7781", "424242")
	require.NoError(t, err)
	assert.True(t, u.SessionActive)
	assert.True(t, svc.Check("7781").LoggedIn)

	require.NoError(t, svc.Logout("nobody"))
	assert.False(t, svc.Check("nobody").Registered)
}
