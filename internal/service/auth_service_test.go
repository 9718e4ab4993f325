package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/service"
	"github.com/monterra-as/installer-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := env.auth.Login(context.Background(), &domain.LoginRequest{
			Username: "vendor1",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.Equal(t, domain.RoleVendor, resp.User.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(context.Background(), &domain.LoginRequest{
			Username: "vendor1",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := env.auth.Login(context.Background(), &domain.LoginRequest{
			Username: "nobody",
			Password: "password123",
		})
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("inactive account", func(t *testing.T) {
		require.NoError(t, env.db.Model(&domain.User{}).
			Where("id = ?", user.ID).
			Update("active", false).Error)

		_, err := env.auth.Login(context.Background(), &domain.LoginRequest{
			Username: "vendor1",
			Password: "password123",
		})
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestAuthService_CreateUser(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.CreateUser(context.Background(), &domain.CreateUserRequest{
		Username: "purchaser1",
		Password: "password123",
		Name:     "Purchaser One",
		Email:    "purchaser@example.com",
		Role:     domain.RolePurchasing,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RolePurchasing, user.Role)
	assert.True(t, user.Active)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := env.auth.CreateUser(context.Background(), &domain.CreateUserRequest{
			Username: "purchaser1",
			Password: "password123",
			Name:     "Impostor",
			Email:    "other@example.com",
			Role:     domain.RoleVendor,
		})
		assert.ErrorIs(t, err, service.ErrUsernameTaken)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := env.auth.CreateUser(context.Background(), &domain.CreateUserRequest{
			Username: "weird",
			Password: "password123",
			Name:     "Weird Role",
			Email:    "weird@example.com",
			Role:     domain.Role("janitor"),
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestAuthService_RegisterInstaller_AutoSign(t *testing.T) {
	env := newTestEnv(t)

	contractText := strings.Repeat("I agree to the terms of service. ", 10)
	resp, err := env.auth.RegisterInstaller(context.Background(), &domain.RegisterInstallerRequest{
		Username:     "installer1",
		Password:     "password123",
		Name:         "Installer One",
		Email:        "installer@example.com",
		ContractText: contractText,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleInstaller, resp.User.Role)
	assert.True(t, resp.User.Active)

	require.NotNil(t, resp.Contract)
	assert.Equal(t, domain.ContractTypeInstallerService, resp.Contract.Type)
	assert.Equal(t, domain.ContractStatusSigned, resp.Contract.Status)
	assert.True(t, resp.Contract.IsSigned)
	assert.Equal(t, "Installer One", resp.Contract.SignerName)
	require.NotNil(t, resp.Contract.InstallerID)
	assert.Equal(t, resp.User.ID, *resp.Contract.InstallerID)

	// The auto-sign leaves a communication row
	var comms []domain.ContractCommunication
	require.NoError(t, env.db.Where("contract_id = ?", resp.Contract.ID).Find(&comms).Error)
	require.Len(t, comms, 1)
	assert.Equal(t, "signature", comms[0].Kind)

	// The new installer can log in right away
	login, err := env.auth.Login(context.Background(), &domain.LoginRequest{
		Username: "installer1",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}

func TestAuthService_RegisterInstaller_ShortTextStaysUnsigned(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.RegisterInstaller(context.Background(), &domain.RegisterInstallerRequest{
		Username:     "installer2",
		Password:     "password123",
		Name:         "Installer Two",
		Email:        "installer2@example.com",
		ContractText: "ok",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Contract)
	assert.Equal(t, domain.ContractStatusSent, resp.Contract.Status)
	assert.False(t, resp.Contract.IsSigned)

	// The unsigned contract carries a permanent link the installer can sign later
	require.NotNil(t, resp.Contract.SignatureToken)
	assert.Len(t, *resp.Contract.SignatureToken, 36)
	assert.Nil(t, resp.Contract.ExpiresAt)

	public, err := env.contracts.FetchByToken(context.Background(), *resp.Contract.SignatureToken)
	require.NoError(t, err)
	assert.False(t, public.IsSigned)
}

func TestAuthService_RegisterInstaller_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateTestUser(t, env.db, "taken", domain.RoleVendor)

	_, err := env.auth.RegisterInstaller(context.Background(), &domain.RegisterInstallerRequest{
		Username: "taken",
		Password: "password123",
		Name:     "Dup",
		Email:    "dup@example.com",
	})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)

	me, err := env.auth.GetCurrentUser(ctxFor(user))
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, user.Username, me.Username)

	_, err = env.auth.GetCurrentUser(context.Background())
	assert.ErrorIs(t, err, service.ErrUserContextRequired)
}
