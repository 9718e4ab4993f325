package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/config"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(&config.AuthConfig{
		SigningKey:    "test-signing-key-at-least-32-chars-long",
		TokenTTLHours: 1,
		Issuer:        "installer-api-test",
	})
	require.NoError(t, err)
	return issuer
}

func testUser(role domain.Role) *domain.User {
	user := &domain.User{
		Username: "testuser",
		Name:     "Test User",
		Email:    "test@example.com",
		Role:     role,
	}
	user.ID = uuid.New()
	return user
}

func TestNewTokenIssuer_RequiresSigningKey(t *testing.T) {
	_, err := auth.NewTokenIssuer(&config.AuthConfig{})
	assert.Error(t, err)
}

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := testIssuer(t)
	user := testUser(domain.RoleVendor)

	token, err := issuer.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, user.Username, userCtx.Username)
	assert.Equal(t, user.Name, userCtx.DisplayName)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, domain.RoleVendor, userCtx.Role)
}

func TestTokenIssuer_Validate_RejectsGarbage(t *testing.T) {
	issuer := testIssuer(t)

	_, err := issuer.Validate("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = issuer.Validate("")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_Validate_RejectsWrongKey(t *testing.T) {
	issuer := testIssuer(t)
	user := testUser(domain.RoleAdmin)

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	other, err := auth.NewTokenIssuer(&config.AuthConfig{
		SigningKey:    "a-completely-different-signing-key-here",
		TokenTTLHours: 1,
		Issuer:        "installer-api-test",
	})
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_Validate_RejectsWrongIssuer(t *testing.T) {
	minted, err := auth.NewTokenIssuer(&config.AuthConfig{
		SigningKey:    "test-signing-key-at-least-32-chars-long",
		TokenTTLHours: 1,
		Issuer:        "someone-else",
	})
	require.NoError(t, err)

	token, err := minted.Issue(testUser(domain.RoleVendor))
	require.NoError(t, err)

	_, err = testIssuer(t).Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, auth.CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, auth.CheckPassword(hash, "wrong password"))
}
