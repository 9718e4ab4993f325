package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/service"
	"github.com/monterra-as/installer-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createDraftContract(t *testing.T, env *testEnv, ctx context.Context) *domain.ContractDTO {
	t.Helper()
	contract, err := env.contracts.Create(ctx, &domain.CreateContractRequest{
		Type:        domain.ContractTypeService,
		Title:       "Maintenance agreement",
		TotalAmount: 5000,
		ClientName:  "Acme Client",
	})
	require.NoError(t, err)
	return contract
}

func TestContractService_Create(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)

	contract := createDraftContract(t, env, ctxFor(vendor))

	assert.Equal(t, domain.ContractStatusDraft, contract.Status)
	assert.False(t, contract.IsSigned)
	assert.Nil(t, contract.SignatureToken)
	assert.NotEmpty(t, contract.ContractNumber)
	require.NotNil(t, contract.VendorID)
	assert.Equal(t, vendor.ID, *contract.VendorID)
}

func TestContractService_Create_RejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)

	_, err := env.contracts.Create(ctxFor(vendor), &domain.CreateContractRequest{
		Type:  domain.ContractType("lease"),
		Title: "Nope",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestContractService_GenerateLink_Permanent(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)

	link, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{Permanent: true})
	require.NoError(t, err)

	assert.Len(t, link.SignatureToken, 36)
	assert.Nil(t, link.ExpiresAt)
	assert.Equal(t, domain.ContractStatusSent, link.Status)
}

func TestContractService_GenerateLink_TimeBoxed(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)

	link, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{ExpiryHours: 24})
	require.NoError(t, err)

	assert.Len(t, link.SignatureToken, 32)
	require.NotNil(t, link.ExpiresAt)

	deadline, err := time.Parse(time.RFC3339, *link.ExpiresAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), deadline, time.Minute)
}

func TestContractService_GenerateLink_DefaultExpiry(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)

	link, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{})
	require.NoError(t, err)

	require.NotNil(t, link.ExpiresAt)
	deadline, err := time.Parse(time.RFC3339, *link.ExpiresAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(72*time.Hour), deadline, time.Minute)
}

func TestContractService_GenerateLink_ConflictWithoutRegenerate(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)

	first, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{Permanent: true})
	require.NoError(t, err)

	_, err = env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{Permanent: true})
	assert.ErrorIs(t, err, service.ErrConflict)

	second, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{Permanent: true, Regenerate: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.SignatureToken, second.SignatureToken)
}

func TestContractService_FetchByToken_NilExpiryNeverExpires(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)
	link, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{Permanent: true})
	require.NoError(t, err)

	public, err := env.contracts.FetchByToken(context.Background(), link.SignatureToken)
	require.NoError(t, err)
	assert.Equal(t, contract.ContractNumber, public.ContractNumber)
	assert.False(t, public.IsSigned)
	assert.Nil(t, public.ExpiresAt)
}

func TestContractService_FetchByToken_ExpiredLink(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)
	link, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{ExpiryHours: 1})
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, env.db.Model(&domain.Contract{}).
		Where("id = ?", contract.ID).
		Update("expires_at", past).Error)

	_, err = env.contracts.FetchByToken(context.Background(), link.SignatureToken)
	assert.ErrorIs(t, err, service.ErrExpired)

	_, err = env.contracts.Sign(context.Background(), link.SignatureToken, &domain.SignContractRequest{
		SignerName:    "Late Signer",
		SignatureData: "data:image/png;base64,AAAA",
	})
	assert.ErrorIs(t, err, service.ErrExpired)
}

func TestContractService_Sign(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)
	link, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{Permanent: true})
	require.NoError(t, err)

	signed, err := env.contracts.Sign(context.Background(), link.SignatureToken, &domain.SignContractRequest{
		SignerName:    "Jo Signer",
		SignatureData: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)
	assert.True(t, signed.IsSigned)
	assert.Equal(t, "Jo Signer", signed.SignerName)
	assert.NotNil(t, signed.SignedAt)

	// Signing leaves a communication row
	var comms []domain.ContractCommunication
	require.NoError(t, env.db.Where("contract_id = ?", contract.ID).Find(&comms).Error)
	require.Len(t, comms, 1)
	assert.Equal(t, "signature", comms[0].Kind)
	assert.Equal(t, "Jo Signer", comms[0].ActorName)

	// The vendor is notified
	var count int64
	require.NoError(t, env.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", vendor.ID, string(domain.NotificationTypeContractSigned)).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestContractService_Sign_SecondSignConflicts(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)
	link, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{Permanent: true})
	require.NoError(t, err)

	_, err = env.contracts.Sign(context.Background(), link.SignatureToken, &domain.SignContractRequest{
		SignerName:    "First Signer",
		SignatureData: "first-signature",
	})
	require.NoError(t, err)

	_, err = env.contracts.Sign(context.Background(), link.SignatureToken, &domain.SignContractRequest{
		SignerName:    "Second Signer",
		SignatureData: "second-signature",
	})
	assert.ErrorIs(t, err, service.ErrAlreadySigned)

	// The original signature is untouched
	stored, err := env.contractRepo.GetByID(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "First Signer", stored.SignerName)
	assert.Equal(t, "first-signature", stored.SignatureData)

	// A signed contract still renders behind the token
	public, err := env.contracts.FetchByToken(context.Background(), link.SignatureToken)
	require.NoError(t, err)
	assert.True(t, public.IsSigned)
}

func TestContractService_DeleteLink(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)
	link, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{Permanent: true})
	require.NoError(t, err)

	require.NoError(t, env.contracts.DeleteLink(ctx, contract.ID))

	_, err = env.contracts.FetchByToken(context.Background(), link.SignatureToken)
	assert.ErrorIs(t, err, service.ErrNotFound)

	stored, err := env.contractRepo.GetByID(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SignatureToken)
	assert.Equal(t, domain.ContractStatusDraft, stored.Status)
}

func TestContractService_DeleteLink_SignedContractRefuses(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)
	link, err := env.contracts.GenerateLink(ctx, contract.ID, &domain.GenerateLinkRequest{Permanent: true})
	require.NoError(t, err)
	_, err = env.contracts.Sign(context.Background(), link.SignatureToken, &domain.SignContractRequest{
		SignerName:    "Jo Signer",
		SignatureData: "sig",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, env.contracts.DeleteLink(ctx, contract.ID), service.ErrAlreadySigned)
}

func TestContractService_Delete(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	contract := createDraftContract(t, env, ctx)
	require.NoError(t, env.contracts.Delete(ctx, contract.ID))

	_, err := env.contractRepo.GetByID(context.Background(), contract.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestContractService_List_RoleScoped(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	other := testutil.CreateTestUser(t, env.db, "vendor2", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	installer := testutil.CreateTestUser(t, env.db, "installer1", domain.RoleInstaller)

	createDraftContract(t, env, ctxFor(vendor))
	createDraftContract(t, env, ctxFor(other))

	_, err := env.contracts.Create(ctxFor(vendor), &domain.CreateContractRequest{
		Type:        domain.ContractTypeInstallerService,
		Title:       "Installer agreement",
		InstallerID: &installer.ID,
	})
	require.NoError(t, err)

	all, err := env.contracts.List(ctxFor(admin))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := env.contracts.List(ctxFor(vendor))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assigned, err := env.contracts.List(ctxFor(installer))
	require.NoError(t, err)
	assert.Len(t, assigned, 1)
}
