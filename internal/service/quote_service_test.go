package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/service"
	"github.com/monterra-as/installer-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createDraftQuote(t *testing.T, env *testEnv, ctx context.Context) *domain.QuoteDTO {
	t.Helper()
	quote, err := env.quotes.Create(ctx, &domain.CreateQuoteRequest{
		ClientName:  "Acme Client",
		ClientEmail: "client@example.com",
		Items: []domain.CreateQuoteItemRequest{
			{ProductName: "Solar panel", Quantity: 10, UnitPrice: 250},
			{ProductName: "Inverter", Quantity: 1, UnitPrice: 1200},
		},
	})
	require.NoError(t, err)
	return quote
}

func TestQuoteService_Create_ComputesTotalFromItems(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)

	assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
	assert.Equal(t, 10*250.0+1200.0, quote.TotalCost)
	assert.Len(t, quote.Items, 2)
	assert.Equal(t, 2500.0, quote.Items[0].Subtotal)
	assert.NotEmpty(t, quote.QuoteNumber)
	assert.NotEmpty(t, quote.QuoteToken)
	assert.Equal(t, vendor.ID, quote.VendorID)
}

func TestQuoteService_Create_RequiresItems(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)

	_, err := env.quotes.Create(ctxFor(vendor), &domain.CreateQuoteRequest{
		ClientName: "Acme Client",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestQuoteService_Create_RequiresUserContext(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.quotes.Create(context.Background(), &domain.CreateQuoteRequest{
		ClientName: "Acme Client",
		Items:      []domain.CreateQuoteItemRequest{{ProductName: "Panel", Quantity: 1, UnitPrice: 100}},
	})
	assert.ErrorIs(t, err, service.ErrUserContextRequired)
}

func TestQuoteService_UpdateStatus_Transitions(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)

	published, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusPublished, published.Status)

	back, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusDraft)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusDraft, back.Status)

	// A draft cannot jump straight to accepted; acceptance is a separate path
	_, err = env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusAccepted)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestQuoteService_UpdateStatus_OtherVendorDenied(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	other := testutil.CreateTestUser(t, env.db, "vendor2", domain.RoleVendor)

	quote := createDraftQuote(t, env, ctxFor(vendor))

	_, err := env.quotes.UpdateStatus(ctxFor(other), quote.ID, domain.QuoteStatusPublished)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestQuoteService_Delete_RemovesThroughTransitionPath(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)

	require.NoError(t, env.quotes.Delete(ctx, quote.ID))

	_, err := env.quotes.GetByID(ctx, quote.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestQuoteService_Delete_BlockedOnAccepted(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)
	_, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusPublished)
	require.NoError(t, err)
	_, err = env.quotes.AcceptPublic(context.Background(), quote.QuoteToken, nil)
	require.NoError(t, err)

	err = env.quotes.Delete(ctx, quote.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestQuoteService_GetPublicByToken(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)

	t.Run("draft is invisible", func(t *testing.T) {
		_, err := env.quotes.GetPublicByToken(context.Background(), quote.QuoteToken)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	_, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusPublished)
	require.NoError(t, err)

	t.Run("published is visible without notes", func(t *testing.T) {
		public, err := env.quotes.GetPublicByToken(context.Background(), quote.QuoteToken)
		require.NoError(t, err)
		assert.Equal(t, quote.QuoteNumber, public.QuoteNumber)
		assert.Equal(t, quote.TotalCost, public.TotalCost)
		assert.Len(t, public.Items, 2)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.quotes.GetPublicByToken(context.Background(), "no-such-token")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestQuoteService_GetPublicByToken_LazyExpiry(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)
	_, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusPublished)
	require.NoError(t, err)

	// Push the expiry into the past behind the service's back
	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, env.db.Model(&domain.Quote{}).
		Where("id = ?", quote.ID).
		Update("expires_at", past).Error)

	_, err = env.quotes.GetPublicByToken(context.Background(), quote.QuoteToken)
	assert.ErrorIs(t, err, service.ErrExpired)

	// The read path flipped the stored status
	stored, err := env.quoteRepo.GetByID(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusExpired, stored.Status)

	// Expired quotes can no longer be accepted
	_, err = env.quotes.AcceptPublic(context.Background(), quote.QuoteToken, nil)
	assert.ErrorIs(t, err, service.ErrExpired)
}

func TestQuoteService_AcceptPublic_CreatesProject(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)
	_, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusPublished)
	require.NoError(t, err)

	resp, err := env.quotes.AcceptPublic(context.Background(), quote.QuoteToken, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Quote)
	require.NotNil(t, resp.Project)

	assert.Equal(t, domain.QuoteStatusAccepted, resp.Quote.Status)
	assert.NotNil(t, resp.Quote.AcceptedAt)
	require.NotNil(t, resp.Quote.ProjectID)
	assert.Equal(t, resp.Project.ID, *resp.Quote.ProjectID)

	assert.Equal(t, domain.ProjectStatusApproved, resp.Project.Status)
	assert.Equal(t, "system", resp.Project.ApprovedByName)
	assert.Equal(t, quote.TotalCost, resp.Project.TotalCost)
	assert.Equal(t, vendor.ID, resp.Project.CreatedByID)
	assert.Regexp(t, `^PRJ-\d{4}-\d{4}$`, resp.Project.InvoiceNumber)

	// Items are copied over, not shared
	require.Len(t, resp.Project.Items, 2)
	assert.Equal(t, quote.Items[0].ProductName, resp.Project.Items[0].ProductName)
	assert.Equal(t, quote.Items[0].Quantity, resp.Project.Items[0].Quantity)
	assert.Equal(t, quote.Items[0].UnitPrice, resp.Project.Items[0].UnitPrice)

	// The acceptance left a history row attributed to the system
	project, err := env.projectRepo.GetByID(context.Background(), resp.Project.ID)
	require.NoError(t, err)
	require.Len(t, project.History, 1)
	assert.Equal(t, "created", project.History[0].Action)
	assert.Equal(t, "system", project.History[0].UserName)
}

func TestQuoteService_AcceptPublic_DownPaymentStatus(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)
	_, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusPublished)
	require.NoError(t, err)

	resp, err := env.quotes.AcceptPublic(context.Background(), quote.QuoteToken, &domain.AcceptQuoteRequest{
		DownPaymentStatus: "paid",
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Project.DownPaymentStatus)

	stored, err := env.projectRepo.GetByID(context.Background(), resp.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", stored.DownPaymentStatus)
}

func TestQuoteService_AcceptPublic_DoubleAcceptConflicts(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)
	_, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusPublished)
	require.NoError(t, err)

	first, err := env.quotes.AcceptPublic(context.Background(), quote.QuoteToken, nil)
	require.NoError(t, err)

	_, err = env.quotes.AcceptPublic(context.Background(), quote.QuoteToken, nil)
	assert.ErrorIs(t, err, service.ErrConflict)

	// Exactly one project exists for this quote
	var count int64
	require.NoError(t, env.db.Model(&domain.Project{}).
		Where("quote_id = ?", quote.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The accepted page stays reachable for the client
	public, err := env.quotes.GetPublicByToken(context.Background(), quote.QuoteToken)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusAccepted, public.Status)
	assert.Equal(t, first.Quote.QuoteNumber, public.QuoteNumber)
}

func TestQuoteService_AcceptPublic_NotifiesVendorAndAdmins(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)
	_, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusPublished)
	require.NoError(t, err)
	_, err = env.quotes.AcceptPublic(context.Background(), quote.QuoteToken, nil)
	require.NoError(t, err)

	var vendorCount int64
	require.NoError(t, env.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", vendor.ID, string(domain.NotificationTypeQuoteAccepted)).
		Count(&vendorCount).Error)
	assert.Equal(t, int64(1), vendorCount)

	var adminCount int64
	require.NoError(t, env.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", admin.ID, string(domain.NotificationTypeQuoteAccepted)).
		Count(&adminCount).Error)
	assert.Equal(t, int64(1), adminCount)
}

func TestQuoteService_Update_EditsMetadataOnly(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	quote := createDraftQuote(t, env, ctx)

	updated, err := env.quotes.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{
		ClientName: "Renamed Client",
		Notes:      "internal note",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Client", updated.ClientName)
	assert.Equal(t, quote.TotalCost, updated.TotalCost)
	assert.Len(t, updated.Items, 2)
}

func TestQuoteService_ListForVendor_ScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	other := testutil.CreateTestUser(t, env.db, "vendor2", domain.RoleVendor)

	createDraftQuote(t, env, ctxFor(vendor))
	createDraftQuote(t, env, ctxFor(vendor))
	createDraftQuote(t, env, ctxFor(other))

	mine, err := env.quotes.ListForVendor(ctxFor(vendor), nil)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	status := domain.QuoteStatusPublished
	published, err := env.quotes.ListForVendor(ctxFor(vendor), &status)
	require.NoError(t, err)
	assert.Empty(t, published)
}

func TestQuoteService_GetByID_Visibility(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	other := testutil.CreateTestUser(t, env.db, "vendor2", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)

	quote := createDraftQuote(t, env, ctxFor(vendor))

	_, err := env.quotes.GetByID(ctxFor(vendor), quote.ID)
	assert.NoError(t, err)

	_, err = env.quotes.GetByID(ctxFor(admin), quote.ID)
	assert.NoError(t, err)

	_, err = env.quotes.GetByID(ctxFor(other), quote.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = env.quotes.GetByID(ctxFor(vendor), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
