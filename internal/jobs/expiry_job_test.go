package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/jobs"
	"github.com/monterra-as/installer-api/internal/repository"
	"github.com/monterra-as/installer-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedQuote(t *testing.T, db *gorm.DB, vendor *domain.User, status domain.QuoteStatus, expiresAt *time.Time, token string) *domain.Quote {
	t.Helper()
	quote := &domain.Quote{
		QuoteNumber: testutil.UniqueNumber("QT"),
		VendorID:    vendor.ID,
		ClientName:  "Client",
		Status:      status,
		QuoteToken:  token,
		ExpiresAt:   expiresAt,
	}
	require.NoError(t, db.Create(quote).Error)
	return quote
}

func TestExpirySweepJob_Run(t *testing.T) {
	db := testutil.SetupTestDB(t)
	vendor := testutil.CreateTestUser(t, db, "vendor1", domain.RoleVendor)

	quoteRepo := repository.NewQuoteRepository(db)
	contractRepo := repository.NewContractRepository(db)

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(48 * time.Hour)
	soon := time.Now().UTC().Add(time.Hour)

	overdue := seedQuote(t, db, vendor, domain.QuoteStatusPublished, &past, "token-overdue")
	current := seedQuote(t, db, vendor, domain.QuoteStatusPublished, &future, "token-current")
	forever := seedQuote(t, db, vendor, domain.QuoteStatusPublished, nil, "token-forever")
	draft := seedQuote(t, db, vendor, domain.QuoteStatusDraft, &past, "token-draft")

	linkToken := "abcdef0123456789abcdef0123456789"
	contract := &domain.Contract{
		ContractNumber: testutil.UniqueNumber("CT"),
		Type:           domain.ContractTypeService,
		Title:          "Soon to lapse",
		Status:         domain.ContractStatusSent,
		SignatureToken: &linkToken,
		ExpiresAt:      &soon,
	}
	require.NoError(t, db.Create(contract).Error)

	job := jobs.NewExpirySweepJob(quoteRepo, contractRepo, zap.NewNop(), time.Minute)
	job.Run()

	assertStatus := func(id uuid.UUID, want domain.QuoteStatus) {
		var quote domain.Quote
		require.NoError(t, db.First(&quote, "id = ?", id).Error)
		assert.Equal(t, want, quote.Status)
	}

	// Only the published quote past its deadline flips
	assertStatus(overdue.ID, domain.QuoteStatusExpired)
	assertStatus(current.ID, domain.QuoteStatusPublished)
	assertStatus(forever.ID, domain.QuoteStatusPublished)
	assertStatus(draft.ID, domain.QuoteStatusDraft)

	// Running again is a no-op
	expired, err := quoteRepo.ExpirePublishedBefore(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, expired)

	// The expiring link shows up in the warning window
	expiring, err := contractRepo.ListLinksExpiringBefore(context.Background(), time.Now().UTC().Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, contract.ID, expiring[0].ID)
}

func TestScheduler_AddAndRemoveJob(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, scheduler.AddJob("sweep", "0 0 * * * *", func() {}))
	assert.Contains(t, scheduler.GetJobNames(), "sweep")

	// Duplicate names are rejected
	assert.Error(t, scheduler.AddJob("sweep", "0 0 * * * *", func() {}))

	// Bad cron expressions are rejected
	assert.Error(t, scheduler.AddJob("broken", "not-a-cron", func() {}))

	require.NoError(t, scheduler.RemoveJob("sweep"))
	assert.NotContains(t, scheduler.GetJobNames(), "sweep")

	// Removing an unknown job reports it
	assert.Error(t, scheduler.RemoveJob("sweep"))
}
