package service_test

import (
	"context"
	"testing"

	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/config"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/repository"
	"github.com/monterra-as/installer-api/internal/service"
	"github.com/monterra-as/installer-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv wires the full service stack against an in-memory database
type testEnv struct {
	db *gorm.DB

	userRepo         *repository.UserRepository
	quoteRepo        *repository.QuoteRepository
	projectRepo      *repository.ProjectRepository
	contractRepo     *repository.ContractRepository
	incidentRepo     *repository.IncidentRepository
	notificationRepo *repository.NotificationRepository

	notifications *service.NotificationService
	sequences     *service.NumberSequenceService
	auth          *service.AuthService
	quotes        *service.QuoteService
	contracts     *service.ContractService
	projects      *service.ProjectService
	incidents     *service.IncidentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	contractRepo := repository.NewContractRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)

	notifications := service.NewNotificationService(notificationRepo, log)
	sequences := service.NewNumberSequenceService(sequenceRepo, log)

	issuer, err := auth.NewTokenIssuer(&config.AuthConfig{
		SigningKey:    "test-signing-key-at-least-32-chars-long",
		TokenTTLHours: 1,
		Issuer:        "installer-api-test",
	})
	require.NoError(t, err)

	return &testEnv{
		db:               db,
		userRepo:         userRepo,
		quoteRepo:        quoteRepo,
		projectRepo:      projectRepo,
		contractRepo:     contractRepo,
		incidentRepo:     incidentRepo,
		notificationRepo: notificationRepo,
		notifications:    notifications,
		sequences:        sequences,
		auth:             service.NewAuthService(userRepo, issuer, db, log),
		quotes:           service.NewQuoteService(quoteRepo, userRepo, sequences, notifications, db, log),
		contracts:        service.NewContractService(contractRepo, notifications, db, log),
		projects:         service.NewProjectService(projectRepo, userRepo, sequences, notifications, db, log),
		incidents:        service.NewIncidentService(incidentRepo, projectRepo, sequences, notifications, db, log),
	}
}

// ctxFor builds a request context carrying the given user's identity
func ctxFor(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.Name,
		Email:       user.Email,
		Role:        user.Role,
	})
}
