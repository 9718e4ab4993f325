package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/service"
	"github.com/monterra-as/installer-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createIncident(t *testing.T, env *testEnv, ctx context.Context, projectID uuid.UUID) *domain.IncidentDTO {
	t.Helper()
	incident, err := env.incidents.Create(ctx, &domain.CreateIncidentRequest{
		ProjectID:   projectID,
		Type:        "extra_work",
		Priority:    "high",
		Title:       "Broken roof tile",
		Description: "Tile cracked during mounting",
		Items: []domain.CreateIncidentItemRequest{
			{ProductName: "Roof tile", Quantity: 4, UnitPrice: 75},
		},
	})
	require.NoError(t, err)
	return incident
}

func TestIncidentService_Create(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)
	incident := createIncident(t, env, ctx, project.ID)

	assert.Equal(t, domain.IncidentStatusPending, incident.Status)
	assert.Regexp(t, `^INC-\d{5}$`, incident.IncidentNumber)
	assert.Equal(t, 4*75.0, incident.TotalCost)
	assert.Equal(t, project.ID, incident.ProjectID)
	assert.Equal(t, vendor.ID, incident.CreatedByID)
	assert.Len(t, incident.Items, 1)
}

func TestIncidentService_Create_TotalCostWithoutItems(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)

	cost := 450.0
	incident, err := env.incidents.Create(ctx, &domain.CreateIncidentRequest{
		ProjectID: project.ID,
		Type:      "damage",
		Priority:  "medium",
		Title:     "Scratched facade",
		TotalCost: &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, 450.0, incident.TotalCost)
	assert.Empty(t, incident.Items)

	// With items the caller value is ignored and the total comes from them
	withItems, err := env.incidents.Create(ctx, &domain.CreateIncidentRequest{
		ProjectID: project.ID,
		Type:      "extra_work",
		Priority:  "low",
		Title:     "Extra cabling",
		TotalCost: &cost,
		Items: []domain.CreateIncidentItemRequest{
			{ProductName: "Solar cable 6mm", Quantity: 10, UnitPrice: 22},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 220.0, withItems.TotalCost)
}

func TestIncidentService_Create_UnknownProject(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)

	_, err := env.incidents.Create(ctxFor(vendor), &domain.CreateIncidentRequest{
		ProjectID: uuid.New(),
		Type:      "extra_work",
		Priority:  "low",
		Title:     "Ghost incident",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestIncidentService_Create_SequentialNumbers(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)
	first := createIncident(t, env, ctx, project.ID)
	second := createIncident(t, env, ctx, project.ID)

	assert.NotEqual(t, first.IncidentNumber, second.IncidentNumber)
}

func TestIncidentService_UpdateStatus_Transitions(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)
	incident := createIncident(t, env, ctx, project.ID)

	// Pending cannot skip straight to in_progress
	_, err := env.incidents.UpdateStatus(ctxFor(admin), incident.ID, &domain.UpdateIncidentStatusRequest{
		Status: domain.IncidentStatusInProgress,
	})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	approved, err := env.incidents.UpdateStatus(ctxFor(admin), incident.ID, &domain.UpdateIncidentStatusRequest{
		Status:  domain.IncidentStatusApproved,
		Comment: "Approved for extra billing",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusApproved, approved.Status)

	// Each move appends a history row
	stored, err := env.incidentRepo.GetByID(context.Background(), incident.ID)
	require.NoError(t, err)
	require.Len(t, stored.History, 2)

	// The reporter hears about someone else's change
	var count int64
	require.NoError(t, env.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", vendor.ID, string(domain.NotificationTypeIncidentUpdate)).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIncidentService_Update_OnlyWhilePending(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)
	incident := createIncident(t, env, ctx, project.ID)

	updated, err := env.incidents.Update(ctx, incident.ID, &domain.UpdateIncidentRequest{
		Type:     "extra_work",
		Priority: "critical",
		Title:    "Broken roof tile",
		Items: []domain.CreateIncidentItemRequest{
			{ProductName: "Roof tile", Quantity: 8, UnitPrice: 75},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "critical", updated.Priority)
	assert.Equal(t, 8*75.0, updated.TotalCost)

	_, err = env.incidents.UpdateStatus(ctxFor(admin), incident.ID, &domain.UpdateIncidentStatusRequest{
		Status: domain.IncidentStatusApproved,
	})
	require.NoError(t, err)

	_, err = env.incidents.Update(ctx, incident.ID, &domain.UpdateIncidentRequest{
		Type:     "extra_work",
		Priority: "low",
		Title:    "Too late",
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestIncidentService_List_RoleScoped(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	other := testutil.CreateTestUser(t, env.db, "vendor2", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)

	mine := createProject(t, env, ctxFor(vendor))
	theirs := createProject(t, env, ctxFor(other))

	createIncident(t, env, ctxFor(vendor), mine.ID)
	createIncident(t, env, ctxFor(other), theirs.ID)

	all, err := env.incidents.List(ctxFor(admin), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := env.incidents.List(ctxFor(vendor), nil)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestIncidentService_Delete_OnlyWhilePending(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)
	incident := createIncident(t, env, ctx, project.ID)

	_, err := env.incidents.UpdateStatus(ctxFor(admin), incident.ID, &domain.UpdateIncidentStatusRequest{
		Status: domain.IncidentStatusApproved,
	})
	require.NoError(t, err)

	err = env.incidents.Delete(ctx, incident.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	fresh := createIncident(t, env, ctx, project.ID)
	assert.NoError(t, env.incidents.Delete(ctx, fresh.ID))
}
