package service_test

import (
	"context"
	"testing"

	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/service"
	"github.com/monterra-as/installer-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createProject(t *testing.T, env *testEnv, ctx context.Context) *domain.ProjectDTO {
	t.Helper()
	project, err := env.projects.Create(ctx, &domain.CreateProjectRequest{
		ProjectName: "Rooftop install",
		ClientName:  "Acme Client",
		Items: []domain.CreateProjectItemRequest{
			{ProductName: "Solar panel", Quantity: 10, UnitPrice: 250},
			{ProductName: "Mounting rail", Quantity: 20, UnitPrice: 45},
		},
	})
	require.NoError(t, err)
	return project
}

func TestProjectService_Create(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)

	project := createProject(t, env, ctxFor(vendor))

	assert.Equal(t, domain.ProjectStatusPendingApproval, project.Status)
	assert.Equal(t, 10*250.0+20*45.0, project.TotalCost)
	assert.Regexp(t, `^PRJ-\d{4}-\d{4}$`, project.InvoiceNumber)
	assert.Equal(t, vendor.ID, project.CreatedByID)
	assert.Len(t, project.Items, 2)

	// Creation writes the first history row
	require.Len(t, project.History, 1)
	assert.Equal(t, "created", project.History[0].Action)
}

func TestProjectService_Create_SequentialInvoiceNumbers(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	first := createProject(t, env, ctx)
	second := createProject(t, env, ctx)

	assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
}

func TestProjectService_List_RoleScoped(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	other := testutil.CreateTestUser(t, env.db, "vendor2", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	installer := testutil.CreateTestUser(t, env.db, "installer1", domain.RoleInstaller)

	mine := createProject(t, env, ctxFor(vendor))
	createProject(t, env, ctxFor(other))

	_, err := env.projects.AssignInstaller(ctxFor(admin), mine.ID, &domain.AssignInstallerRequest{
		InstallerID: installer.ID,
	})
	require.NoError(t, err)

	all, err := env.projects.List(ctxFor(admin), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := env.projects.List(ctxFor(vendor), nil)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	assigned, err := env.projects.List(ctxFor(installer), nil)
	require.NoError(t, err)
	assert.Len(t, assigned, 1)
}

func TestProjectService_UpdateStatus_AppendsHistory(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)

	updated, err := env.projects.UpdateStatus(ctxFor(admin), project.ID, &domain.UpdateProjectStatusRequest{
		Status:  domain.ProjectStatusApproved,
		Comment: "Looks good",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusApproved, updated.Status)

	stored, err := env.projectRepo.GetByID(context.Background(), project.ID)
	require.NoError(t, err)
	require.Len(t, stored.History, 2)
	assert.Equal(t, "status_changed", stored.History[1].Action)
	assert.Equal(t, "Looks good", stored.History[1].Comment)

	// The creator hears about someone else's change
	var count int64
	require.NoError(t, env.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", vendor.ID, string(domain.NotificationTypeProjectUpdate)).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProjectService_Update_ItemDiffNotifiesAdmins(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)

	updated, err := env.projects.Update(ctx, project.ID, &domain.UpdateProjectRequest{
		ProjectName: project.ProjectName,
		ClientName:  project.ClientName,
		Items: []domain.CreateProjectItemRequest{
			{ProductName: "Solar panel", Quantity: 12, UnitPrice: 250},
			{ProductName: "Optimizer", Quantity: 12, UnitPrice: 80},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 12*250.0+12*80.0, updated.TotalCost)
	assert.Len(t, updated.Items, 2)

	var notifications []domain.Notification
	require.NoError(t, env.db.
		Where("user_id = ? AND type = ?", admin.ID, string(domain.NotificationTypeProjectItemsEdited)).
		Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "Solar panel qty 10 -> 12")
	assert.Contains(t, notifications[0].Message, "Optimizer added")
	assert.Contains(t, notifications[0].Message, "Mounting rail removed")
}

func TestProjectService_Update_AdminItemEditDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)

	project := createProject(t, env, ctxFor(vendor))

	_, err := env.projects.Update(ctxFor(admin), project.ID, &domain.UpdateProjectRequest{
		ProjectName: project.ProjectName,
		ClientName:  project.ClientName,
		Items: []domain.CreateProjectItemRequest{
			{ProductName: "Solar panel", Quantity: 8, UnitPrice: 250},
		},
	})
	require.NoError(t, err)

	// Only vendor-authored quantity changes fan out to admins
	var count int64
	require.NoError(t, env.db.Model(&domain.Notification{}).
		Where("type = ?", string(domain.NotificationTypeProjectItemsEdited)).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestProjectService_Update_NoItemChangeNoNotification(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)

	_, err := env.projects.Update(ctx, project.ID, &domain.UpdateProjectRequest{
		ProjectName: "Renamed install",
		ClientName:  project.ClientName,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", admin.ID, string(domain.NotificationTypeProjectItemsEdited)).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestProjectService_Update_VendorBlockedAfterApproval(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)

	project := createProject(t, env, ctxFor(vendor))

	_, err := env.projects.UpdateStatus(ctxFor(admin), project.ID, &domain.UpdateProjectStatusRequest{
		Status: domain.ProjectStatusApproved,
	})
	require.NoError(t, err)

	_, err = env.projects.Update(ctxFor(vendor), project.ID, &domain.UpdateProjectRequest{
		ProjectName: "Too late",
		ClientName:  project.ClientName,
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	// Admins can still edit
	_, err = env.projects.Update(ctxFor(admin), project.ID, &domain.UpdateProjectRequest{
		ProjectName: "Admin edit",
		ClientName:  project.ClientName,
	})
	assert.NoError(t, err)
}

func TestProjectService_AssignInstaller(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	installer := testutil.CreateTestUser(t, env.db, "installer1", domain.RoleInstaller)

	project := createProject(t, env, ctxFor(vendor))

	assigned, err := env.projects.AssignInstaller(ctxFor(admin), project.ID, &domain.AssignInstallerRequest{
		InstallerID: installer.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedInstallerID)
	assert.Equal(t, installer.ID, *assigned.AssignedInstallerID)

	var count int64
	require.NoError(t, env.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", installer.ID, string(domain.NotificationTypeProjectAssigned)).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	t.Run("non installer rejected", func(t *testing.T) {
		_, err := env.projects.AssignInstaller(ctxFor(admin), project.ID, &domain.AssignInstallerRequest{
			InstallerID: vendor.ID,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestProjectService_InstallerPriceFlow(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	installer := testutil.CreateTestUser(t, env.db, "installer1", domain.RoleInstaller)

	project := createProject(t, env, ctxFor(vendor))
	_, err := env.projects.AssignInstaller(ctxFor(admin), project.ID, &domain.AssignInstallerRequest{
		InstallerID: installer.ID,
	})
	require.NoError(t, err)

	// Resolving before any proposal conflicts
	_, err = env.projects.ResolveInstallerPrice(ctxFor(admin), project.ID, &domain.ResolveInstallerPriceRequest{Accept: true})
	assert.ErrorIs(t, err, service.ErrConflict)

	proposed, err := env.projects.ProposeInstallerPrice(ctxFor(installer), project.ID, &domain.ProposeInstallerPriceRequest{Price: 1800})
	require.NoError(t, err)
	require.NotNil(t, proposed.InstallerPrice)
	assert.Equal(t, 1800.0, *proposed.InstallerPrice)
	require.NotNil(t, proposed.InstallerPriceState)
	assert.Equal(t, domain.PriceProposalPending, *proposed.InstallerPriceState)

	resolved, err := env.projects.ResolveInstallerPrice(ctxFor(admin), project.ID, &domain.ResolveInstallerPriceRequest{Accept: true})
	require.NoError(t, err)
	require.NotNil(t, resolved.InstallerPriceState)
	assert.Equal(t, domain.PriceProposalAccepted, *resolved.InstallerPriceState)

	// The installer hears the verdict
	var count int64
	require.NoError(t, env.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", installer.ID, string(domain.NotificationTypeProjectUpdate)).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProjectService_ProposeInstallerPrice_OnlyAssignedInstaller(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)
	installer := testutil.CreateTestUser(t, env.db, "installer1", domain.RoleInstaller)
	bystander := testutil.CreateTestUser(t, env.db, "installer2", domain.RoleInstaller)

	project := createProject(t, env, ctxFor(vendor))
	_, err := env.projects.AssignInstaller(ctxFor(admin), project.ID, &domain.AssignInstallerRequest{
		InstallerID: installer.ID,
	})
	require.NoError(t, err)

	_, err = env.projects.ProposeInstallerPrice(ctxFor(bystander), project.ID, &domain.ProposeInstallerPriceRequest{Price: 1})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestProjectService_Delete_BlockedByStatus(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	admin := testutil.CreateTestUser(t, env.db, "admin1", domain.RoleAdmin)

	project := createProject(t, env, ctxFor(vendor))
	_, err := env.projects.UpdateStatus(ctxFor(admin), project.ID, &domain.UpdateProjectStatusRequest{
		Status: domain.ProjectStatusInProgress,
	})
	require.NoError(t, err)

	err = env.projects.Delete(ctxFor(vendor), project.ID)
	assert.ErrorIs(t, err, service.ErrDeletionBlocked)

	// Still there
	_, err = env.projectRepo.GetByID(context.Background(), project.ID)
	assert.NoError(t, err)
}

func TestProjectService_Delete(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)
	require.NoError(t, env.projects.Delete(ctx, project.ID))

	_, err := env.projectRepo.GetByID(context.Background(), project.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProjectService_Delete_AuditRowOutlivesProject(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	ctx := ctxFor(vendor)

	project := createProject(t, env, ctx)
	require.NoError(t, env.projects.Delete(ctx, project.ID))

	// The project and its items are gone
	_, err := env.projectRepo.GetByID(context.Background(), project.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	var itemCount int64
	require.NoError(t, env.db.Model(&domain.ProjectItem{}).
		Where("project_id = ?", project.ID).
		Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	// The final "deleted" history row survives as the audit trail
	var entries []domain.ProjectHistory
	require.NoError(t, env.db.
		Where("project_id = ? AND status = ?", project.ID, "deleted").
		Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "deleted", entries[0].Action)
	assert.Contains(t, entries[0].Comment, project.InvoiceNumber)
}

func TestProjectService_Delete_OnlyCreatorOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	vendor := testutil.CreateTestUser(t, env.db, "vendor1", domain.RoleVendor)
	other := testutil.CreateTestUser(t, env.db, "vendor2", domain.RoleVendor)

	project := createProject(t, env, ctxFor(vendor))

	err := env.projects.Delete(ctxFor(other), project.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}
