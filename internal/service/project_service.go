package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/mapper"
	"github.com/monterra-as/installer-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService owns installation projects, their history trail and
// installer assignment.
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	sequences   *NumberSequenceService
	notifier    NotificationSink
	db          *gorm.DB
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	sequences *NumberSequenceService,
	notifier NotificationSink,
	db *gorm.DB,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		sequences:   sequences,
		notifier:    notifier,
		db:          db,
		logger:      logger,
	}
}

// Create creates a project for the current user
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	status := req.Status
	if status == "" {
		status = domain.ProjectStatusPendingApproval
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	invoiceNumber, err := s.sequences.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	var total float64
	items := make([]domain.ProjectItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.ProjectItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
		total += item.Quantity * item.UnitPrice
	}

	project := &domain.Project{
		ProjectName:       req.ProjectName,
		InvoiceNumber:     invoiceNumber,
		ClientName:        req.ClientName,
		Status:            status,
		TotalCost:         total,
		CreatedByID:       userCtx.UserID,
		DownPaymentAmount: req.DownPaymentAmount,
		Notes:             req.Notes,
		Items:             items,
		History: []domain.ProjectHistory{{
			Status:   string(status),
			Comment:  "Project created",
			UserID:   &userCtx.UserID,
			UserName: userCtx.DisplayName,
			Action:   "created",
		}},
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("projectID", project.ID.String()),
		zap.String("invoiceNumber", invoiceNumber),
		zap.String("createdBy", userCtx.UserID.String()),
	)

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// List returns projects scoped by role: admins see all, installers their
// assignments, everyone else their own.
func (s *ProjectService) List(ctx context.Context, status *domain.ProjectStatus) ([]domain.ProjectDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *status)
	}

	var projects []domain.Project
	var err error

	switch {
	case userCtx.IsAdmin():
		projects, err = s.projectRepo.List(ctx, status)
	case userCtx.Role == domain.RoleInstaller:
		projects, err = s.projectRepo.ListByInstaller(ctx, userCtx.UserID, status)
	default:
		projects, err = s.projectRepo.ListByCreator(ctx, userCtx.UserID, status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = mapper.ToProjectDTO(&project)
	}
	return dtos, nil
}

func (s *ProjectService) loadVisible(ctx context.Context, id uuid.UUID) (*domain.Project, *auth.UserContext, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, nil, ErrUserContextRequired
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get project: %w", err)
	}

	owns := project.CreatedByID == userCtx.UserID
	assigned := project.AssignedInstallerID != nil && *project.AssignedInstallerID == userCtx.UserID
	if !owns && !assigned && !userCtx.IsAdmin() {
		return nil, nil, ErrPermissionDenied
	}

	return project, userCtx, nil
}

// GetByID returns a project visible to its creator, assigned installer or an
// admin
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, _, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// Update edits a project. Vendors may only touch their own projects while
// still pending approval; admins edit anything. Quantity changes in a
// vendor-authored edit fan out a delta summary to every admin; admin edits
// do not notify.
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	project, userCtx, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	if !userCtx.IsAdmin() {
		if project.CreatedByID != userCtx.UserID {
			return nil, ErrPermissionDenied
		}
		if project.Status != domain.ProjectStatusPendingApproval {
			return nil, fmt.Errorf("%w: project is %s", ErrConflict, project.Status)
		}
	}

	oldItems := project.Items
	oldTotal := project.TotalCost

	project.ProjectName = req.ProjectName
	project.ClientName = req.ClientName
	project.DownPaymentAmount = req.DownPaymentAmount
	if req.DownPaymentStatus != "" {
		project.DownPaymentStatus = req.DownPaymentStatus
	}
	project.Notes = req.Notes

	itemsChanged := req.Items != nil
	var newItems []domain.ProjectItem
	var newTotal float64
	if itemsChanged {
		newItems = make([]domain.ProjectItem, len(req.Items))
		for i, item := range req.Items {
			newItems[i] = domain.ProjectItem{
				ProjectID:   project.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			}
			newTotal += item.Quantity * item.UnitPrice
		}
		project.TotalCost = newTotal
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if itemsChanged {
			if err := s.projectRepo.ReplaceItems(ctx, tx, project.ID, newItems); err != nil {
				return fmt.Errorf("failed to replace project items: %w", err)
			}
		}
		project.Items = nil
		if err := tx.Omit("Items", "History").Save(project).Error; err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if itemsChanged {
		project.Items = newItems
	} else {
		project.Items = oldItems
	}

	if itemsChanged && userCtx.Role == domain.RoleVendor {
		if diff := summarizeItemDiff(oldItems, newItems, oldTotal, newTotal); diff != "" {
			s.notifyAdmins(ctx, domain.NotificationTypeProjectItemsEdited,
				"Project items changed",
				fmt.Sprintf("Project %s: %s", project.InvoiceNumber, diff))
		}
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// summarizeItemDiff builds a human-readable summary of quantity changes
// between two item sets, keyed by product name. Empty when nothing moved.
func summarizeItemDiff(oldItems, newItems []domain.ProjectItem, oldTotal, newTotal float64) string {
	oldQty := make(map[string]float64, len(oldItems))
	for _, item := range oldItems {
		oldQty[item.ProductName] += item.Quantity
	}
	newQty := make(map[string]float64, len(newItems))
	for _, item := range newItems {
		newQty[item.ProductName] += item.Quantity
	}

	var parts []string
	for _, item := range newItems {
		name := item.ProductName
		if _, seen := oldQty[name]; !seen {
			parts = append(parts, fmt.Sprintf("%s added (qty %g)", name, newQty[name]))
			oldQty[name] = newQty[name]
		}
	}
	for _, item := range oldItems {
		name := item.ProductName
		if _, kept := newQty[name]; !kept {
			parts = append(parts, fmt.Sprintf("%s removed (was qty %g)", name, oldQty[name]))
			newQty[name] = 0
			delete(oldQty, name)
		}
	}
	for name, before := range oldQty {
		after, kept := newQty[name]
		if kept && after != before {
			parts = append(parts, fmt.Sprintf("%s qty %g -> %g", name, before, after))
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("%s; total %.2f -> %.2f", strings.Join(parts, ", "), oldTotal, newTotal)
}

func (s *ProjectService) notifyAdmins(ctx context.Context, notificationType domain.NotificationType, title, message string) {
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		s.logger.Warn("failed to load admins for notification", zap.Error(err))
		return
	}
	ids := make([]uuid.UUID, len(admins))
	for i, admin := range admins {
		ids[i] = admin.ID
	}
	s.notifier.NotifyMany(ctx, ids, notificationType, title, message, "")
}

// UpdateStatus moves a project to a new status and appends exactly one
// history row
func (s *ProjectService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectStatusRequest) (*domain.ProjectDTO, error) {
	project, userCtx, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	oldStatus := project.Status

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Project{}).
			Where("id = ?", project.ID).
			Update("status", req.Status).Error; err != nil {
			return fmt.Errorf("failed to update project status: %w", err)
		}

		history := &domain.ProjectHistory{
			ProjectID: project.ID,
			Status:    string(req.Status),
			Comment:   req.Comment,
			UserID:    &userCtx.UserID,
			UserName:  userCtx.DisplayName,
			Action:    "status_changed",
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record project history: %w", err)
		}
		project.History = append(project.History, *history)
		return nil
	})
	if err != nil {
		return nil, err
	}
	project.Status = req.Status

	s.logger.Info("project status changed",
		zap.String("projectID", project.ID.String()),
		zap.String("oldStatus", string(oldStatus)),
		zap.String("newStatus", string(req.Status)),
	)

	if project.CreatedByID != userCtx.UserID {
		s.notifier.Notify(ctx, project.CreatedByID, domain.NotificationTypeProjectUpdate,
			"Project updated",
			fmt.Sprintf("Project %s moved from %s to %s", project.InvoiceNumber, oldStatus, req.Status),
			"")
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// AssignInstaller assigns an installer to a project and notifies them
func (s *ProjectService) AssignInstaller(ctx context.Context, id uuid.UUID, req *domain.AssignInstallerRequest) (*domain.ProjectDTO, error) {
	project, userCtx, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	installer, err := s.userRepo.GetByID(ctx, req.InstallerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: installer not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to load installer: %w", err)
	}
	if installer.Role != domain.RoleInstaller {
		return nil, fmt.Errorf("%w: user %s is not an installer", ErrInvalidInput, installer.Username)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Project{}).
			Where("id = ?", project.ID).
			Updates(map[string]interface{}{
				"assigned_installer_id": installer.ID,
				"status":                domain.ProjectStatusAssigned,
			}).Error; err != nil {
			return fmt.Errorf("failed to assign installer: %w", err)
		}

		history := &domain.ProjectHistory{
			ProjectID: project.ID,
			Status:    string(domain.ProjectStatusAssigned),
			Comment:   req.Comment,
			UserID:    &userCtx.UserID,
			UserName:  userCtx.DisplayName,
			Action:    "installer_assigned",
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record project history: %w", err)
		}
		project.History = append(project.History, *history)
		return nil
	})
	if err != nil {
		return nil, err
	}

	project.AssignedInstallerID = &installer.ID
	project.AssignedInstaller = installer
	project.Status = domain.ProjectStatusAssigned

	s.notifier.Notify(ctx, installer.ID, domain.NotificationTypeProjectAssigned,
		"Project assigned",
		fmt.Sprintf("You were assigned to project %s (%s)", project.InvoiceNumber, project.ProjectName),
		"")

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// ProposeInstallerPrice records an installer's price proposal for their
// assigned project
func (s *ProjectService) ProposeInstallerPrice(ctx context.Context, id uuid.UUID, req *domain.ProposeInstallerPriceRequest) (*domain.ProjectDTO, error) {
	project, userCtx, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	if project.AssignedInstallerID == nil || *project.AssignedInstallerID != userCtx.UserID {
		return nil, ErrPermissionDenied
	}

	pending := domain.PriceProposalPending
	project.InstallerPrice = &req.Price
	project.InstallerPriceState = &pending

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to store price proposal: %w", err)
	}

	s.notifyAdmins(ctx, domain.NotificationTypeProjectUpdate,
		"Installer price proposed",
		fmt.Sprintf("Project %s: installer proposed %.2f", project.InvoiceNumber, req.Price))

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// ResolveInstallerPrice accepts or rejects a pending installer price proposal
func (s *ProjectService) ResolveInstallerPrice(ctx context.Context, id uuid.UUID, req *domain.ResolveInstallerPriceRequest) (*domain.ProjectDTO, error) {
	project, _, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	if project.InstallerPriceState == nil || *project.InstallerPriceState != domain.PriceProposalPending {
		return nil, fmt.Errorf("%w: no pending price proposal", ErrConflict)
	}

	state := domain.PriceProposalRejected
	if req.Accept {
		state = domain.PriceProposalAccepted
	}
	project.InstallerPriceState = &state

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to resolve price proposal: %w", err)
	}

	if project.AssignedInstallerID != nil {
		s.notifier.Notify(ctx, *project.AssignedInstallerID, domain.NotificationTypeProjectUpdate,
			"Price proposal resolved",
			fmt.Sprintf("Your price proposal on project %s was %s", project.InvoiceNumber, state),
			"")
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// Delete removes a project. Deletion is blocked while the status says work
// has started or concluded; an eligible deletion writes a final history row
// first so the trail survives in the log stream.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	project, userCtx, err := s.loadVisible(ctx, id)
	if err != nil {
		return err
	}

	if project.CreatedByID != userCtx.UserID && !userCtx.IsAdmin() {
		return ErrPermissionDenied
	}

	if project.Status.BlocksDeletion() {
		return fmt.Errorf("%w: status %s", ErrDeletionBlocked, project.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		history := &domain.ProjectHistory{
			ProjectID: project.ID,
			Status:    "deleted",
			Comment:   fmt.Sprintf("Project %s deleted", project.InvoiceNumber),
			UserID:    &userCtx.UserID,
			UserName:  userCtx.DisplayName,
			Action:    "deleted",
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record deletion: %w", err)
		}

		if err := s.projectRepo.Delete(ctx, tx, project.ID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("project deleted",
		zap.String("projectID", project.ID.String()),
		zap.String("invoiceNumber", project.InvoiceNumber),
	)
	return nil
}
