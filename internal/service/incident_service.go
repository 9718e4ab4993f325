package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/mapper"
	"github.com/monterra-as/installer-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IncidentService owns change-order incidents raised against projects
type IncidentService struct {
	incidentRepo *repository.IncidentRepository
	projectRepo  *repository.ProjectRepository
	sequences    *NumberSequenceService
	notifier     NotificationSink
	db           *gorm.DB
	logger       *zap.Logger
}

// NewIncidentService creates a new IncidentService instance
func NewIncidentService(
	incidentRepo *repository.IncidentRepository,
	projectRepo *repository.ProjectRepository,
	sequences *NumberSequenceService,
	notifier NotificationSink,
	db *gorm.DB,
	logger *zap.Logger,
) *IncidentService {
	return &IncidentService{
		incidentRepo: incidentRepo,
		projectRepo:  projectRepo,
		sequences:    sequences,
		notifier:     notifier,
		db:           db,
		logger:       logger,
	}
}

func buildIncidentItems(reqs []domain.CreateIncidentItemRequest) ([]domain.IncidentItem, float64) {
	items := make([]domain.IncidentItem, len(reqs))
	var total float64
	for i, item := range reqs {
		items[i] = domain.IncidentItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
		total += item.Quantity * item.UnitPrice
	}
	return items, total
}

// Create raises an incident on a project the caller can see
func (s *IncidentService) Create(ctx context.Context, req *domain.CreateIncidentRequest) (*domain.IncidentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	project, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	owns := project.CreatedByID == userCtx.UserID
	assigned := project.AssignedInstallerID != nil && *project.AssignedInstallerID == userCtx.UserID
	if !owns && !assigned && !userCtx.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	incidentNumber, err := s.sequences.NextIncidentNumber(ctx)
	if err != nil {
		return nil, err
	}

	items, total := buildIncidentItems(req.Items)
	if len(items) == 0 && req.TotalCost != nil {
		total = *req.TotalCost
	}

	incident := &domain.Incident{
		ProjectID:      project.ID,
		IncidentNumber: incidentNumber,
		Type:           req.Type,
		Priority:       req.Priority,
		Title:          req.Title,
		Description:    req.Description,
		TotalCost:      total,
		Status:         domain.IncidentStatusPending,
		CreatedByID:    userCtx.UserID,
		Items:          items,
		History: []domain.IncidentHistory{{
			Status:   string(domain.IncidentStatusPending),
			Comment:  "Incident reported",
			UserID:   &userCtx.UserID,
			UserName: userCtx.DisplayName,
		}},
	}

	if err := s.incidentRepo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	s.logger.Info("incident created",
		zap.String("incidentID", incident.ID.String()),
		zap.String("incidentNumber", incidentNumber),
		zap.String("projectID", project.ID.String()),
	)

	if project.CreatedByID != userCtx.UserID {
		s.notifier.Notify(ctx, project.CreatedByID, domain.NotificationTypeIncidentUpdate,
			"Incident reported",
			fmt.Sprintf("Incident %s reported on project %s: %s", incidentNumber, project.InvoiceNumber, req.Title),
			"")
	}

	incident.Project = project
	dto := mapper.ToIncidentDTO(incident)
	return &dto, nil
}

// List returns incidents scoped by role: admins see all, everyone else the
// incidents on projects they created or are assigned to.
func (s *IncidentService) List(ctx context.Context, status *domain.IncidentStatus) ([]domain.IncidentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *status)
	}

	var incidents []domain.Incident
	var err error

	if userCtx.IsAdmin() {
		incidents, err = s.incidentRepo.List(ctx, status)
	} else {
		var projects []domain.Project
		if userCtx.Role == domain.RoleInstaller {
			projects, err = s.projectRepo.ListByInstaller(ctx, userCtx.UserID, nil)
		} else {
			projects, err = s.projectRepo.ListByCreator(ctx, userCtx.UserID, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		ids := make([]uuid.UUID, len(projects))
		for i, project := range projects {
			ids[i] = project.ID
		}
		incidents, err = s.incidentRepo.ListByProjects(ctx, ids, status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}

	dtos := make([]domain.IncidentDTO, len(incidents))
	for i, incident := range incidents {
		dtos[i] = mapper.ToIncidentDTO(&incident)
	}
	return dtos, nil
}

func (s *IncidentService) loadVisible(ctx context.Context, id uuid.UUID) (*domain.Incident, *auth.UserContext, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, nil, ErrUserContextRequired
	}

	incident, err := s.incidentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get incident: %w", err)
	}

	if !userCtx.IsAdmin() && incident.CreatedByID != userCtx.UserID {
		if incident.Project == nil {
			return nil, nil, ErrPermissionDenied
		}
		owns := incident.Project.CreatedByID == userCtx.UserID
		assigned := incident.Project.AssignedInstallerID != nil && *incident.Project.AssignedInstallerID == userCtx.UserID
		if !owns && !assigned {
			return nil, nil, ErrPermissionDenied
		}
	}

	return incident, userCtx, nil
}

// GetByID returns an incident visible to its reporter, the project's creator
// or installer, or an admin
func (s *IncidentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.IncidentDTO, error) {
	incident, _, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToIncidentDTO(incident)
	return &dto, nil
}

// Update edits an incident's metadata and items while it is still pending
func (s *IncidentService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateIncidentRequest) (*domain.IncidentDTO, error) {
	incident, userCtx, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	if !userCtx.IsAdmin() && incident.CreatedByID != userCtx.UserID {
		return nil, ErrPermissionDenied
	}
	if incident.Status != domain.IncidentStatusPending {
		return nil, fmt.Errorf("%w: incident is %s", ErrConflict, incident.Status)
	}

	incident.Type = req.Type
	incident.Priority = req.Priority
	incident.Title = req.Title
	incident.Description = req.Description

	itemsChanged := req.Items != nil
	var newItems []domain.IncidentItem
	if itemsChanged {
		var total float64
		newItems, total = buildIncidentItems(req.Items)
		for i := range newItems {
			newItems[i].IncidentID = incident.ID
		}
		incident.TotalCost = total
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if itemsChanged {
			if err := s.incidentRepo.ReplaceItems(ctx, tx, incident.ID, newItems); err != nil {
				return fmt.Errorf("failed to replace incident items: %w", err)
			}
		}
		if err := tx.Omit("Items", "History", "Project").Save(incident).Error; err != nil {
			return fmt.Errorf("failed to update incident: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if itemsChanged {
		incident.Items = newItems
	}

	dto := mapper.ToIncidentDTO(incident)
	return &dto, nil
}

// UpdateStatus moves an incident through its workflow and appends exactly one
// history row
func (s *IncidentService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateIncidentStatusRequest) (*domain.IncidentDTO, error) {
	incident, userCtx, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	if !incident.Status.CanTransitionTo(req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, incident.Status, req.Status)
	}

	oldStatus := incident.Status

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Incident{}).
			Where("id = ?", incident.ID).
			Update("status", req.Status).Error; err != nil {
			return fmt.Errorf("failed to update incident status: %w", err)
		}

		history := &domain.IncidentHistory{
			IncidentID: incident.ID,
			Status:     string(req.Status),
			Comment:    req.Comment,
			UserID:     &userCtx.UserID,
			UserName:   userCtx.DisplayName,
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record incident history: %w", err)
		}
		incident.History = append(incident.History, *history)
		return nil
	})
	if err != nil {
		return nil, err
	}
	incident.Status = req.Status

	s.logger.Info("incident status changed",
		zap.String("incidentID", incident.ID.String()),
		zap.String("oldStatus", string(oldStatus)),
		zap.String("newStatus", string(req.Status)),
	)

	if incident.CreatedByID != userCtx.UserID {
		s.notifier.Notify(ctx, incident.CreatedByID, domain.NotificationTypeIncidentUpdate,
			"Incident updated",
			fmt.Sprintf("Incident %s moved from %s to %s", incident.IncidentNumber, oldStatus, req.Status),
			"")
	}

	dto := mapper.ToIncidentDTO(incident)
	return &dto, nil
}

// Delete removes a pending incident
func (s *IncidentService) Delete(ctx context.Context, id uuid.UUID) error {
	incident, userCtx, err := s.loadVisible(ctx, id)
	if err != nil {
		return err
	}

	if !userCtx.IsAdmin() && incident.CreatedByID != userCtx.UserID {
		return ErrPermissionDenied
	}
	if incident.Status != domain.IncidentStatusPending {
		return fmt.Errorf("%w: incident is %s", ErrConflict, incident.Status)
	}

	if err := s.incidentRepo.Delete(ctx, incident.ID); err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}

	s.logger.Info("incident deleted",
		zap.String("incidentID", incident.ID.String()),
		zap.String("incidentNumber", incident.IncidentNumber),
	)
	return nil
}
