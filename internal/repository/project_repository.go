package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("CreatedBy").
		Preload("AssignedInstaller").
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context, status *domain.ProjectStatus) ([]domain.Project, error) {
	var projects []domain.Project
	query := r.db.WithContext(ctx).Preload("Items").Preload("CreatedBy").Preload("AssignedInstaller")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, status *domain.ProjectStatus) ([]domain.Project, error) {
	var projects []domain.Project
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("AssignedInstaller").
		Where("created_by_id = ?", creatorID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) ListByInstaller(ctx context.Context, installerID uuid.UUID, status *domain.ProjectStatus) ([]domain.Project, error) {
	var projects []domain.Project
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("assigned_installer_id = ?", installerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) AddHistory(ctx context.Context, entry *domain.ProjectHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ReplaceItems swaps a project's line items inside the caller's transaction
func (r *ProjectRepository) ReplaceItems(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, items []domain.ProjectItem) error {
	if err := tx.WithContext(ctx).Where("project_id = ?", projectID).Delete(&domain.ProjectItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

// Delete removes the project and its items. History rows stay behind as the
// audit trail.
func (r *ProjectRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).
		Select("Items").
		Delete(&domain.Project{BaseModel: domain.BaseModel{ID: id}}).Error
}
