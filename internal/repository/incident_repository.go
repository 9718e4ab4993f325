package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"gorm.io/gorm"
)

type IncidentRepository struct {
	db *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	return r.db.WithContext(ctx).Create(incident).Error
}

func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	var incident domain.Incident
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Project").
		First(&incident, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

func (r *IncidentRepository) List(ctx context.Context, status *domain.IncidentStatus) ([]domain.Incident, error) {
	var incidents []domain.Incident
	query := r.db.WithContext(ctx).Preload("Items").Preload("Project")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&incidents).Error
	return incidents, err
}

// ListByProjects returns incidents belonging to any of the given projects,
// used for vendor and installer scoped listings
func (r *IncidentRepository) ListByProjects(ctx context.Context, projectIDs []uuid.UUID, status *domain.IncidentStatus) ([]domain.Incident, error) {
	if len(projectIDs) == 0 {
		return []domain.Incident{}, nil
	}
	var incidents []domain.Incident
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Project").
		Where("project_id IN ?", projectIDs)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&incidents).Error
	return incidents, err
}

func (r *IncidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	return r.db.WithContext(ctx).Save(incident).Error
}

func (r *IncidentRepository) AddHistory(ctx context.Context, entry *domain.IncidentHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ReplaceItems swaps an incident's line items inside the caller's transaction
func (r *IncidentRepository) ReplaceItems(ctx context.Context, tx *gorm.DB, incidentID uuid.UUID, items []domain.IncidentItem) error {
	if err := tx.WithContext(ctx).Where("incident_id = ?", incidentID).Delete(&domain.IncidentItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *IncidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Items", "History").
		Delete(&domain.Incident{BaseModel: domain.BaseModel{ID: id}}).Error
}
