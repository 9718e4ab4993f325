package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"gorm.io/gorm"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Communications", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Documents").
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) GetByToken(ctx context.Context, token string) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Communications", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&contract, "signature_token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) List(ctx context.Context) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) ListByInstaller(ctx context.Context, installerID uuid.UUID) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.WithContext(ctx).
		Where("installer_id = ? AND type = ?", installerID, domain.ContractTypeInstallerService).
		Order("created_at DESC").
		Find(&contracts).Error
	return contracts, err
}

// ListLinksExpiringBefore returns unsigned contracts whose signature link
// expires before the cutoff, for the nightly sweep log.
func (r *ContractRepository) ListLinksExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.WithContext(ctx).
		Where("signature_token IS NOT NULL AND is_signed = ? AND expires_at IS NOT NULL AND expires_at < ?", false, cutoff).
		Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) Update(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *ContractRepository) AddCommunication(ctx context.Context, comm *domain.ContractCommunication) error {
	return r.db.WithContext(ctx).Create(comm).Error
}

func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Communications", "Documents").
		Delete(&domain.Contract{BaseModel: domain.BaseModel{ID: id}}).Error
}
