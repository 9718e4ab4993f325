package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Vendor").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) GetByToken(ctx context.Context, token string) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&quote, "quote_token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, status *domain.QuoteStatus) ([]domain.Quote, error) {
	var quotes []domain.Quote
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("vendor_id = ?", vendorID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}

// ListPublished returns published quotes that have not passed their expiry
func (r *QuoteRepository) ListPublished(ctx context.Context, now time.Time) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", domain.QuoteStatusPublished).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// MarkExpired flips a published quote to expired. The status guard keeps a
// concurrent accept from being overwritten.
func (r *QuoteRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ? AND status = ?", id, domain.QuoteStatusPublished).
		Update("status", domain.QuoteStatusExpired).Error
}

// ExpirePublishedBefore flips every published quote past its expiry, used by
// the nightly sweep. Returns the number of rows changed.
func (r *QuoteRepository) ExpirePublishedBefore(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", domain.QuoteStatusPublished, now).
		Update("status", domain.QuoteStatusExpired)
	return res.RowsAffected, res.Error
}

func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&domain.Quote{BaseModel: domain.BaseModel{ID: id}}).Error
}
