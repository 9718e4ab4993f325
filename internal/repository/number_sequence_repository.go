package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/monterra-as/installer-api/internal/domain"
	"gorm.io/gorm"
)

// NumberSequenceRepository handles database operations for number sequences.
// One row per scope/year backs each human-readable number series (project
// invoice numbers, incident numbers).
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber atomically retrieves and increments the sequence for a
// scope/year. The increment is a guarded UPDATE on last_sequence: the WHERE
// clause re-checks the value read, so two concurrent callers can never claim
// the same number; the loser retries. The unique scope/year constraint
// resolves concurrent first-time inserts the same way.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, scope string, year int) (int, error) {
	for attempt := 0; attempt < 5; attempt++ {
		var seq domain.NumberSequence
		result := r.db.WithContext(ctx).
			Where("scope = ? AND year = ?", scope, year).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				Scope:        scope,
				Year:         year,
				LastSequence: 1,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := r.db.WithContext(ctx).Create(&seq).Error; err != nil {
				// Lost the insert race, retry as an update
				continue
			}
			return 1, nil
		}
		if result.Error != nil {
			return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
		}

		next := seq.LastSequence + 1
		update := r.db.WithContext(ctx).
			Model(&domain.NumberSequence{}).
			Where("id = ? AND last_sequence = ?", seq.ID, seq.LastSequence).
			Updates(map[string]interface{}{
				"last_sequence": next,
				"updated_at":    time.Now(),
			})
		if update.Error != nil {
			return 0, fmt.Errorf("failed to update number sequence: %w", update.Error)
		}
		if update.RowsAffected == 1 {
			return next, nil
		}
		// Someone else claimed this number, retry
	}

	return 0, fmt.Errorf("number sequence contention for scope %s year %d", scope, year)
}

// GetCurrentSequence retrieves the current sequence value without
// incrementing. Returns 0 if no sequence exists for the scope/year.
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, scope string, year int) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("scope = ? AND year = ?", scope, year).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	return seq.LastSequence, nil
}

// ListSequences returns all sequences (useful for debugging/admin)
func (r *NumberSequenceRepository) ListSequences(ctx context.Context) ([]domain.NumberSequence, error) {
	var sequences []domain.NumberSequence
	err := r.db.WithContext(ctx).
		Order("scope ASC, year DESC").
		Find(&sequences).Error
	return sequences, err
}
