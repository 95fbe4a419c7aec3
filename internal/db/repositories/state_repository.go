package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marathon-readiness/toolkit/internal/models/entities"
)

// StateRepository persists trendline blobs in the remote store. One row per
// user; the whole envelope is replaced on every flush.
type StateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the stored blob for a user, or nil if none exists.
func (r *StateRepository) Get(ctx context.Context, userID string) (*entities.TrendState, error) {
	var state entities.TrendState

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&state).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch trend state: %w", err)
	}

	return &state, nil
}

// Save upserts the blob for a user.
func (r *StateRepository) Save(ctx context.Context, state *entities.TrendState) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "version", "updated_at"}),
		}).
		Create(state).Error

	if err != nil {
		return fmt.Errorf("failed to save trend state: %w", err)
	}
	return nil
}

// Delete removes the stored blob for a user. Missing rows are not an error.
func (r *StateRepository) Delete(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entities.TrendState{}).Error

	if err != nil {
		return fmt.Errorf("failed to delete trend state: %w", err)
	}
	return nil
}
