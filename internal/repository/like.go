package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle creates the like edge when absent and removes it when present,
// inside one transaction. The composite unique index on (user_id,
// dream_id) turns a concurrent double-create into the exists branch.
func (r *LikeRepository) Toggle(ctx context.Context, userID, dreamID uuid.UUID) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var like models.Like
		err := tx.Where("user_id = ? AND dream_id = ?", userID, dreamID).First(&like).Error
		if err == nil {
			return tx.Delete(&like).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		like = models.Like{UserID: userID, DreamID: dreamID}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				liked = true
				return nil
			}
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

func (r *LikeRepository) IsLiked(ctx context.Context, userID, dreamID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND dream_id = ?", userID, dreamID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check like status: %w", err)
	}
	return count > 0, nil
}

func (r *LikeRepository) CountByDreamID(ctx context.Context, dreamID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("dream_id = ?", dreamID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
