package repository

import (
	"context"
	"fmt"

	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetByDreamID(ctx context.Context, dreamID uuid.UUID, oldestFirst bool) ([]*models.Comment, error) {
	order := "created_at DESC"
	if oldestFirst {
		order = "created_at ASC"
	}

	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("dream_id = ?", dreamID).
		Order(order).
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to get comments by dream: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) CountByDreamID(ctx context.Context, dreamID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("dream_id = ?", dreamID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}
