package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sort keys accepted by Search.
const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortLikes    = "likes"
	SortComments = "comments"
)

type DreamRepository struct {
	db *gorm.DB
}

func NewDreamRepository(db *gorm.DB) *DreamRepository {
	return &DreamRepository{db: db}
}

func (r *DreamRepository) Create(ctx context.Context, dream *models.Dream) error {
	if err := r.db.WithContext(ctx).Create(dream).Error; err != nil {
		return fmt.Errorf("failed to create dream: %w", err)
	}
	return nil
}

func (r *DreamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dream, error) {
	var dream models.Dream
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		First(&dream, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dream: %w", err)
	}
	return &dream, nil
}

// Update saves the dream's own columns and, when replaceTags is set,
// swaps the full tag association set in the same transaction.
func (r *DreamRepository) Update(ctx context.Context, dream *models.Dream, tags []models.Tag, replaceTags bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Save(dream).Error; err != nil {
			return err
		}
		if replaceTags {
			if err := tx.Model(dream).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update dream: %w", err)
	}
	return nil
}

// Delete removes the dream together with its likes, comments and tag
// associations. Tag rows themselves are left alone.
func (r *DreamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dream_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dream_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM dream_tags WHERE dream_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Dream{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete dream: %w", err)
	}
	return nil
}

func (r *DreamRepository) ListPublic(ctx context.Context) ([]*models.Dream, error) {
	var dreams []*models.Dream
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Where("is_public = ?", true).
		Order("created_at DESC").
		Find(&dreams).Error; err != nil {
		return nil, fmt.Errorf("failed to list public dreams: %w", err)
	}
	return dreams, nil
}

func (r *DreamRepository) ListPublicByUser(ctx context.Context, userID uuid.UUID) ([]*models.Dream, error) {
	var dreams []*models.Dream
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Where("user_id = ? AND is_public = ?", userID, true).
		Order("created_at DESC").
		Find(&dreams).Error; err != nil {
		return nil, fmt.Errorf("failed to list dreams by user: %w", err)
	}
	return dreams, nil
}

func (r *DreamRepository) ListPublicByTag(ctx context.Context, tagName string) ([]*models.Dream, error) {
	var dreams []*models.Dream
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Select("dreams.*").
		Joins("JOIN dream_tags ON dream_tags.dream_id = dreams.id").
		Joins("JOIN tags ON tags.id = dream_tags.tag_id").
		Where("tags.name = ? AND dreams.is_public = ?", tagName, true).
		Order("dreams.created_at DESC").
		Find(&dreams).Error; err != nil {
		return nil, fmt.Errorf("failed to list dreams by tag: %w", err)
	}
	return dreams, nil
}

// Search filters the public set by substring and tag name. Engagement
// sorts order on aggregate counts with created_at then id as tie-breaks.
func (r *DreamRepository) Search(ctx context.Context, query, tagName, sort string) ([]*models.Dream, error) {
	db := r.db.WithContext(ctx).
		Model(&models.Dream{}).
		Preload("User").
		Preload("Tags").
		Select("dreams.*").
		Where("dreams.is_public = ?", true)

	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		db = db.Where("LOWER(dreams.title) LIKE ? OR LOWER(dreams.content) LIKE ?", pattern, pattern)
	}

	if tagName != "" {
		db = db.
			Joins("JOIN dream_tags ON dream_tags.dream_id = dreams.id").
			Joins("JOIN tags ON tags.id = dream_tags.tag_id").
			Where("tags.name = ?", tagName)
	}

	switch sort {
	case SortOldest:
		db = db.Order("dreams.created_at ASC")
	case SortLikes:
		db = db.Order("(SELECT COUNT(*) FROM likes WHERE likes.dream_id = dreams.id) DESC").
			Order("dreams.created_at DESC").
			Order("dreams.id ASC")
	case SortComments:
		db = db.Order("(SELECT COUNT(*) FROM comments WHERE comments.dream_id = dreams.id) DESC").
			Order("dreams.created_at DESC").
			Order("dreams.id ASC")
	default:
		db = db.Order("dreams.created_at DESC")
	}

	var dreams []*models.Dream
	if err := db.Find(&dreams).Error; err != nil {
		return nil, fmt.Errorf("failed to search dreams: %w", err)
	}
	return dreams, nil
}
