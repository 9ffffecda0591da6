package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// GetOrCreate resolves a tag name to its single row. The unique index on
// name guards concurrent creation; losing the race falls back to the
// winner's row.
func (r *TagRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).First(&tag, "name = ?", name).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	tag = models.Tag{Name: name}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := r.db.WithContext(ctx).First(&tag, "name = ?", name).Error; err != nil {
				return nil, fmt.Errorf("failed to get tag after conflict: %w", err)
			}
			return &tag, nil
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tag by name: %w", err)
	}
	return &tag, nil
}

type PopularTag struct {
	ID         uuid.UUID `json:"-"`
	Name       string    `json:"name"`
	DreamCount int64     `json:"dream_count"`
}

// Popular returns tags ordered by how many dreams carry them, ties broken
// by tag id for a stable order.
func (r *TagRepository) Popular(ctx context.Context, limit int) ([]PopularTag, error) {
	var tags []PopularTag
	if err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.id AS id, tags.name AS name, COUNT(dream_tags.dream_id) AS dream_count").
		Joins("LEFT JOIN dream_tags ON dream_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("dream_count DESC, tags.id ASC").
		Limit(limit).
		Scan(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list popular tags: %w", err)
	}
	return tags, nil
}
