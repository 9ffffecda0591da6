package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Toggle mirrors LikeRepository.Toggle for the follow edge.
func (r *FollowRepository) Toggle(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	followed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var follow models.Follow
		err := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&follow).Error
		if err == nil {
			return tx.Delete(&follow).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		follow = models.Follow{FollowerID: followerID, FollowingID: followingID}
		if err := tx.Create(&follow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				followed = true
				return nil
			}
			return err
		}
		followed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle follow: %w", err)
	}
	return followed, nil
}

func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check follow status: %w", err)
	}
	return count > 0, nil
}

func (r *FollowRepository) GetFollowers(ctx context.Context, userID uuid.UUID) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return users, nil
}

func (r *FollowRepository) GetFollowing(ctx context.Context, userID uuid.UUID) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return users, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}
	return count, nil
}
