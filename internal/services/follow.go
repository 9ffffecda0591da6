package services

import (
	"context"
	"time"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/dreamshare/dreamshare/internal/repository"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/dreamshare/dreamshare/pkg/queue"
	"github.com/google/uuid"
)

type FollowService struct {
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	producer   queue.Publisher
	logger     *logger.Logger
}

func NewFollowService(
	userRepo *repository.UserRepository,
	followRepo *repository.FollowRepository,
	producer queue.Publisher,
	logger *logger.Logger,
) *FollowService {
	return &FollowService{
		userRepo:   userRepo,
		followRepo: followRepo,
		producer:   producer,
		logger:     logger,
	}
}

// Toggle follows the target when no edge exists and unfollows when one
// does. The returned bool is the resulting state.
func (s *FollowService) Toggle(ctx context.Context, followerID, targetIdentifier string) (bool, error) {
	follower, err := uuid.Parse(followerID)
	if err != nil {
		return false, apperrors.New(apperrors.CodeValidation, "invalid user ID")
	}

	target, err := s.resolveTarget(ctx, targetIdentifier)
	if err != nil {
		return false, err
	}

	if follower == target.ID {
		return false, apperrors.New(apperrors.CodeSelfFollow, "cannot follow yourself")
	}

	followed, err := s.followRepo.Toggle(ctx, follower, target.ID)
	if err != nil {
		return false, err
	}

	eventType := queue.EventFollowDeleted
	if followed {
		eventType = queue.EventFollowCreated
	}
	s.publishFollowEvent(ctx, eventType, follower, target.ID)

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  follower.String(),
		"following_id": target.ID.String(),
		"followed":     followed,
	}).Info("Follow toggled")

	return followed, nil
}

func (s *FollowService) Followers(ctx context.Context, identifier string) ([]UserSummary, error) {
	target, err := s.resolveTarget(ctx, identifier)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.GetFollowers(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, summarize(u))
	}
	return summaries, nil
}

func (s *FollowService) Following(ctx context.Context, identifier string) ([]UserSummary, error) {
	target, err := s.resolveTarget(ctx, identifier)
	if err != nil {
		return nil, err
	}

	users, err := s.followRepo.GetFollowing(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, summarize(u))
	}
	return summaries, nil
}

func (s *FollowService) resolveTarget(ctx context.Context, identifier string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		user, err = s.userRepo.GetByID(ctx, id)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return user, nil
}

func (s *FollowService) publishFollowEvent(ctx context.Context, eventType queue.EventType, followerID, followingID uuid.UUID) {
	if s.producer == nil {
		return
	}

	event := queue.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data: queue.FollowEventData{
			FollowerID:  followerID.String(),
			FollowingID: followingID.String(),
			CreatedAt:   time.Now().Format(time.RFC3339),
		},
	}

	if err := s.producer.Publish(ctx, followerID.String(), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish follow event")
	}
}
