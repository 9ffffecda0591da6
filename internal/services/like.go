package services

import (
	"context"
	"time"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/repository"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/dreamshare/dreamshare/pkg/queue"
	"github.com/google/uuid"
)

type LikeService struct {
	likeRepo  *repository.LikeRepository
	dreamRepo *repository.DreamRepository
	producer  queue.Publisher
	logger    *logger.Logger
}

func NewLikeService(
	likeRepo *repository.LikeRepository,
	dreamRepo *repository.DreamRepository,
	producer queue.Publisher,
	logger *logger.Logger,
) *LikeService {
	return &LikeService{
		likeRepo:  likeRepo,
		dreamRepo: dreamRepo,
		producer:  producer,
		logger:    logger,
	}
}

// Toggle flips the caller's like on a dream and returns the resulting
// state together with the new like count.
func (s *LikeService) Toggle(ctx context.Context, userID, dreamID string) (bool, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return false, 0, apperrors.New(apperrors.CodeValidation, "invalid user ID")
	}
	did, err := uuid.Parse(dreamID)
	if err != nil {
		return false, 0, apperrors.New(apperrors.CodeValidation, "invalid dream ID")
	}

	dream, err := s.dreamRepo.GetByID(ctx, did)
	if err != nil {
		return false, 0, err
	}
	if dream == nil {
		return false, 0, apperrors.New(apperrors.CodeNotFound, "dream not found")
	}

	liked, err := s.likeRepo.Toggle(ctx, uid, did)
	if err != nil {
		return false, 0, err
	}

	count, err := s.likeRepo.CountByDreamID(ctx, did)
	if err != nil {
		return false, 0, err
	}

	eventType := queue.EventLikeDeleted
	if liked {
		eventType = queue.EventLikeCreated
	}
	s.publishLikeEvent(ctx, eventType, uid, did)

	s.logger.WithFields(map[string]interface{}{
		"user_id":  uid.String(),
		"dream_id": did.String(),
		"liked":    liked,
	}).Info("Like toggled")

	return liked, count, nil
}

func (s *LikeService) publishLikeEvent(ctx context.Context, eventType queue.EventType, userID, dreamID uuid.UUID) {
	if s.producer == nil {
		return
	}

	event := queue.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data: queue.LikeEventData{
			UserID:  userID.String(),
			DreamID: dreamID.String(),
		},
	}

	if err := s.producer.Publish(ctx, dreamID.String(), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish like event")
	}
}
