package services

import (
	"context"
	"strings"
	"time"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/dreamshare/dreamshare/internal/repository"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/dreamshare/dreamshare/pkg/queue"
	"github.com/google/uuid"
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	dreamRepo   *repository.DreamRepository
	userRepo    *repository.UserRepository
	producer    queue.Publisher
	logger      *logger.Logger
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	dreamRepo *repository.DreamRepository,
	userRepo *repository.UserRepository,
	producer queue.Publisher,
	logger *logger.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		dreamRepo:   dreamRepo,
		userRepo:    userRepo,
		producer:    producer,
		logger:      logger,
	}
}

// Add posts a comment on a dream. Private dreams only accept comments
// from their owner, matching the read-side visibility rule.
func (s *CommentService) Add(ctx context.Context, userID, dreamID, content string) (*CommentResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "comment content cannot be empty")
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid user ID")
	}
	did, err := uuid.Parse(dreamID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid dream ID")
	}

	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}

	dream, err := s.dreamRepo.GetByID(ctx, did)
	if err != nil {
		return nil, err
	}
	if dream == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "dream not found")
	}
	if !dream.IsPublic && dream.UserID != uid {
		return nil, apperrors.New(apperrors.CodeForbidden, "dream is private")
	}

	comment := &models.Comment{
		UserID:  uid,
		DreamID: did,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publishCommentEvent(ctx, comment)

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID.String(),
		"dream_id":   did.String(),
		"user_id":    uid.String(),
	}).Info("Comment added")

	return &CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		User:      summarize(user),
	}, nil
}

// List returns a dream's comments, newest first unless oldestFirst is
// set. Visibility follows the dream itself.
func (s *CommentService) List(ctx context.Context, viewerID, dreamID string, oldestFirst bool) ([]*CommentResponse, error) {
	did, err := uuid.Parse(dreamID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid dream ID")
	}

	dream, err := s.dreamRepo.GetByID(ctx, did)
	if err != nil {
		return nil, err
	}
	if dream == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "dream not found")
	}
	if !dream.IsPublic && dream.UserID.String() != viewerID {
		return nil, apperrors.New(apperrors.CodeForbidden, "dream is private")
	}

	comments, err := s.commentRepo.GetByDreamID(ctx, did, oldestFirst)
	if err != nil {
		return nil, err
	}

	responses := make([]*CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, &CommentResponse{
			ID:        c.ID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			User:      summarize(&c.User),
		})
	}
	return responses, nil
}

func (s *CommentService) publishCommentEvent(ctx context.Context, comment *models.Comment) {
	if s.producer == nil {
		return
	}

	event := queue.Event{
		Type:      queue.EventCommentCreated,
		Timestamp: time.Now(),
		Data: queue.CommentEventData{
			CommentID: comment.ID.String(),
			UserID:    comment.UserID.String(),
			DreamID:   comment.DreamID.String(),
		},
	}

	if err := s.producer.Publish(ctx, comment.DreamID.String(), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish comment event")
	}
}
