package services

import (
	"context"
	"strings"
	"time"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/dreamshare/dreamshare/internal/repository"
	"github.com/dreamshare/dreamshare/pkg/cache"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/dreamshare/dreamshare/pkg/queue"
	"github.com/google/uuid"
)

// TrendingKey is the sorted set scored by recent engagement. The
// worker writes it, the API reads it.
const TrendingKey = "trending:dreams"

type DreamService struct {
	dreamRepo   *repository.DreamRepository
	userRepo    *repository.UserRepository
	likeRepo    *repository.LikeRepository
	commentRepo *repository.CommentRepository
	tagService  *TagService
	cache       *cache.RedisClient
	producer    queue.Publisher
	logger      *logger.Logger
}

func NewDreamService(
	dreamRepo *repository.DreamRepository,
	userRepo *repository.UserRepository,
	likeRepo *repository.LikeRepository,
	commentRepo *repository.CommentRepository,
	tagService *TagService,
	cache *cache.RedisClient,
	producer queue.Publisher,
	logger *logger.Logger,
) *DreamService {
	return &DreamService{
		dreamRepo:   dreamRepo,
		userRepo:    userRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		tagService:  tagService,
		cache:       cache,
		producer:    producer,
		logger:      logger,
	}
}

type CreateDreamRequest struct {
	Title    string   `json:"title" binding:"required,max=200"`
	Content  string   `json:"content" binding:"required"`
	IsPublic *bool    `json:"is_public"`
	Tags     []string `json:"tags"`
}

// UpdateDreamRequest uses pointers so omitted fields stay untouched.
// A nil Tags leaves the tag set alone; an empty slice clears it.
type UpdateDreamRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	IsPublic *bool     `json:"is_public"`
	Tags     *[]string `json:"tags"`
}

// Create records a dream. Visibility defaults to public when the
// request leaves it unset.
func (s *DreamService) Create(ctx context.Context, userID string, req *CreateDreamRequest) (*DreamResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid user ID")
	}

	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}

	tags, err := s.tagService.Resolve(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	dream := &models.Dream{
		UserID:   uid,
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: isPublic,
		Tags:     tags,
	}
	if err := s.dreamRepo.Create(ctx, dream); err != nil {
		return nil, err
	}
	dream.User = *user

	s.publishDreamEvent(ctx, queue.EventDreamCreated, dream)

	s.logger.WithFields(map[string]interface{}{
		"dream_id": dream.ID.String(),
		"user_id":  uid.String(),
	}).Info("Dream created")

	return s.hydrate(ctx, dream, false)
}

// Get returns a single dream. Private dreams are visible to their
// owner only; everyone else gets a forbidden error regardless of
// authentication.
func (s *DreamService) Get(ctx context.Context, viewerID, dreamID string) (*DreamResponse, error) {
	dream, err := s.getOwnedOrPublic(ctx, viewerID, dreamID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, dream, true)
}

// Update edits a dream's fields in place. Only the owner may edit.
func (s *DreamService) Update(ctx context.Context, userID, dreamID string, req *UpdateDreamRequest) (*DreamResponse, error) {
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
	if dream.UserID.String() != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "not the owner of this dream")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "title cannot be empty")
		}
		dream.Title = *req.Title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "content cannot be empty")
		}
		dream.Content = *req.Content
	}
	if req.IsPublic != nil {
		dream.IsPublic = *req.IsPublic
	}

	var tags []models.Tag
	replaceTags := false
	if req.Tags != nil {
		replaceTags = true
		tags, err = s.tagService.Resolve(ctx, *req.Tags)
		if err != nil {
			return nil, err
		}
	}

	if err := s.dreamRepo.Update(ctx, dream, tags, replaceTags); err != nil {
		return nil, err
	}
	if replaceTags {
		dream.Tags = tags
	}

	s.logger.WithField("dream_id", dream.ID.String()).Info("Dream updated")
	return s.hydrate(ctx, dream, false)
}

// Delete removes a dream and its dependents. Only the owner may delete.
func (s *DreamService) Delete(ctx context.Context, userID, dreamID string) error {
	did, err := uuid.Parse(dreamID)
	if err != nil {
		return apperrors.New(apperrors.CodeValidation, "invalid dream ID")
	}

	dream, err := s.dreamRepo.GetByID(ctx, did)
	if err != nil {
		return err
	}
	if dream == nil {
		return apperrors.New(apperrors.CodeNotFound, "dream not found")
	}
	if dream.UserID.String() != userID {
		return apperrors.New(apperrors.CodeForbidden, "not the owner of this dream")
	}

	if err := s.dreamRepo.Delete(ctx, did); err != nil {
		return err
	}

	s.publishDreamEvent(ctx, queue.EventDreamDeleted, dream)

	s.logger.WithField("dream_id", did.String()).Info("Dream deleted")
	return nil
}

// Feed lists all public dreams, newest first.
func (s *DreamService) Feed(ctx context.Context) ([]*DreamResponse, error) {
	dreams, err := s.dreamRepo.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, dreams)
}

// ByOwner lists a user's public dreams. The identifier may be a user
// ID or a username.
func (s *DreamService) ByOwner(ctx context.Context, identifier string) ([]*DreamResponse, error) {
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

	dreams, err := s.dreamRepo.ListPublicByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, dreams)
}

// ByTag lists public dreams carrying the named tag. An unknown tag
// yields an empty list, not an error.
func (s *DreamService) ByTag(ctx context.Context, tagName string) ([]*DreamResponse, error) {
	dreams, err := s.dreamRepo.ListPublicByTag(ctx, tagName)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, dreams)
}

// Search filters public dreams by substring and tag, ordered by the
// given sort key.
func (s *DreamService) Search(ctx context.Context, query, tagName, sort string) ([]*DreamResponse, error) {
	switch sort {
	case "", repository.SortNewest, repository.SortOldest, repository.SortLikes, repository.SortComments:
	default:
		return nil, apperrors.New(apperrors.CodeValidation, "invalid sort parameter")
	}

	dreams, err := s.dreamRepo.Search(ctx, query, tagName, sort)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, dreams)
}

// Trending reads the engagement-scored set maintained by the worker
// and resolves it to public dreams. Entries that have since been
// deleted or made private are skipped.
func (s *DreamService) Trending(ctx context.Context, limit int) ([]*DreamResponse, error) {
	if s.cache == nil {
		return []*DreamResponse{}, nil
	}

	entries, err := s.cache.ZRevRangeWithScores(ctx, TrendingKey, 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}

	responses := make([]*DreamResponse, 0, len(entries))
	for _, entry := range entries {
		member, ok := entry.Member.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}

		dream, err := s.dreamRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if dream == nil || !dream.IsPublic {
			continue
		}

		resp, err := s.hydrate(ctx, dream, false)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *DreamService) getOwnedOrPublic(ctx context.Context, viewerID, dreamID string) (*models.Dream, error) {
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
	return dream, nil
}

func (s *DreamService) hydrate(ctx context.Context, dream *models.Dream, withComments bool) (*DreamResponse, error) {
	likeCount, err := s.likeRepo.CountByDreamID(ctx, dream.ID)
	if err != nil {
		return nil, err
	}
	commentCount, err := s.commentRepo.CountByDreamID(ctx, dream.ID)
	if err != nil {
		return nil, err
	}

	resp := &DreamResponse{
		ID:        dream.ID,
		Title:     dream.Title,
		Content:   dream.Content,
		IsPublic:  dream.IsPublic,
		CreatedAt: dream.CreatedAt,
		UpdatedAt: dream.UpdatedAt,
		User:      summarize(&dream.User),
		Tags:      tagNames(dream.Tags),
		Counts: EngagementCounts{
			Likes:    likeCount,
			Comments: commentCount,
		},
	}

	if withComments {
		comments, err := s.commentRepo.GetByDreamID(ctx, dream.ID, false)
		if err != nil {
			return nil, err
		}
		resp.Comments = make([]*CommentResponse, 0, len(comments))
		for _, c := range comments {
			resp.Comments = append(resp.Comments, &CommentResponse{
				ID:        c.ID,
				Content:   c.Content,
				CreatedAt: c.CreatedAt,
				User:      summarize(&c.User),
			})
		}
	}

	return resp, nil
}

func (s *DreamService) hydrateAll(ctx context.Context, dreams []*models.Dream) ([]*DreamResponse, error) {
	responses := make([]*DreamResponse, 0, len(dreams))
	for _, dream := range dreams {
		resp, err := s.hydrate(ctx, dream, false)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *DreamService) publishDreamEvent(ctx context.Context, eventType queue.EventType, dream *models.Dream) {
	if s.producer == nil {
		return
	}

	event := queue.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data: queue.DreamEventData{
			DreamID:   dream.ID.String(),
			UserID:    dream.UserID.String(),
			Title:     dream.Title,
			CreatedAt: dream.CreatedAt.Format(time.RFC3339),
		},
	}

	if err := s.producer.Publish(ctx, dream.ID.String(), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish dream event")
	}
}
