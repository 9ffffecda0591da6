package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/dreamshare/dreamshare/internal/repository"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/dreamshare/dreamshare/pkg/queue"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	producer   queue.Publisher
	logger     *logger.Logger
}

func NewUserService(
	userRepo *repository.UserRepository,
	followRepo *repository.FollowRepository,
	producer queue.Publisher,
	logger *logger.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		producer:   producer,
		logger:     logger,
	}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=30"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
}

// Register creates an account with a bcrypt-hashed password. Username
// and email are both checked for conflicts up front; the unique indexes
// catch whatever a concurrent registration slips past the checks.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.New(apperrors.CodeConflict, "username already taken")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.New(apperrors.CodeConflict, "email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to hash password", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		Password:    string(hashed),
		DisplayName: displayName,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.New(apperrors.CodeConflict, "username or email already taken")
		}
		return nil, err
	}

	s.publishUserEvent(ctx, queue.EventUserCreated, user)

	s.logger.WithFields(map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
	}).Info("User registered")

	return user, nil
}

// Authenticate verifies credentials. Unknown email and wrong password
// produce the same error so callers cannot probe for accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeInvalidCredentials, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidCredentials, "invalid email or password")
	}

	s.logger.WithField("user_id", user.ID.String()).Info("User authenticated")
	return user, nil
}

// resolveUser accepts either a user ID or a username.
func (s *UserService) resolveUser(ctx context.Context, identifier string) (*models.User, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return s.userRepo.GetByID(ctx, id)
	}
	return s.userRepo.GetByUsername(ctx, identifier)
}

// Profile returns the public view of a user, with dream and follow
// counts aggregated at read time.
func (s *UserService) Profile(ctx context.Context, identifier string) (*Profile, error) {
	user, err := s.resolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return s.buildProfile(ctx, user, false)
}

// Me is the authenticated self view; it includes the email address.
func (s *UserService) Me(ctx context.Context, userID string) (*Profile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid user ID")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return s.buildProfile(ctx, user, true)
}

func (s *UserService) buildProfile(ctx context.Context, user *models.User, includeEmail bool) (*Profile, error) {
	dreamCount, err := s.userRepo.CountDreams(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followerCount, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		ID:             user.ID,
		Username:       user.Username,
		DisplayName:    user.DisplayName,
		Bio:            user.Bio,
		AvatarURL:      user.AvatarURL,
		CreatedAt:      user.CreatedAt,
		DreamCount:     dreamCount,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
	}
	if includeEmail {
		profile.Email = user.Email
	}
	return profile, nil
}

// UpdateProfile overwrites the mutable profile fields. Username, email
// and password are not editable here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid user ID")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}

	user.DisplayName = req.DisplayName
	user.Bio = req.Bio
	user.AvatarURL = req.AvatarURL

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.publishUserEvent(ctx, queue.EventUserUpdated, user)

	s.logger.WithField("user_id", user.ID.String()).Info("Profile updated")
	return user, nil
}

func (s *UserService) publishUserEvent(ctx context.Context, eventType queue.EventType, user *models.User) {
	if s.producer == nil {
		return
	}

	event := queue.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]string{
			"user_id":  user.ID.String(),
			"username": user.Username,
		},
	}

	if err := s.producer.Publish(ctx, user.ID.String(), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish user event")
	}
}
